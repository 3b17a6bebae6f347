package ai

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrContentFiltered indicates the provider refused the request for safety
// reasons (finish reason content_filter). Terminal: the API offers no
// relaxed-safety retry.
var ErrContentFiltered = errors.New("ai content filtered")

// ExtractionError is the terminal failure of the parse/repair chain. Raw
// holds the offending model output so the caller can surface it.
type ExtractionError struct {
	Stage Stage
	Raw   string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed at stage %s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
