package ai

import (
	"context"

	"github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

// Extraction is the structured shape the model is asked to produce.
type Extraction struct {
	AuditYear string            `json:"audit_year"`
	Agency    string            `json:"agency"`
	Findings  []reports.Finding `json:"findings"`
}

// Result carries a successful extraction plus how it was obtained.
type Result struct {
	Extraction
	Stage        Stage  `json:"stage"`
	Raw          string `json:"-"` // last raw model content, kept for diagnosis
	Chunked      bool   `json:"chunked,omitempty"`
	FailedChunks int    `json:"failed_chunks,omitempty"`
}

// Extractor turns cleaned report text into a structured extraction.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Result, error)
}
