package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GCHAHA92/Geumcheon/internal/application"
	domai "github.com/GCHAHA92/Geumcheon/internal/domain/ai"
	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

var (
	// ErrDraftNotFound: no live draft, or the draft id is stale because a
	// newer upload displaced it.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrNotStructured: save requested before a successful extraction.
	ErrNotStructured = errors.New("draft has no structured result yet")
	// ErrEmptyPDF: upload body carried no bytes.
	ErrEmptyPDF = errors.New("empty pdf upload")
)

// Draft is the per-tenant session state between upload and save: the
// original bytes, the extracted and cleaned text, and (after structuring)
// the model result. A new upload for the same tenant discards it.
type Draft struct {
	ID        string
	TenantID  string
	FileName  string
	PDF       []byte
	RawText   string
	CleanText string
	Result    *domai.Result
	CreatedAt time.Time
}

// Service implements the upload → extract → clean → structure use-cases.
// One live draft per tenant; operations within a session are sequential, so
// the registry lock only guards cross-tenant access.
type Service struct {
	Extractor domain.TextExtractor
	Model     domai.Extractor
	Clock     application.Clock

	mu     sync.Mutex
	drafts map[string]*Draft // keyed by tenant
}

func NewService(extractor domain.TextExtractor, model domai.Extractor, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{
		Extractor: extractor,
		Model:     model,
		Clock:     clock,
		drafts:    make(map[string]*Draft),
	}
}

// BeginDraft extracts and cleans the uploaded PDF and replaces the tenant's
// previous draft, if any.
func (s *Service) BeginDraft(ctx context.Context, tenant, fileName string, pdf []byte) (*Draft, error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyPDF
	}

	raw, err := s.Extractor.ExtractText(ctx, pdf)
	if err != nil {
		return nil, fmt.Errorf("pdf extraction: %w", err)
	}

	d := &Draft{
		ID:        uuid.New().String(),
		TenantID:  tenant,
		FileName:  fileName,
		PDF:       pdf,
		RawText:   raw,
		CleanText: domain.CleanText(raw),
		CreatedAt: s.Clock.Now(),
	}

	s.mu.Lock()
	s.drafts[tenant] = d
	s.mu.Unlock()
	return d, nil
}

// Draft returns the tenant's live draft when the id still matches.
func (s *Service) Draft(tenant, id string) (*Draft, error) {
	s.mu.Lock()
	d := s.drafts[tenant]
	s.mu.Unlock()
	if d == nil || d.ID != id {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Structure runs the extraction chain over the draft's cleaned text and
// attaches the result. A repeat call replaces the previous result.
func (s *Service) Structure(ctx context.Context, tenant, id string) (*Draft, error) {
	d, err := s.Draft(tenant, id)
	if err != nil {
		return nil, err
	}

	res, err := s.Model.Extract(ctx, d.CleanText)
	if err != nil {
		return nil, err
	}
	d.Result = res
	return d, nil
}

// StructuredReport builds a fresh AuditReport from the draft's result. Each
// call mints a new ID: saving twice stores two documents, duplicates are the
// documented behavior of re-parsing.
func (s *Service) StructuredReport(tenant, id string) (*domain.AuditReport, *Draft, error) {
	d, err := s.Draft(tenant, id)
	if err != nil {
		return nil, nil, err
	}
	if d.Result == nil {
		return nil, nil, ErrNotStructured
	}

	rep := &domain.AuditReport{
		ID:        domain.ReportID(uuid.New().String()),
		TenantID:  tenant,
		AuditYear: d.Result.AuditYear,
		Agency:    d.Result.Agency,
		Findings:  d.Result.Findings,
		FileName:  d.FileName,
	}
	return rep, d, nil
}
