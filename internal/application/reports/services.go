package reports

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/GCHAHA92/Geumcheon/internal/application"
	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

// Service implements use-cases around stored reports. Artifacts may be nil
// when archiving is disabled.
type Service struct {
	Repo      domain.Repository
	Artifacts domain.ArtifactStore
	Clock     application.Clock
}

// SaveResult is the response shape for a successful save.
type SaveResult struct {
	Report *domain.AuditReport      `json:"report"`
	Counts domain.DispositionCounts `json:"counts"`
}

// Save archives the source PDF (best effort) and performs the single atomic
// document insert. No retry, no rollback: a failed insert leaves nothing
// behind but the archived file.
func (s *Service) Save(ctx context.Context, rep *domain.AuditReport, pdf []byte) (SaveResult, error) {
	rep.CreatedAt = s.Clock.Now()

	if s.Artifacts != nil && len(pdf) > 0 {
		key := fmt.Sprintf("%s/reports/%s.pdf", rep.TenantID, rep.ID)
		url, err := s.Artifacts.UploadBytes(ctx, key, pdf, "application/pdf")
		if err != nil {
			// arsip gagal bukan alasan menolak insert
			log.Printf("warning: archive upload failed for %s: %v", rep.ID, err)
		} else {
			rep.SourceURL = url
		}
	}

	if err := s.Repo.Save(ctx, rep); err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Report: rep, Counts: domain.CountDispositions(rep.Findings)}, nil
}

// Get ambil 1 report by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.AuditReport, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Latest ambil N report terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.AuditReport, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Paginate halaman report + metadata
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	list, total, err := s.Repo.Paginate(ctx, tenant, page, pageSize)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Search per-finding keyword match, grouped by parent report.
func (s *Service) Search(ctx context.Context, tenant, keyword string) ([]*domain.SearchResult, error) {
	return s.Repo.Search(ctx, tenant, keyword)
}

// Summary rekap hasil parsing N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return s.Repo.Summary(ctx, tenant, sinceDays)
}
