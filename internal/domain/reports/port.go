package reports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a report does not exist.
var ErrNotFound = errors.New("report not found")

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *AuditReport) error
	Get(ctx context.Context, tenant string, id ReportID) (*AuditReport, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*AuditReport, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*AuditReport, int64, error)
	Search(ctx context.Context, tenant, keyword string) ([]*SearchResult, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (Summary, error)
}

// TextExtractor port (interface untuk PDF → plain text)
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// ArtifactStore port (interface untuk arsip PDF asli)
type ArtifactStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
