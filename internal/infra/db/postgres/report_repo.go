package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

// ReportRepository is the Postgres twin of the MySQL store: one JSONB
// document per report, insert-only, search filtered in process.
type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository { return &ReportRepository{db: db} }

// Save insert one report row
func (r *ReportRepository) Save(ctx context.Context, rep *domain.AuditReport) error {
	const q = `
INSERT INTO audit_reports
(id, tenant_id, audit_year, agency, file_name, source_url, findings_total, doc_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

	tenant := stringOrDash(rep.TenantID)
	created := rep.CreatedAt
	if created.IsZero() {
		created = time.Now()
		rep.CreatedAt = created
	}
	doc, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = r.db.ExecContext(ctx, q,
		rep.ID, tenant, rep.AuditYear, rep.Agency, rep.FileName, rep.SourceURL,
		len(rep.Findings), doc, created,
	)
	return err
}

// Get by ID + Tenant
func (r *ReportRepository) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.AuditReport, error) {
	const q = `SELECT doc_json FROM audit_reports WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	var doc []byte
	err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeReport(doc)
}

// Latest reports per tenant
func (r *ReportRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.AuditReport, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT doc_json FROM audit_reports
WHERE tenant_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2;`
	return r.queryReports(ctx, q, tenant, limit)
}

// Paginate returns a page of reports ordered by created_at desc
func (r *ReportRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.AuditReport, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_reports WHERE tenant_id=$1;`, tenant,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
SELECT doc_json FROM audit_reports
WHERE tenant_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3;`
	list, err := r.queryReports(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Search decodes tenant documents and filters findings in process
func (r *ReportRepository) Search(ctx context.Context, tenant, keyword string) ([]*domain.SearchResult, error) {
	const q = `
SELECT doc_json FROM audit_reports
WHERE tenant_id=$1 ORDER BY created_at DESC, id DESC;`
	list, err := r.queryReports(ctx, q, tenant)
	if err != nil {
		return nil, err
	}

	re := domain.CompileKeyword(keyword)
	var out []*domain.SearchResult
	for _, rep := range list {
		if hit := domain.MatchFindings(rep, re); hit != nil {
			out = append(out, hit)
		}
	}
	return out, nil
}

// Summary counts reports and findings since N days
func (r *ReportRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT doc_json FROM audit_reports
WHERE tenant_id=$1 AND created_at >= NOW() - ($2 * INTERVAL '1 day');`
	list, err := r.queryReports(ctx, q, tenant, sinceDays)
	if err != nil {
		return domain.Summary{}, err
	}
	counts := domain.CountsByReport(list)
	return domain.Summary{Reports: len(list), Findings: counts.Total, Counts: counts}, nil
}

func (r *ReportRepository) queryReports(ctx context.Context, q string, args ...any) ([]*domain.AuditReport, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditReport
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		rep, err := decodeReport(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func decodeReport(doc []byte) (*domain.AuditReport, error) {
	var rep domain.AuditReport
	if err := json.Unmarshal(doc, &rep); err != nil {
		return nil, fmt.Errorf("decode report document: %w", err)
	}
	return &rep, nil
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
