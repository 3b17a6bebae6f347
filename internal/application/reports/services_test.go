package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

type memRepo struct {
	saved []*domain.AuditReport
	err   error
}

func (m *memRepo) Save(_ context.Context, r *domain.AuditReport) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *memRepo) Get(_ context.Context, tenant string, id domain.ReportID) (*domain.AuditReport, error) {
	for _, r := range m.saved {
		if r.TenantID == tenant && r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) Latest(_ context.Context, tenant string, limit int) ([]*domain.AuditReport, error) {
	return nil, nil
}

func (m *memRepo) Paginate(_ context.Context, tenant string, page, pageSize int) ([]*domain.AuditReport, int64, error) {
	return m.saved, int64(len(m.saved)) + 40, nil
}

func (m *memRepo) Search(_ context.Context, tenant, keyword string) ([]*domain.SearchResult, error) {
	re := domain.CompileKeyword(keyword)
	var out []*domain.SearchResult
	for _, r := range m.saved {
		if res := domain.MatchFindings(r, re); res != nil {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memRepo) Summary(_ context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return domain.Summary{}, nil
}

type memStore struct {
	keys []string
	err  error
}

func (m *memStore) UploadBytes(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.keys = append(m.keys, key)
	return "http://minio/audit/" + key, nil
}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func newTestService(repo *memRepo, store *memStore) *Service {
	svc := &Service{
		Repo:  repo,
		Clock: fixedClock{t: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)},
	}
	if store != nil {
		svc.Artifacts = store
	}
	return svc
}

func sampleReport() *domain.AuditReport {
	return &domain.AuditReport{
		ID:        "r1",
		TenantID:  "gc",
		AuditYear: "2022",
		Agency:    "금천구시설관리공단",
		Findings: []domain.Finding{
			{Title: "수의계약 업무처리 부적정", Disposition: "시정"},
			{Title: "출장비 정산 소홀", Disposition: "시정/주의"},
		},
		FileName: "audit.pdf",
	}
}

func TestSaveStampsClockAndArchives(t *testing.T) {
	repo := &memRepo{}
	store := &memStore{}
	svc := newTestService(repo, store)

	res, err := svc.Save(context.Background(), sampleReport(), []byte("%PDF"))
	require.NoError(t, err)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, svc.Clock.Now(), res.Report.CreatedAt)
	assert.Equal(t, "http://minio/audit/gc/reports/r1.pdf", res.Report.SourceURL)
	require.Len(t, store.keys, 1)
	assert.Equal(t, "gc/reports/r1.pdf", store.keys[0])

	assert.Equal(t, 2, res.Counts.Correction)
	assert.Equal(t, 1, res.Counts.Caution)
	assert.Equal(t, 2, res.Counts.Total)
}

func TestSaveWithoutArchiveStore(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, nil)

	res, err := svc.Save(context.Background(), sampleReport(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Empty(t, res.Report.SourceURL)
	require.Len(t, repo.saved, 1)
}

func TestSaveArchiveFailureIsNotFatal(t *testing.T) {
	repo := &memRepo{}
	store := &memStore{err: errors.New("minio down")}
	svc := newTestService(repo, store)

	res, err := svc.Save(context.Background(), sampleReport(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Empty(t, res.Report.SourceURL)
	require.Len(t, repo.saved, 1)
}

func TestSaveRepoErrorPropagates(t *testing.T) {
	boom := errors.New("insert failed")
	svc := newTestService(&memRepo{err: boom}, nil)

	_, err := svc.Save(context.Background(), sampleReport(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestPaginateDefaultsAndTotalPages(t *testing.T) {
	repo := &memRepo{saved: []*domain.AuditReport{sampleReport()}}
	svc := newTestService(repo, nil)

	res, err := svc.Paginate(context.Background(), "gc", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PageSize)
	assert.Equal(t, int64(41), res.Total)
	assert.Equal(t, 3, res.TotalPages) // ceil(41/20)
}

func TestSearchDelegatesToRepo(t *testing.T) {
	repo := &memRepo{saved: []*domain.AuditReport{sampleReport()}}
	svc := newTestService(repo, nil)

	out, err := svc.Search(context.Background(), "gc", "수의계약")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Findings, 1)
	assert.Equal(t, "수의계약 업무처리 부적정", out[0].Findings[0].Title)
}
