package mysql

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

func TestDocumentRoundTrip(t *testing.T) {
	in := &domain.AuditReport{
		ID:        "a2a6b1d0-0000-0000-0000-000000000001",
		TenantID:  "gc",
		AuditYear: "2022",
		Agency:    "금천구시설관리공단",
		Findings: []domain.Finding{
			{Title: "수의계약 업무처리 부적정", Disposition: "시정", Regulation: "「지방계약법」 제9조", Description: "분할 발주", Category: "계약분야"},
			{Title: "출장비 정산 소홀", Disposition: "주의", Regulation: "여비규정", Description: "증빙 누락"},
		},
		SourceURL: "http://minio/audit/gc/reports/r1.pdf",
		FileName:  "audit.pdf",
		CreatedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}

	doc, err := json.Marshal(in)
	require.NoError(t, err)
	out, err := decodeReport(doc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeTolerantOfMissingCategory(t *testing.T) {
	// documents stored before the category field existed
	doc := []byte(`{"id":"r1","tenant_id":"gc","audit_year":"2021","agency":"a","findings":[{"title":"t","disposition":"시정","regulation":"r","description":"d"}]}`)
	out, err := decodeReport(doc)
	require.NoError(t, err)
	require.Len(t, out.Findings, 1)
	assert.Empty(t, out.Findings[0].Category)
}

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", stringOrDash(""))
	assert.Equal(t, "-", stringOrDash("   "))
	assert.Equal(t, "gc", stringOrDash("gc"))
}
