package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

func TestReportBSONRoundTrip(t *testing.T) {
	in := domain.AuditReport{
		ID:        "a2a6b1d0-0000-0000-0000-000000000001",
		TenantID:  "gc",
		AuditYear: "2022",
		Agency:    "금천구시설관리공단",
		Findings: []domain.Finding{
			{Title: "수의계약 업무처리 부적정", Disposition: "시정", Regulation: "「지방계약법」 제9조", Description: "분할 발주"},
		},
		FileName:  "audit.pdf",
		CreatedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}

	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	// the report id doubles as the document key
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, string(in.ID), m["_id"])

	var out domain.AuditReport
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestDecodeTolerantOfMissingCategory(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id": "r1", "tenant_id": "gc", "audit_year": "2021", "agency": "a",
		"findings": bson.A{bson.M{"title": "t", "disposition": "시정", "regulation": "r", "description": "d"}},
	})
	require.NoError(t, err)

	var out domain.AuditReport
	require.NoError(t, bson.Unmarshal(raw, &out))
	require.Len(t, out.Findings, 1)
	assert.Empty(t, out.Findings[0].Category)
}
