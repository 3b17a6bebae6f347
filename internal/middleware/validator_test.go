package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("geumcheon"))
	assert.NoError(t, ValidateTenantID("tenant_01-a"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("bad tenant"))
	assert.Error(t, ValidateTenantID("금천구")) // ascii only
	assert.Error(t, ValidateTenantID(strings.Repeat("a", 65)))
}

func TestValidateUploadFilename(t *testing.T) {
	assert.NoError(t, ValidateUploadFilename("audit_2022.pdf"))
	assert.NoError(t, ValidateUploadFilename("감사결과.PDF"))
	assert.Error(t, ValidateUploadFilename(""))
	assert.Error(t, ValidateUploadFilename("report.docx"))
	assert.Error(t, ValidateUploadFilename("../escape.pdf"))
	assert.Error(t, ValidateUploadFilename(`dir\escape.pdf`))
}

func TestValidateKeyword(t *testing.T) {
	assert.NoError(t, ValidateKeyword("수의계약"))
	// empty or whitespace means "no search" and must be rejected up front
	assert.Error(t, ValidateKeyword(""))
	assert.Error(t, ValidateKeyword("   "))
	assert.Error(t, ValidateKeyword(strings.Repeat("가", MaxKeywordLen+1)))
	assert.NoError(t, ValidateKeyword(strings.Repeat("가", MaxKeywordLen)))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0, 20, 100))
	assert.Equal(t, 20, ValidateLimit(-5, 20, 100))
	assert.Equal(t, 100, ValidateLimit(500, 20, 100))
	assert.Equal(t, 42, ValidateLimit(42, 20, 100))
}
