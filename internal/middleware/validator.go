package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const (
	// MaxUploadBytes caps a single PDF upload (32 MiB).
	MaxUploadBytes = 32 << 20
	// MaxKeywordLen caps a search keyword.
	MaxKeywordLen = 256
)

var tenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID checks tenant identifier format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantIDPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID: must be 1-64 chars of letters, digits, '-' or '_'")
	}
	return nil
}

// ValidateUploadFilename accepts only PDF uploads and rejects path tricks.
func ValidateUploadFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("file name must not contain path separators")
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return fmt.Errorf("only .pdf uploads are accepted")
	}
	return nil
}

// ValidateKeyword enforces the search input contract: empty means "no
// search" and is rejected here so handlers never execute it.
func ValidateKeyword(keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("search term is required")
	}
	if utf8.RuneCountInString(keyword) > MaxKeywordLen {
		return fmt.Errorf("search term too long (max %d chars)", MaxKeywordLen)
	}
	return nil
}

// ValidateLimit clamps list limits to a sane range
func ValidateLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
