package reports

import (
	"regexp"
	"time"
)

// SearchResult groups the findings that matched a keyword under their
// parent report. Reports with no matching finding are not represented.
type SearchResult struct {
	ReportID  ReportID  `json:"report_id"`
	AuditYear string    `json:"audit_year"`
	Agency    string    `json:"agency"`
	CreatedAt time.Time `json:"created_at"`
	Findings  []Finding `json:"findings"`
}

// KeywordPattern normalizes a search keyword into a usable pattern: the
// keyword itself when it compiles as a regular expression, a quoted literal
// otherwise. The same pattern drives both server-side (Mongo) and in-process
// matching so the two never disagree.
func KeywordPattern(keyword string) string {
	if _, err := regexp.Compile(keyword); err != nil {
		return regexp.QuoteMeta(keyword)
	}
	return keyword
}

// CompileKeyword builds the case-insensitive matcher for a search keyword.
func CompileKeyword(keyword string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + KeywordPattern(keyword))
}

// Matches reports whether any of the finding's text fields matches.
// OR semantics across title/disposition/regulation/description; the
// optional category heading is not part of the search surface.
func (f Finding) Matches(re *regexp.Regexp) bool {
	return re.MatchString(f.Title) ||
		re.MatchString(f.Disposition) ||
		re.MatchString(f.Regulation) ||
		re.MatchString(f.Description)
}

// MatchFindings returns a SearchResult for the report when at least one
// finding matches, nil otherwise.
func MatchFindings(r *AuditReport, re *regexp.Regexp) *SearchResult {
	var hits []Finding
	for _, f := range r.Findings {
		if f.Matches(re) {
			hits = append(hits, f)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return &SearchResult{
		ReportID:  r.ID,
		AuditYear: r.AuditYear,
		Agency:    r.Agency,
		CreatedAt: r.CreatedAt,
		Findings:  hits,
	}
}
