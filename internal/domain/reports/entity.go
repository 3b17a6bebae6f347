package reports

import (
	"strings"
	"time"
)

// ID tipe untuk AuditReport
type ReportID string

// Disposition labels as they appear in Korean government audit reports.
// A finding may carry a slash-joined combination ("시정/주의").
const (
	DispositionCorrection   = "시정"
	DispositionCaution      = "주의"
	DispositionOther        = "기타"
	DispositionRecovery     = "회수(환수)"
	DispositionRepayment    = "추급(환급)"
	DispositionDisciplinary = "징계"
	DispositionReprimand    = "훈계"
)

// DispositionVocabulary returns the fixed vocabulary in display order.
func DispositionVocabulary() []string {
	return []string{
		DispositionCorrection,
		DispositionCaution,
		DispositionOther,
		DispositionRecovery,
		DispositionRepayment,
		DispositionDisciplinary,
		DispositionReprimand,
	}
}

// Finding is one flagged issue inside an audit report.
// Regulation carries the cited statute verbatim, never summarized.
// Category is the higher-level heading some report variants use; older
// stored documents lack it.
type Finding struct {
	Title       string `json:"title" bson:"title"`
	Disposition string `json:"disposition" bson:"disposition"`
	Regulation  string `json:"regulation" bson:"regulation"`
	Description string `json:"description" bson:"description"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
}

// Aggregate Root: AuditReport. Insert-only; re-parsing the same PDF
// produces a new document with a new ID.
type AuditReport struct {
	ID        ReportID  `json:"id" bson:"_id"`
	TenantID  string    `json:"tenant_id" bson:"tenant_id"`
	AuditYear string    `json:"audit_year" bson:"audit_year"`
	Agency    string    `json:"agency" bson:"agency"`
	Findings  []Finding `json:"findings" bson:"findings"`
	SourceURL string    `json:"source_url,omitempty" bson:"source_url,omitempty"`
	FileName  string    `json:"file_name,omitempty" bson:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// DispositionCounts value object
type DispositionCounts struct {
	Correction   int `json:"correction"`
	Caution      int `json:"caution"`
	Recovery     int `json:"recovery"`
	Repayment    int `json:"repayment"`
	Disciplinary int `json:"disciplinary"`
	Reprimand    int `json:"reprimand"`
	Other        int `json:"other"`
	Total        int `json:"total"`
}

func (c *DispositionCounts) add(o DispositionCounts) {
	c.Correction += o.Correction
	c.Caution += o.Caution
	c.Recovery += o.Recovery
	c.Repayment += o.Repayment
	c.Disciplinary += o.Disciplinary
	c.Reprimand += o.Reprimand
	c.Other += o.Other
	c.Total += o.Total
}

// CountDispositions tallies findings per disposition bucket. A slash-joined
// disposition increments every bucket it names; Total counts findings, not
// bucket hits.
func CountDispositions(findings []Finding) DispositionCounts {
	var c DispositionCounts
	for _, f := range findings {
		d := f.Disposition
		matched := false
		if strings.Contains(d, DispositionCorrection) {
			c.Correction++
			matched = true
		}
		if strings.Contains(d, DispositionCaution) {
			c.Caution++
			matched = true
		}
		if strings.Contains(d, "회수") || strings.Contains(d, "환수") {
			c.Recovery++
			matched = true
		}
		if strings.Contains(d, "추급") || strings.Contains(d, "환급") {
			c.Repayment++
			matched = true
		}
		if strings.Contains(d, DispositionDisciplinary) {
			c.Disciplinary++
			matched = true
		}
		if strings.Contains(d, DispositionReprimand) {
			c.Reprimand++
			matched = true
		}
		if !matched {
			c.Other++
		}
		c.Total++
	}
	return c
}

// CountsByReport sums disposition counts over several reports.
func CountsByReport(list []*AuditReport) DispositionCounts {
	var c DispositionCounts
	for _, r := range list {
		c.add(CountDispositions(r.Findings))
	}
	return c
}

// Summary rekap untuk N hari terakhir
type Summary struct {
	Reports  int               `json:"reports"`
	Findings int               `json:"findings"`
	Counts   DispositionCounts `json:"counts"`
}
