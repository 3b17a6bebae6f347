package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordPattern(t *testing.T) {
	// valid regex passes through
	assert.Equal(t, "수의계약|입찰", KeywordPattern("수의계약|입찰"))
	// broken regex degrades to a literal
	assert.Equal(t, `계약\(보류`, KeywordPattern("계약(보류"))
}

func TestCompileKeywordIsCaseInsensitive(t *testing.T) {
	re := CompileKeyword("budget")
	assert.True(t, re.MatchString("BUDGET 집행 부적정"))
}

func TestCompileKeywordBrokenRegexMatchesLiterally(t *testing.T) {
	re := CompileKeyword("계약(보류")
	assert.True(t, re.MatchString("수의계약(보류) 처리"))
	assert.False(t, re.MatchString("수의계약 처리"))
}

func TestFindingMatchesAnyTextField(t *testing.T) {
	re := CompileKeyword("예산")
	assert.True(t, Finding{Title: "예산 집행 부적정"}.Matches(re))
	assert.True(t, Finding{Disposition: "예산회수"}.Matches(re))
	assert.True(t, Finding{Regulation: "예산회계법 제12조"}.Matches(re))
	assert.True(t, Finding{Description: "예산을 목적 외로 집행"}.Matches(re))
	// category is not part of the search surface
	assert.False(t, Finding{Category: "예산분야"}.Matches(re))
}

func TestMatchFindingsGroupsUnderParent(t *testing.T) {
	rep := &AuditReport{
		ID:        "r1",
		AuditYear: "2022",
		Agency:    "금천구시설관리공단",
		Findings: []Finding{
			{Title: "수의계약 업무처리 부적정", Disposition: "시정"},
			{Title: "출장비 정산 소홀", Disposition: "주의"},
			{Title: "수의계약 분할 발주", Disposition: "주의"},
		},
	}

	res := MatchFindings(rep, CompileKeyword("수의계약"))
	require.NotNil(t, res)
	assert.Equal(t, ReportID("r1"), res.ReportID)
	assert.Equal(t, "2022", res.AuditYear)
	require.Len(t, res.Findings, 2)
	assert.Equal(t, "수의계약 업무처리 부적정", res.Findings[0].Title)
	assert.Equal(t, "수의계약 분할 발주", res.Findings[1].Title)
}

func TestMatchFindingsExcludesSiblingReports(t *testing.T) {
	a := &AuditReport{
		ID: "a",
		Findings: []Finding{
			{Title: "보조금 정산 소홀", Regulation: "「보조금 관리 조례」 제12조"},
		},
	}
	b := &AuditReport{
		ID: "b",
		Findings: []Finding{
			{Title: "출장비 정산 소홀", Regulation: "여비규정"},
		},
	}

	re := CompileKeyword("보조금 관리 조례")
	hit := MatchFindings(a, re)
	require.NotNil(t, hit)
	require.Len(t, hit.Findings, 1)
	// the other report has no matching finding and must not appear at all
	assert.Nil(t, MatchFindings(b, re))
}

func TestMatchFindingsNilWhenNothingMatches(t *testing.T) {
	rep := &AuditReport{
		ID:       "r1",
		Findings: []Finding{{Title: "출장비 정산 소홀"}},
	}
	assert.Nil(t, MatchFindings(rep, CompileKeyword("수의계약")))
}
