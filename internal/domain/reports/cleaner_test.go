package reports

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTextDropsLayoutNoise(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"box border run", "┌────────┬────────┐"},
		{"dash rule", "----------------"},
		{"double line rule", "════════════════"},
		{"underscore rule", "________________"},
		{"border furniture only", " │ ┃ │ "},
		{"page number dashed", "- 15 -"},
		{"page number en dash", "– 3 –"},
		{"page number bare", "15"},
		{"page number slash", "15 / 32"},
		{"table caption korean", "표 1 지적사항 현황"},
		{"table caption bracketed", "<표 2-1> 예산 집행 내역"},
		{"table caption latin", "Table 2-1 Budget execution"},
		{"bare enumeration dot", "1."},
		{"bare enumeration paren", "2)"},
		{"enumeration with single rune", "3. 가"},
		{"blank", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, "", CleanText(tc.line), "line should be dropped: %q", tc.line)
		})
	}
}

func TestCleanTextKeepsContent(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"finding title with marker", "1. 업무처리 부적정"},
		{"amount line", "총 1,200,000원을 회수하고"},
		{"regulation citation", "「지방재정법」 제44조에 따르면"},
		{"year in sentence", "2022년도 정기감사 결과"},
		{"five digit number", "12345"},
		{"long number", "- 12345 -"},
		{"plain prose", "관련 업무를 소홀히 하였다."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.line, CleanText(tc.line), "line should survive: %q", tc.line)
		})
	}
}

func TestCleanTextKeepsTableRowsWithContent(t *testing.T) {
	// a bordered row still carrying data is ambiguous, so it stays
	line := "│ 금액 │ 1,000,000 │"
	assert.Equal(t, line, CleanText(line))
}

func TestCleanTextKeptLinesAreVerbatim(t *testing.T) {
	in := strings.Join([]string{
		"┌──────┐",
		"  2022년도 정기감사 결과  ", // leading/trailing spaces preserved
		"- 3 -",
		"1. 업무처리 부적정",
	}, "\n")

	out := CleanText(in)
	require.Equal(t, "  2022년도 정기감사 결과  \n1. 업무처리 부적정", out)
}

func TestCleanTextIdempotent(t *testing.T) {
	in := strings.Join([]string{
		"감 사 결 과 처 분 요 구 서",
		"────────────",
		"피감기관: 금천구시설관리공단",
		"",
		"표 1 현황",
		"1. 수의계약 업무처리 부적정",
		"- 12 -",
	}, "\n")

	once := CleanText(in)
	twice := CleanText(once)
	assert.Equal(t, once, twice)
}
