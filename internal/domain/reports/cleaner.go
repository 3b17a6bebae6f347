package reports

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Line-level drop rules for layout noise in extracted PDF text. Rules are
// order-independent: a line is dropped when any rule matches, kept verbatim
// otherwise, so cleaning already-cleaned text is a no-op.
var (
	// runs of box-drawing characters (table borders)
	reBoxRun = regexp.MustCompile(`[─│┃┄┅┆┇┊┋┌┐└┘├┤┬┴┼┏┓┗┛┠┨┯┷┿━║╔╗╚╝╠╣╦╩╬═]{3,}`)
	// horizontal rules made of dashes / double-lines
	reDashRule = regexp.MustCompile(`^[\s\-–—―=─━═_.]*[-–—―=─━═_]{3}[\s\-–—―=─━═_.]*$`)
	// lines that are nothing but border furniture
	reBorderOnly = regexp.MustCompile(`^[\s─│┃┄┅┆┇┊┋┌┐└┘├┤┬┴┼┏┓┗┛┠┨┯┷┿━║╔╗╚╝╠╣╦╩╬═|+:·]+$`)
	// bare page-number markers: "- 15 -", "15 / 32", "15"
	rePageDash  = regexp.MustCompile(`^[-–]?\s*\d{1,4}\s*[-–]?$`)
	rePageSlash = regexp.MustCompile(`^\d{1,4}\s*/\s*\d{1,4}$`)
	// table captions: "표 1", "<표 2-1>", "Table 2-1" (Latin form case-insensitive)
	reTableKo = regexp.MustCompile(`^\s*[\[<(〈]?\s*표\s*[-‑]?\s*\d`)
	reTableEn = regexp.MustCompile(`(?i)^\s*[\[<(]?\s*table\s*\d+(?:[-.]\d+)*`)
	// enumeration marker at the start of a line: "1.", "2)", "3 )"
	reEnumMarker = regexp.MustCompile(`^\s*\d{1,2}\s*[.)]\s*`)
)

const pageMarkerMaxLen = 8

// CleanText removes table borders, page numbers, table captions and bare
// enumeration markers from extracted text before it goes to the model.
// Amounts, counts and title lines survive untouched. When a rule is
// ambiguous the line is kept; losing a finding costs more than a few
// wasted tokens.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if dropLine(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

func dropLine(line string) bool {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return true
	}
	if reBoxRun.MatchString(line) || reDashRule.MatchString(stripped) || reBorderOnly.MatchString(line) {
		return true
	}
	if utf8.RuneCountInString(stripped) <= pageMarkerMaxLen &&
		(rePageDash.MatchString(stripped) || rePageSlash.MatchString(stripped)) {
		return true
	}
	if reTableKo.MatchString(line) || reTableEn.MatchString(line) {
		return true
	}
	if isBareEnumeration(stripped) {
		return true
	}
	return false
}

// isBareEnumeration reports whether the line is only an enumeration marker
// with no meaningful trailing content ("1.", "2) 가"). A marker followed by
// real title text ("1. 업무처리 부적정") is content and stays.
func isBareEnumeration(stripped string) bool {
	loc := reEnumMarker.FindStringIndex(stripped)
	if loc == nil || loc[0] != 0 {
		return false
	}
	rest := strings.TrimSpace(stripped[loc[1]:])
	return utf8.RuneCountInString(rest) <= 1
}
