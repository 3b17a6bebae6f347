package openai

// splitWindows cuts text into overlapping fixed-size rune windows, in
// document order. Findings appearing inside an overlap may be extracted
// twice; duplicates are accepted, not de-duplicated.
func splitWindows(text string, size, overlap int) []string {
	r := []rune(text)
	if size <= 0 || len(r) <= size {
		return []string{text}
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}
	step := size - overlap

	var out []string
	for start := 0; start < len(r); start += step {
		end := start + size
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[start:end]))
		if end == len(r) {
			break
		}
	}
	return out
}
