package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GCHAHA92/Geumcheon/internal/domain/ai"
	"github.com/GCHAHA92/Geumcheon/internal/domain/reports"
	"github.com/GCHAHA92/Geumcheon/internal/infra/ai/prompt"
)

// parseExtraction runs the local stages of the fallback chain over raw model
// content: direct schema-validated decode, then fence-stripping coercion.
// The repair stage needs another model call and lives on the client.
func parseExtraction(content string) (ai.Extraction, ai.Stage, error) {
	schema := prompt.BuildReportJSONSchema()

	data := []byte(strings.TrimSpace(content))
	if err := prompt.ValidateJSONAgainstSchema(schema, data); err == nil {
		var ext ai.Extraction
		if uerr := json.Unmarshal(data, &ext); uerr == nil {
			return ext, ai.StageDirect, nil
		}
	}

	coerced, cerr := coerceObject(content, reportKeys)
	if cerr != nil {
		return ai.Extraction{}, ai.StageFailed, cerr
	}
	if err := prompt.ValidateJSONAgainstSchema(schema, coerced); err != nil {
		return ai.Extraction{}, ai.StageFailed, err
	}
	var ext ai.Extraction
	if err := json.Unmarshal(coerced, &ext); err != nil {
		return ai.Extraction{}, ai.StageFailed, err
	}
	return ext, ai.StageCoerced, nil
}

// parseFindings is the per-chunk variant against the reduced schema.
func parseFindings(content string) ([]reports.Finding, ai.Stage, error) {
	schema := prompt.BuildFindingsJSONSchema()

	type findingList struct {
		Findings []reports.Finding `json:"findings"`
	}

	data := []byte(strings.TrimSpace(content))
	if err := prompt.ValidateJSONAgainstSchema(schema, data); err == nil {
		var fl findingList
		if uerr := json.Unmarshal(data, &fl); uerr == nil {
			return fl.Findings, ai.StageDirect, nil
		}
	}

	coerced, cerr := coerceObject(content, chunkKeys)
	if cerr != nil {
		return nil, ai.StageFailed, cerr
	}
	if err := prompt.ValidateJSONAgainstSchema(schema, coerced); err != nil {
		return nil, ai.StageFailed, err
	}
	var fl findingList
	if err := json.Unmarshal(coerced, &fl); err != nil {
		return nil, ai.StageFailed, err
	}
	return fl.Findings, ai.StageCoerced, nil
}

var (
	reportKeys = []string{"audit_year", "agency", "findings"}
	chunkKeys  = []string{"findings"}
)

// coerceObject recovers a best-effort JSON object from messy model output:
// strip markdown fences, isolate the outermost {...} span, decode as generic
// JSON, default the expected top-level string keys to "", drop keys the
// schema does not know, and normalize the findings array.
func coerceObject(content string, topKeys []string) ([]byte, error) {
	s := stripFences(content)
	obj, ok := outermostObject(s)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(obj), &m); err != nil {
		return nil, fmt.Errorf("decode coerced object: %w", err)
	}

	allowed := make(map[string]struct{}, len(topKeys))
	for _, k := range topKeys {
		allowed[k] = struct{}{}
		if k == "findings" {
			continue
		}
		if _, exists := m[k]; !exists {
			m[k] = ""
		} else if _, isStr := m[k].(string); !isStr {
			m[k] = fmt.Sprint(m[k])
		}
	}
	for k := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
		}
	}

	m["findings"] = coerceFindings(m["findings"])

	return json.Marshal(m)
}

// coerceFindings keeps only well-known finding keys and defaults missing
// string fields to empty, except the title, which must survive on its own.
func coerceFindings(v any) []any {
	arr, ok := v.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(arr))
	for _, item := range arr {
		fm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cleaned := map[string]any{}
		for _, k := range []string{"title", "disposition", "regulation", "description", "category"} {
			if s, ok := fm[k].(string); ok {
				cleaned[k] = s
			}
		}
		for _, k := range []string{"disposition", "regulation", "description"} {
			if _, ok := cleaned[k]; !ok {
				cleaned[k] = ""
			}
		}
		out = append(out, cleaned)
	}
	return out
}

var fenceDelims = []string{"```json", "```JSON", "```"}

// stripFences removes markdown code-fence delimiters around the payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, d := range fenceDelims {
		if strings.HasPrefix(s, d) {
			s = strings.TrimSpace(strings.TrimPrefix(s, d))
			break
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// outermostObject locates the span from the first '{' to the last '}'.
func outermostObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
