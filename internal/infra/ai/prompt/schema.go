package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildReportJSONSchema returns the JSON-Schema (draft 2020-12 subset) for a
// full audit report as a generic map. We embed it in the prompt and use it
// locally to validate every stage of the parse chain.
func BuildReportJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"audit_year": map[string]any{"type": "string"},
			"agency":     map[string]any{"type": "string"},
			"findings":   findingsProp(),
		},
		"required": []string{"audit_year", "agency", "findings"},
	}
}

// BuildFindingsJSONSchema is the reduced per-chunk schema: just the finding
// list. No single chunk reliably contains the year or agency.
func BuildFindingsJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"findings": findingsProp(),
		},
		"required": []string{"findings"},
	}
}

func findingsProp() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"title":       map[string]any{"type": "string", "minLength": 1},
				"disposition": map[string]any{"type": "string"},
				"regulation":  map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"category":    map[string]any{"type": "string"},
			},
			"required": []string{"title", "disposition", "regulation", "description"},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// MustJSON marshals v for embedding in a prompt; panics only on
// marshal-unfriendly input, which the schema maps above never are.
func MustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
