package prompt

import (
	"fmt"
	"strings"

	"github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

// GetSystemPrompt provides strict directions for JSON output.
func GetSystemPrompt() string {
	return `You are an expert in Korean government audit report parsing. You must convert unstructured text into one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema provided in the conversation.`
}

// GetUserPrompt embeds the cleaned report text plus the extraction rules.
func GetUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString("다음 조건을 지켜 감사결과를 JSON으로 구조화하세요:\n")
	b.WriteString(fmt.Sprintf("- 처분결과는 '%s' 중 하나이거나 '/'로 결합된 조합입니다. 모두 포함합니다.\n",
		strings.Join(reports.DispositionVocabulary(), "','")))
	b.WriteString("- 표, 연번, 목록형 데이터(1. 2. 3. …)는 제거합니다.\n")
	b.WriteString("- 금액(예: 27,000원), 총 건수(예: 총 14건)는 유지합니다.\n")
	b.WriteString("- regulation은 요약하지 말고 법령 원문 전체를 그대로 포함합니다.\n")
	b.WriteString("- description에는 지적사항과 조치할 사항을 반드시 포함합니다.\n")
	b.WriteString("- 상위 항목 제목이 있으면 각 건의 category에 넣습니다.\n")
	b.WriteString("\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}

// GetChunkUserPrompt is the reduced per-chunk variant: findings only.
func GetChunkUserPrompt(chunk string) string {
	var b strings.Builder
	b.WriteString(chunk)
	b.WriteString("\n\n")
	b.WriteString("위 텍스트 일부에서 감사결과 건들만 JSON으로 구조화하세요. ")
	b.WriteString("감사연도와 피감기관은 포함하지 않습니다.\n")
	b.WriteString("Return ONLY JSON that matches the provided schema.")
	return b.String()
}

// GetRepairSystemPrompt restates the contract for the one-shot repair call.
func GetRepairSystemPrompt() string {
	return `You repair malformed JSON. You receive broken output and a JSON schema. Respond with exactly one syntactically valid JSON object matching the schema. No prose, no markdown fences, nothing before or after the object.`
}

// GetRepairUserPrompt wraps the broken model output for the repair call.
func GetRepairUserPrompt(broken string, schemaJSON string) string {
	return fmt.Sprintf("JSON Schema:\n%s\n\nBroken output to repair:\n%s", schemaJSON, broken)
}

// SchemaMessage renders the schema as its own system message, the same way
// it is validated locally.
func SchemaMessage(schemaMap map[string]any) string {
	return "JSON Schema:\n" + MustJSON(schemaMap)
}
