package openai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/GCHAHA92/Geumcheon/internal/domain/ai"
	"github.com/GCHAHA92/Geumcheon/internal/domain/reports"
	"github.com/GCHAHA92/Geumcheon/internal/infra/ai/prompt"
	"github.com/sashabaranov/go-openai"
)

const defaultMaxTokens = 4096

// go-openai drops a zero temperature from the request body (omitempty), so
// the smallest nonzero value stands in for "deterministic decoding".
const minTemperature = 1e-8

// chatCompleter is the slice of *openai.Client we depend on.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey    string
	Model     string
	MaxTokens int

	// ChunkThreshold in runes; 0 disables chunked mode.
	ChunkThreshold int
	ChunkChars     int
	ChunkOverlap   int
}

type Client struct {
	api            chatCompleter
	model          string
	maxTokens      int
	chunkThreshold int
	chunkChars     int
	chunkOverlap   int
}

func NewClient(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	chunkChars := cfg.ChunkChars
	if chunkChars <= 0 {
		chunkChars = 12000
	}
	chunkOverlap := cfg.ChunkOverlap
	if chunkOverlap < 0 || chunkOverlap >= chunkChars {
		chunkOverlap = chunkChars / 10
	}
	return &Client{
		api:            openai.NewClient(cfg.APIKey),
		model:          model,
		maxTokens:      maxTokens,
		chunkThreshold: cfg.ChunkThreshold,
		chunkChars:     chunkChars,
		chunkOverlap:   chunkOverlap,
	}
}

// Extract implements ai.Extractor: direct parse → fence/span coercion → one
// repair re-prompt → terminal failure. Oversized text goes through the
// chunked path instead.
func (c *Client) Extract(ctx context.Context, text string) (*ai.Result, error) {
	if c.chunkThreshold > 0 && utf8.RuneCountInString(text) > c.chunkThreshold {
		return c.extractChunked(ctx, text)
	}
	return c.extractWhole(ctx, text)
}

func (c *Client) extractWhole(ctx context.Context, text string) (*ai.Result, error) {
	schema := prompt.BuildReportJSONSchema()
	content, err := c.complete(ctx,
		prompt.GetSystemPrompt(),
		prompt.GetUserPrompt(text),
		prompt.SchemaMessage(schema),
	)
	if err != nil {
		return nil, err
	}

	ext, stage, perr := parseExtraction(content)
	if perr == nil {
		return &ai.Result{Extraction: ext, Stage: stage, Raw: content}, nil
	}

	repaired, rerr := c.repair(ctx, content, schema)
	if rerr != nil {
		if errors.Is(rerr, ai.ErrQuotaExceeded) || errors.Is(rerr, ai.ErrContentFiltered) {
			return nil, rerr
		}
		return nil, &ai.ExtractionError{Stage: ai.StageFailed, Raw: content, Err: errors.Join(perr, rerr)}
	}
	ext, _, perr = parseExtraction(repaired)
	if perr != nil {
		return nil, &ai.ExtractionError{Stage: ai.StageFailed, Raw: repaired, Err: perr}
	}
	return &ai.Result{Extraction: ext, Stage: ai.StageRepaired, Raw: repaired}, nil
}

// extractChunked parses overlapping windows one at a time, in order, against
// the findings-only schema and concatenates the lists. Year and agency stay
// blank: no single window reliably contains them. Partial results survive a
// failing later chunk.
func (c *Client) extractChunked(ctx context.Context, text string) (*ai.Result, error) {
	windows := splitWindows(text, c.chunkChars, c.chunkOverlap)
	schema := prompt.BuildFindingsJSONSchema()

	res := &ai.Result{Stage: ai.StageDirect, Chunked: true}
	var lastErr error
	for i, win := range windows {
		findings, stage, err := c.chunkFindings(ctx, win, schema)
		if err != nil {
			if errors.Is(err, ai.ErrQuotaExceeded) {
				// quota will fail every remaining window too
				res.FailedChunks += len(windows) - i
				lastErr = err
				break
			}
			log.Printf("chunk %d/%d failed: %v", i+1, len(windows), err)
			res.FailedChunks++
			lastErr = err
			continue
		}
		res.Findings = append(res.Findings, findings...)
		res.Stage = ai.WorseOf(res.Stage, stage)
	}

	if len(res.Findings) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return res, nil
}

func (c *Client) chunkFindings(ctx context.Context, chunk string, schema map[string]any) ([]reports.Finding, ai.Stage, error) {
	content, err := c.complete(ctx,
		prompt.GetSystemPrompt(),
		prompt.GetChunkUserPrompt(chunk),
		prompt.SchemaMessage(schema),
	)
	if err != nil {
		return nil, ai.StageFailed, err
	}

	findings, stage, perr := parseFindings(content)
	if perr == nil {
		return findings, stage, nil
	}

	repaired, rerr := c.repair(ctx, content, schema)
	if rerr != nil {
		if errors.Is(rerr, ai.ErrQuotaExceeded) || errors.Is(rerr, ai.ErrContentFiltered) {
			return nil, ai.StageFailed, rerr
		}
		return nil, ai.StageFailed, &ai.ExtractionError{Stage: ai.StageFailed, Raw: content, Err: errors.Join(perr, rerr)}
	}
	findings, _, perr = parseFindings(repaired)
	if perr != nil {
		return nil, ai.StageFailed, &ai.ExtractionError{Stage: ai.StageFailed, Raw: repaired, Err: perr}
	}
	return findings, ai.StageRepaired, nil
}

// repair issues the single follow-up prompt of the chain: broken output plus
// a restated schema, JSON-only. Never retried beyond this one call.
func (c *Client) repair(ctx context.Context, broken string, schema map[string]any) (string, error) {
	return c.complete(ctx,
		prompt.GetRepairSystemPrompt(),
		prompt.GetRepairUserPrompt(broken, prompt.MustJSON(schema)),
		"",
	)
}

func (c *Client) complete(ctx context.Context, system, user, schemaMsg string) (string, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}
	if schemaMsg != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: schemaMsg})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: minTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: msgs,
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion response")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: %s", ai.ErrContentFiltered, strings.TrimSpace(choice.Message.Content))
	}
	return strings.TrimSpace(choice.Message.Content), nil
}
