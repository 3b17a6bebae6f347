package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GCHAHA92/Geumcheon/internal/domain/ai"
)

// fakeChat replays canned completions in call order.
type fakeChat struct {
	contents      []string
	errs          []error
	finishReasons []openai.FinishReason
	reqs          []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := len(f.reqs)
	f.reqs = append(f.reqs, req)

	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	content := ""
	if i < len(f.contents) {
		content = f.contents[i]
	}
	finish := openai.FinishReasonStop
	if i < len(f.finishReasons) && f.finishReasons[i] != "" {
		finish = f.finishReasons[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: content},
			FinishReason: finish,
		}},
	}, nil
}

func newTestClient(api chatCompleter) *Client {
	return &Client{
		api:        api,
		model:      openai.GPT4oMini,
		maxTokens:  512,
		chunkChars: 12000,
	}
}

const validContent = `{"audit_year":"2022","agency":"금천구","findings":[{"title":"t","disposition":"시정","regulation":"r","description":"d"}]}`

func TestExtractDirectSuccessSkipsRepair(t *testing.T) {
	fake := &fakeChat{contents: []string{validContent}}
	c := newTestClient(fake)

	res, err := c.Extract(context.Background(), "정리된 감사 텍스트")
	require.NoError(t, err)
	assert.Equal(t, ai.StageDirect, res.Stage)
	assert.Equal(t, "2022", res.AuditYear)
	assert.False(t, res.Chunked)
	// stage 1 success must not trigger any further call
	assert.Len(t, fake.reqs, 1)
}

func TestExtractFencedOutputIsCoercedWithoutRepair(t *testing.T) {
	fake := &fakeChat{contents: []string{"```json\n" + validContent + "\n```"}}
	c := newTestClient(fake)

	res, err := c.Extract(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, ai.StageCoerced, res.Stage)
	assert.Len(t, fake.reqs, 1)
}

func TestExtractRepairPath(t *testing.T) {
	fake := &fakeChat{contents: []string{
		`{"audit_year":"2022","agency":"a","findings":[{`, // truncated
		validContent,
	}}
	c := newTestClient(fake)

	res, err := c.Extract(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, ai.StageRepaired, res.Stage)
	require.Len(t, fake.reqs, 2)
	// repair prompt must carry the broken output back to the model
	assert.Contains(t, fake.reqs[1].Messages[1].Content, `"findings":[{`)
}

func TestExtractTerminalFailureCarriesRaw(t *testing.T) {
	fake := &fakeChat{contents: []string{"not json at all", "still not json"}}
	c := newTestClient(fake)

	_, err := c.Extract(context.Background(), "text")
	require.Error(t, err)
	var exErr *ai.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, ai.StageFailed, exErr.Stage)
	assert.Equal(t, "still not json", exErr.Raw)
	// exactly one repair attempt, never more
	assert.Len(t, fake.reqs, 2)
}

func TestExtractQuotaExceeded(t *testing.T) {
	fake := &fakeChat{errs: []error{&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}}}
	c := newTestClient(fake)

	_, err := c.Extract(context.Background(), "text")
	require.ErrorIs(t, err, ai.ErrQuotaExceeded)
	assert.Len(t, fake.reqs, 1)
}

func TestExtractContentFilteredIsTerminal(t *testing.T) {
	fake := &fakeChat{
		contents:      []string{"필터링됨"},
		finishReasons: []openai.FinishReason{openai.FinishReasonContentFilter},
	}
	c := newTestClient(fake)

	_, err := c.Extract(context.Background(), "text")
	require.ErrorIs(t, err, ai.ErrContentFiltered)
	// content filter must not be retried or repaired
	assert.Len(t, fake.reqs, 1)
}

func TestExtractChunkedConcatenatesInOrder(t *testing.T) {
	fake := &fakeChat{contents: []string{
		`{"findings":[{"title":"c1","disposition":"시정","regulation":"","description":""}]}`,
		`{"findings":[{"title":"c2","disposition":"주의","regulation":"","description":""}]}`,
	}}
	c := newTestClient(fake)
	c.chunkThreshold = 10
	c.chunkChars = 8
	c.chunkOverlap = 2

	res, err := c.Extract(context.Background(), "가나다라마바사아자차카타") // 12 runes → 2 windows
	require.NoError(t, err)
	assert.True(t, res.Chunked)
	assert.Equal(t, "", res.AuditYear)
	assert.Equal(t, "", res.Agency)
	require.Len(t, res.Findings, 2)
	assert.Equal(t, "c1", res.Findings[0].Title)
	assert.Equal(t, "c2", res.Findings[1].Title)
	assert.Equal(t, 0, res.FailedChunks)
}

func TestExtractChunkedKeepsPartialOnQuota(t *testing.T) {
	fake := &fakeChat{
		contents: []string{
			`{"findings":[{"title":"c1","disposition":"시정","regulation":"","description":""}]}`,
		},
		errs: []error{nil, &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}},
	}
	c := newTestClient(fake)
	c.chunkThreshold = 10
	c.chunkChars = 8
	c.chunkOverlap = 2

	res, err := c.Extract(context.Background(), "가나다라마바사아자차카타")
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "c1", res.Findings[0].Title)
	assert.Equal(t, 1, res.FailedChunks)
	// quota aborts the remaining windows instead of burning more calls
	assert.Len(t, fake.reqs, 2)
}

func TestExtractChunkedAllWindowsFailing(t *testing.T) {
	fake := &fakeChat{errs: []error{
		&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
	}}
	c := newTestClient(fake)
	c.chunkThreshold = 10
	c.chunkChars = 8
	c.chunkOverlap = 2

	_, err := c.Extract(context.Background(), "가나다라마바사아자차카타")
	require.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestCompleteRequestShape(t *testing.T) {
	fake := &fakeChat{contents: []string{validContent}}
	c := newTestClient(fake)

	_, err := c.Extract(context.Background(), "text")
	require.NoError(t, err)

	req := fake.reqs[0]
	assert.NotZero(t, req.Temperature) // zero would be dropped by omitempty
	assert.Less(t, float64(req.Temperature), 1e-6)
	assert.Equal(t, 512, req.MaxTokens)
	assert.Zero(t, req.MaxCompletionTokens)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
}

func TestCompleteReasoningModelUsesCompletionTokens(t *testing.T) {
	fake := &fakeChat{contents: []string{validContent}}
	c := newTestClient(fake)
	c.model = "gpt-5-mini"

	_, err := c.Extract(context.Background(), "text")
	require.NoError(t, err)

	req := fake.reqs[0]
	assert.Zero(t, req.MaxTokens)
	assert.Equal(t, 512, req.MaxCompletionTokens)
}

func TestErrExtractionMessage(t *testing.T) {
	inner := errors.New("no JSON object in model output")
	e := &ai.ExtractionError{Stage: ai.StageFailed, Raw: "x", Err: inner}
	assert.True(t, strings.Contains(e.Error(), "no JSON object"))
	assert.ErrorIs(t, e, inner)
}
