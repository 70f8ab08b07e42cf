package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: &statusRecorder{base: http.DefaultTransport}},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.TopK > 0 {
		config.TopK = genai.Ptr(float32(req.TopK))
	}
	if req.TopP > 0 {
		config.TopP = genai.Ptr(float32(req.TopP))
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	rec := &callRecord{}
	result, err := p.client.Models.GenerateContent(withCallRecord(ctx, rec), p.model, buildGeminiContents(req.Messages), config)
	if err != nil {
		return nil, mapGeminiError(ctx, rec, err)
	}

	text, err := firstCandidateText(result)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Text:       text,
		Model:      p.model,
		StopReason: mapGeminiStopReason(result),
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

// firstCandidateText returns the first text part of the first candidate.
func firstCandidateText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	c := result.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", ErrEmptyResponse
	}
	return c.Content.Parts[0].Text, nil
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == "MAX_TOKENS" {
		return "max_tokens"
	}
	return "end"
}

// mapGeminiError classifies a failed call. The transport's record of the
// raw exchange is authoritative; the SDK's own error type is the fallback.
func mapGeminiError(ctx context.Context, rec *callRecord, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if rec.netErr != nil {
		return &ErrNetwork{Err: rec.netErr}
	}
	if rec.status != 0 && (rec.status < 200 || rec.status > 299) {
		return classifyStatus(rec.status, rec.body, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Message, err)
	}
	if rec.status == 0 {
		return &ErrNetwork{Err: err}
	}
	return &ErrAPI{Status: rec.status, Body: err.Error(), Err: err}
}

// callRecord captures what the transport saw for one Generate call.
type callRecord struct {
	status int
	body   string
	netErr error
}

type callRecordKey struct{}

func withCallRecord(ctx context.Context, rec *callRecord) context.Context {
	return context.WithValue(ctx, callRecordKey{}, rec)
}

// statusRecorder is an http.RoundTripper that notes the status and error
// body of each exchange in the request's callRecord.
type statusRecorder struct {
	base http.RoundTripper
}

// maxErrorBody bounds how much of an error body is kept.
const maxErrorBody = 64 << 10

func (t *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	rec, _ := req.Context().Value(callRecordKey{}).(*callRecord)

	resp, err := t.base.RoundTrip(req)
	if rec == nil {
		return resp, err
	}
	if err != nil {
		rec.netErr = err
		return nil, err
	}

	rec.status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		rec.body = strings.TrimSpace(string(body))
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp, nil
}
