package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"recap/internal/llm"
)

// Config captures the settings required to talk to the Gemini API.
type Config struct {
	APIKey string
}

// Client adapts the Gemini API to the llm.Provider interface so the
// orchestrator can mix Gemini models with OpenRouter-served ones.
type Client struct {
	apiKey string
}

// NewClient constructs a Gemini-backed provider.
func NewClient(cfg Config) *Client {
	return &Client{apiKey: strings.TrimSpace(cfg.APIKey)}
}

// Name identifies the backend for logging.
func (c *Client) Name() string { return "gemini" }

// Complete issues one generate-content round trip.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	var empty llm.Response
	if strings.TrimSpace(req.Model) == "" {
		return empty, errors.New("gemini complete: model required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return empty, errors.New("gemini complete: prompt required")
	}
	if c.apiKey == "" {
		return empty, errors.New("gemini complete: api key required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return empty, fmt.Errorf("gemini complete: create client: %w", err)
	}

	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.TopP > 0 {
		config.TopP = genai.Ptr(float32(req.TopP))
	}
	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return empty, fmt.Errorf("gemini complete: generate content: %w", err)
	}

	text := collectText(result)
	if strings.TrimSpace(text) == "" {
		return empty, &llm.EmptyContentError{Model: req.Model, FinishReason: finishReason(result)}
	}

	resp := llm.Response{Text: text}
	if result.UsageMetadata != nil {
		resp.Usage = llm.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func collectText(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

func finishReason(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}
	for _, candidate := range result.Candidates {
		if candidate != nil && candidate.FinishReason != "" {
			return string(candidate.FinishReason)
		}
	}
	return ""
}
