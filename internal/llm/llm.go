package llm

import "context"

// Usage captures the token accounting returned by a provider for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// IsZero reports whether no token counts were recorded.
func (u Usage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Request describes one chat-completion call.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Response is the provider's answer to a Request.
type Response struct {
	Text  string
	Usage Usage
}

// Provider issues chat-completion requests against one model backend.
// Implementations perform a single round trip; retrying is the caller's
// concern (see internal/retry).
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}
