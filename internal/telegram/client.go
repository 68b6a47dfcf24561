package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.telegram.org"
	defaultHTTPTimeout = 30 * time.Second

	userAgent = "Recap-Go/0.1.0"
)

// ParseMode selects the markup dialect a message is sent with.
type ParseMode string

const (
	ParseModeHTML       ParseMode = "HTML"
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
	ParseModePlain      ParseMode = ""
)

// Config captures the settings needed to reach the Telegram Bot API.
type Config struct {
	BotToken       string
	ChatID         string
	BaseURL        string
	TimeoutSeconds int

	// MaxMessageLength caps each delivered part. Zero uses DefaultMaxLength.
	MaxMessageLength int
}

// Client is a minimal Telegram Bot API client covering the sendMessage
// surface this pipeline needs. It performs a single round trip per call;
// retrying is the caller's concern.
type Client struct {
	cfg        Config
	httpClient *http.Client
	endpoint   string
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, fmt.Errorf("telegram: chat id is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   fmt.Sprintf("%s/bot%s/sendMessage", baseURL, cfg.BotToken),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type sendMessageRequest struct {
	ChatID                string    `json:"chat_id"`
	Text                  string    `json:"text"`
	ParseMode             ParseMode `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool      `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// SendError reports a rejected or failed sendMessage call.
type SendError struct {
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *SendError) Error() string {
	return fmt.Sprintf("telegram sendMessage: %d: %s", e.StatusCode, e.Description)
}

// DelayHint surfaces Telegram's retry_after parameter to the retry policy.
func (e *SendError) DelayHint() time.Duration {
	return e.RetryAfter
}

// SendMessage delivers one message to the configured chat.
func (c *Client) SendMessage(ctx context.Context, text string, mode ParseMode) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("telegram: empty message text")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                c.cfg.ChatID,
		Text:                  text,
		ParseMode:             mode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("telegram: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("telegram: read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return &SendError{StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(payload))}
		}
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !parsed.OK {
		return &SendError{
			StatusCode:  coalesceStatus(parsed.ErrorCode, resp.StatusCode),
			Description: parsed.Description,
			RetryAfter:  time.Duration(parsed.Parameters.RetryAfter) * time.Second,
		}
	}
	return nil
}

func coalesceStatus(errorCode, httpStatus int) int {
	if errorCode != 0 {
		return errorCode
	}
	return httpStatus
}
