package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"recap/internal/llm"
	"recap/internal/retry"
)

const (
	// NoContentMessage stands in for a summary when the transcript was empty.
	// No model call is made in that case.
	NoContentMessage = "No transcript content was available to summarize."

	// FailurePlaceholder is the final summary when every model path failed.
	// Downstream delivery still happens so the operator sees the failure.
	FailurePlaceholder = "Summary generation failed for this video."

	// systemInstruction is sent with every summarization call.
	systemInstruction = "You are an expert content analyst. You summarize video transcripts faithfully, preserving the creator's voice, style, and framing."

	maxSummaryInputChars = 50000

	transcriptTruncationNotice = "\n\n[Transcript truncated: only the first portion of the video is covered above.]"
)

// Outcome is a single model call's result. Soft outcomes carry placeholder
// text instead of a real summary and must not feed the synthesis step.
type Outcome struct {
	Text  string
	Soft  bool
	Usage llm.Usage
}

// Summarizer issues single-model summarization calls with retry. It holds
// the sampling parameters shared by every call in a run.
type Summarizer struct {
	provider llm.Provider
	template *SummaryTemplate
	policy   retry.Policy
	logger   *slog.Logger

	maxTokens   int
	temperature float64
	topP        float64
}

// SummarizerOptions configures a Summarizer. Zero values fall back to the
// defaults used throughout the pipeline.
type SummarizerOptions struct {
	Template    *SummaryTemplate
	Policy      *retry.Policy
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// NewSummarizer builds a Summarizer on top of provider.
func NewSummarizer(provider llm.Provider, logger *slog.Logger, opts SummarizerOptions) (*Summarizer, error) {
	if provider == nil {
		return nil, fmt.Errorf("summarizer: nil provider")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	template := opts.Template
	if template == nil {
		var err error
		template, err = LoadSummaryTemplate("")
		if err != nil {
			return nil, err
		}
	}

	policy := retry.Default()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	if policy.Retryable == nil {
		policy.Retryable = llm.IsRetryable
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}
	topP := opts.TopP
	if topP <= 0 {
		topP = 0.9
	}

	return &Summarizer{
		provider:    provider,
		template:    template,
		policy:      policy,
		logger:      logger,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
	}, nil
}

// Summarize runs one model over the transcript. Empty model output is a soft
// outcome, not an error; transport and server failures propagate after the
// retry policy is exhausted.
func (s *Summarizer) Summarize(ctx context.Context, content, model string) (Outcome, error) {
	if strings.TrimSpace(content) == "" {
		return Outcome{Text: NoContentMessage, Soft: true}, nil
	}
	if strings.TrimSpace(model) == "" {
		return Outcome{}, fmt.Errorf("summarize: empty model name")
	}

	if len(content) > maxSummaryInputChars {
		s.logger.Warn("truncating transcript for summarization",
			slog.String("model", model),
			slog.Int("chars", len(content)),
			slog.Int("limit", maxSummaryInputChars),
		)
		content = truncateChars(content, maxSummaryInputChars) + transcriptTruncationNotice
	}

	prompt, err := s.template.Format(content)
	if err != nil {
		return Outcome{}, err
	}
	return s.complete(ctx, model, prompt, "summarize "+model)
}

// Synthesize runs the synthesis model over a prebuilt merge prompt.
func (s *Summarizer) Synthesize(ctx context.Context, prompt, model string) (Outcome, error) {
	if strings.TrimSpace(model) == "" {
		return Outcome{}, fmt.Errorf("synthesize: empty model name")
	}
	if strings.TrimSpace(prompt) == "" {
		return Outcome{}, fmt.Errorf("synthesize: empty prompt")
	}
	return s.complete(ctx, model, prompt, "synthesize "+model)
}

// truncateChars cuts s at limit bytes, backing off so a multi-byte rune is
// never split and invalid UTF-8 never reaches a prompt.
func truncateChars(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (s *Summarizer) complete(ctx context.Context, model, prompt, op string) (Outcome, error) {
	resp, err := retry.Do(ctx, s.policy, s.logger, op, func(ctx context.Context) (llm.Response, error) {
		return s.provider.Complete(ctx, llm.Request{
			Model:       model,
			System:      systemInstruction,
			Prompt:      prompt,
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
			TopP:        s.topP,
		})
	})
	if err != nil {
		if llm.IsEmptyContent(err) {
			s.logger.Warn("model returned empty content",
				slog.String("model", model),
				slog.Any("error", err),
			)
			return Outcome{
				Text: fmt.Sprintf("No summary was produced by %s.", model),
				Soft: true,
			}, nil
		}
		return Outcome{}, err
	}
	return Outcome{Text: resp.Text, Usage: resp.Usage}, nil
}
