package summarize

import (
	"context"
	"strings"
	"sync"
	"testing"

	"recap/internal/llm"
	"recap/internal/retry"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   []llm.Request
	respond func(call int, req llm.Request) (llm.Response, error)
}

func (f *fakeProvider) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	call := len(f.calls)
	f.mu.Unlock()
	return f.respond(call, req)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) callModels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	models := make([]string, len(f.calls))
	for i, call := range f.calls {
		models[i] = call.Model
	}
	return models
}

func testConfig() Config {
	return Config{
		PrimaryModel:        "openai/gpt-4o",
		SecondaryModel:      "google/gemini-2.5-flash",
		SynthesisModel:      "anthropic/claude-sonnet-4",
		CostThresholdTokens: 0,
		FallbackStrategy:    StrategyBestSummary,
	}
}

func newTestOrchestrator(t *testing.T, provider *fakeProvider, cfg Config) *Orchestrator {
	t.Helper()
	summarizer, err := NewSummarizer(provider, nil, SummarizerOptions{
		Policy: &retry.Policy{MaxAttempts: 1},
	})
	if err != nil {
		t.Fatalf("NewSummarizer: %v", err)
	}
	orch, err := NewOrchestrator(summarizer, nil, nil, cfg)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return orch
}

func okResponse(text string) (llm.Response, error) {
	return llm.Response{
		Text:  text,
		Usage: llm.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

func TestSummarizeMultiModel(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			switch req.Model {
			case "openai/gpt-4o":
				return okResponse("summary A")
			case "google/gemini-2.5-flash":
				return okResponse("summary B")
			default:
				return okResponse("merged summary")
			}
		},
	}
	orch := newTestOrchestrator(t, provider, testConfig())

	result := orch.Summarize(context.Background(), "transcript of the video", "A tech reviewer.")

	if result.FinalSummary != "merged summary" {
		t.Fatalf("FinalSummary = %q", result.FinalSummary)
	}
	if result.Method != MethodMultiModel {
		t.Fatalf("Method = %q", result.Method)
	}
	if result.FallbackUsed {
		t.Fatal("FallbackUsed should be false")
	}
	if result.PrimarySummary != "summary A" || result.SecondarySummary != "summary B" {
		t.Fatalf("intermediate summaries not recorded: %+v", result)
	}
	if got := provider.callModels(); len(got) != 3 {
		t.Fatalf("expected 3 model calls, got %v", got)
	}
	if len(result.TokenUsage) != 3 {
		t.Fatalf("expected usage for 3 roles, got %v", result.TokenUsage)
	}
	if result.CostEstimate <= 0 {
		t.Fatalf("CostEstimate = %v, want > 0", result.CostEstimate)
	}
	if result.ProcessingSeconds < 0 {
		t.Fatalf("ProcessingSeconds = %v", result.ProcessingSeconds)
	}
}

func TestSummarizeEmptyContent(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			t.Fatal("no model call expected for empty content")
			return llm.Response{}, nil
		},
	}
	orch := newTestOrchestrator(t, provider, testConfig())

	result := orch.Summarize(context.Background(), "   \n\t ", "context")

	if result.FinalSummary != NoContentMessage {
		t.Fatalf("FinalSummary = %q", result.FinalSummary)
	}
	if result.Method != MethodSingle {
		t.Fatalf("Method = %q", result.Method)
	}
	if result.FallbackUsed {
		t.Fatal("FallbackUsed should be false")
	}
	if result.CostEstimate != 0 {
		t.Fatalf("CostEstimate = %v, want 0", result.CostEstimate)
	}
}

func TestSummarizeCostGateUsesSynthesisModel(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			return okResponse("cheap single-model summary")
		},
	}
	cfg := testConfig()
	cfg.CostThresholdTokens = 100
	orch := newTestOrchestrator(t, provider, cfg)

	// 1000 chars is roughly 250 estimated tokens, over the 100 threshold.
	content := strings.Repeat("word ", 200)
	result := orch.Summarize(context.Background(), content, "context")

	models := provider.callModels()
	if len(models) != 1 || models[0] != cfg.SynthesisModel {
		t.Fatalf("expected one call to %s, got %v", cfg.SynthesisModel, models)
	}
	if result.Method != MethodFallback || !result.FallbackUsed {
		t.Fatalf("fallback not recorded: %+v", result)
	}
	if result.FallbackStrategy != StrategyBestSummary {
		t.Fatalf("FallbackStrategy = %q", result.FallbackStrategy)
	}
	if result.FinalSummary != "cheap single-model summary" {
		t.Fatalf("FinalSummary = %q", result.FinalSummary)
	}
}

func TestSummarizeCostGatePrimaryStrategy(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			return okResponse("primary-only summary")
		},
	}
	cfg := testConfig()
	cfg.CostThresholdTokens = 100
	cfg.FallbackStrategy = StrategyPrimarySummary
	orch := newTestOrchestrator(t, provider, cfg)

	result := orch.Summarize(context.Background(), strings.Repeat("word ", 200), "context")

	models := provider.callModels()
	if len(models) != 1 || models[0] != cfg.PrimaryModel {
		t.Fatalf("expected one call to %s, got %v", cfg.PrimaryModel, models)
	}
	if result.PrimaryModel != cfg.PrimaryModel || result.SynthesisModel != "" {
		t.Fatalf("model attribution wrong: %+v", result)
	}
}

func TestSummarizeErrorFallback(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			if call == 1 {
				return llm.Response{}, &llm.StatusError{StatusCode: 401, Body: "bad key"}
			}
			return okResponse("rescued summary")
		},
	}
	orch := newTestOrchestrator(t, provider, testConfig())

	result := orch.Summarize(context.Background(), "transcript", "context")

	if result.FinalSummary != "rescued summary" {
		t.Fatalf("FinalSummary = %q", result.FinalSummary)
	}
	if result.Method != MethodErrorFallback {
		t.Fatalf("Method = %q", result.Method)
	}
	if !result.FallbackUsed || result.FallbackStrategy != StrategySingleModel {
		t.Fatalf("fallback not recorded: %+v", result)
	}
	// Failed primary call, then the single-model retry with the primary model.
	models := provider.callModels()
	if len(models) != 2 || models[1] != "openai/gpt-4o" {
		t.Fatalf("unexpected calls: %v", models)
	}
}

func TestSummarizeTotalFailure(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			return llm.Response{}, &llm.StatusError{StatusCode: 401, Body: "bad key"}
		},
	}
	orch := newTestOrchestrator(t, provider, testConfig())

	result := orch.Summarize(context.Background(), "transcript", "context")

	if result.FinalSummary != FailurePlaceholder {
		t.Fatalf("FinalSummary = %q", result.FinalSummary)
	}
	if result.Method != MethodErrorFallback {
		t.Fatalf("Method = %q", result.Method)
	}
	if result.CostEstimate != 0 {
		t.Fatalf("CostEstimate = %v, want 0 for total failure", result.CostEstimate)
	}
	if len(result.TokenUsage) != 0 {
		t.Fatalf("TokenUsage = %v, want empty", result.TokenUsage)
	}
}

func TestSummarizeSkipsSynthesisWhenBothModelsRefuse(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			return llm.Response{}, &llm.EmptyContentError{Model: req.Model, FinishReason: "content_filter"}
		},
	}
	orch := newTestOrchestrator(t, provider, testConfig())

	result := orch.Summarize(context.Background(), "transcript", "context")

	if got := provider.callModels(); len(got) != 2 {
		t.Fatalf("expected 2 calls (no synthesis), got %v", got)
	}
	want := "No summary was produced by openai/gpt-4o."
	if result.FinalSummary != want {
		t.Fatalf("FinalSummary = %q, want %q", result.FinalSummary, want)
	}
	if result.Method != MethodMultiModel {
		t.Fatalf("Method = %q", result.Method)
	}
}

func TestSummarizeUsesSecondaryWhenPrimaryRefuses(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			if req.Model == "openai/gpt-4o" {
				return llm.Response{}, &llm.EmptyContentError{Model: req.Model}
			}
			return okResponse("secondary summary")
		},
	}
	orch := newTestOrchestrator(t, provider, testConfig())

	result := orch.Summarize(context.Background(), "transcript", "context")

	if result.FinalSummary != "secondary summary" {
		t.Fatalf("FinalSummary = %q", result.FinalSummary)
	}
	if got := provider.callModels(); len(got) != 2 {
		t.Fatalf("expected 2 calls (no synthesis), got %v", got)
	}
}

func TestSummarizeSoftSynthesisPrefersPrimary(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			switch req.Model {
			case "openai/gpt-4o":
				return okResponse("summary A")
			case "google/gemini-2.5-flash":
				return okResponse("summary B")
			default:
				return llm.Response{}, &llm.EmptyContentError{Model: req.Model}
			}
		},
	}
	orch := newTestOrchestrator(t, provider, testConfig())

	result := orch.Summarize(context.Background(), "transcript", "context")

	if result.FinalSummary != "summary A" {
		t.Fatalf("FinalSummary = %q", result.FinalSummary)
	}
	if result.Method != MethodMultiModel {
		t.Fatalf("Method = %q", result.Method)
	}
}

func TestSummarizerTruncatesLongTranscripts(t *testing.T) {
	provider := &fakeProvider{
		respond: func(call int, req llm.Request) (llm.Response, error) {
			return okResponse("summary")
		},
	}
	summarizer, err := NewSummarizer(provider, nil, SummarizerOptions{
		Policy: &retry.Policy{MaxAttempts: 1},
	})
	if err != nil {
		t.Fatalf("NewSummarizer: %v", err)
	}

	content := strings.Repeat("a", maxSummaryInputChars+5000) + "TAIL"
	if _, err := summarizer.Summarize(context.Background(), content, "openai/gpt-4o"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	prompt := provider.calls[0].Prompt
	if !strings.Contains(prompt, transcriptTruncationNotice) {
		t.Fatal("prompt missing truncation notice")
	}
	if strings.Contains(prompt, "TAIL") {
		t.Fatal("prompt contains content past the truncation limit")
	}
}
