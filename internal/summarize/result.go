package summarize

import "strings"

// Method records which path produced the final summary.
type Method string

const (
	MethodMultiModel    Method = "multi_model"
	MethodFallback      Method = "fallback"
	MethodErrorFallback Method = "error_fallback"
	MethodSingle        Method = "single"
)

// Strategy selects which single model serves when the full pipeline is skipped.
type Strategy string

const (
	// StrategyBestSummary uses the synthesis model alone, treating it as the
	// best available single model. This is the default.
	StrategyBestSummary Strategy = "best_summary"
	// StrategyPrimarySummary uses the primary model alone.
	StrategyPrimarySummary Strategy = "primary_summary"
	// StrategySingleModel marks the last-resort call made on the error path.
	StrategySingleModel Strategy = "single_model"
)

// ParseStrategy converts a configured string into a known Strategy.
func ParseStrategy(value string) (Strategy, bool) {
	normalized := Strategy(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StrategyBestSummary, StrategyPrimarySummary, StrategySingleModel:
		return normalized, true
	case "":
		return StrategyBestSummary, true
	default:
		return "", false
	}
}

// Result is the orchestrator's output for one video. FinalSummary is never
// empty: total failure produces FailurePlaceholder instead of an error.
type Result struct {
	FinalSummary      string   `json:"final_summary"`
	PrimarySummary    string   `json:"primary_summary,omitempty"`
	SecondarySummary  string   `json:"secondary_summary,omitempty"`
	SynthesisSummary  string   `json:"synthesis_summary,omitempty"`
	Method            Method   `json:"summarization_method"`
	PrimaryModel      string   `json:"primary_model,omitempty"`
	SecondaryModel    string   `json:"secondary_model,omitempty"`
	SynthesisModel    string   `json:"synthesis_model,omitempty"`
	ProcessingSeconds float64  `json:"processing_time_seconds"`
	FallbackUsed      bool     `json:"fallback_used"`
	FallbackStrategy  Strategy `json:"fallback_strategy,omitempty"`
	CostEstimate      float64  `json:"cost_estimate"`
	TokenUsage        UsageMap `json:"token_usage,omitempty"`
}
