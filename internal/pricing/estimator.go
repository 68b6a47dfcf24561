package pricing

import (
	"log/slog"
	"math"
)

// Record is one model call's worth of token accounting.
type Record struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// splitTokens resolves the input/output token split for a record. When the
// provider reported only a total, approximate 70% input / 30% output, which
// matches the shape of summarization calls (large transcript in, short
// summary out).
func splitTokens(rec Record) (input, output float64) {
	if rec.PromptTokens > 0 || rec.CompletionTokens > 0 {
		return float64(rec.PromptTokens), float64(rec.CompletionTokens)
	}
	if rec.TotalTokens <= 0 {
		return 0, 0
	}
	total := float64(rec.TotalTokens)
	return total * 0.7, total * 0.3
}

// Estimator turns token-usage records into a monetary cost estimate.
type Estimator struct {
	table  Table
	logger *slog.Logger
}

// NewEstimator builds an estimator over the supplied table. A nil table
// loads the embedded defaults.
func NewEstimator(table Table, logger *slog.Logger) *Estimator {
	if table == nil {
		table, _ = LoadDefault()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{table: table, logger: logger}
}

// Estimate sums the cost of all records in USD, rounded to 6 decimal
// places. Unknown models fall back to the default tier; Estimate never
// fails and is deterministic for a given input.
func (e *Estimator) Estimate(records []Record) float64 {
	var total float64
	for _, rec := range records {
		pricing, known := e.table.Lookup(rec.Model)
		if !known && rec.Model != "" {
			e.logger.Debug("model missing from price table, using default tier",
				slog.String("model", rec.Model))
		}
		input, output := splitTokens(rec)
		total += input * pricing.Input / 1_000_000
		total += output * pricing.Output / 1_000_000
	}
	if total < 0 {
		total = 0
	}
	return math.Round(total*1e6) / 1e6
}
