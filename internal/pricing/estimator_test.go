package pricing

import (
	"testing"
)

func testTable() Table {
	return Table{
		"openai/gpt-4o":           {Input: 2.5, Output: 10.0},
		"google/gemini-2.5-flash": {Input: 0.3, Output: 2.5},
	}
}

func TestLookupExactAndBareName(t *testing.T) {
	table := testTable()

	if p, ok := table.Lookup("openai/gpt-4o"); !ok || p.Input != 2.5 {
		t.Fatalf("exact lookup failed: %+v ok=%v", p, ok)
	}
	if p, ok := table.Lookup("someprovider/gemini-2.5-flash"); !ok || p.Output != 2.5 {
		t.Fatalf("bare-name lookup failed: %+v ok=%v", p, ok)
	}
	if p, ok := table.Lookup("openai/gpt-4o-2025-01-01"); !ok || p.Input != 2.5 {
		t.Fatalf("prefix lookup failed: %+v ok=%v", p, ok)
	}
}

func TestLookupUnknownReturnsDefaultTier(t *testing.T) {
	table := testTable()
	p, ok := table.Lookup("mystery/model-x")
	if ok {
		t.Fatal("unknown model reported as known")
	}
	if p != DefaultTier {
		t.Fatalf("expected default tier, got %+v", p)
	}
}

func TestEstimateUsesReportedSplit(t *testing.T) {
	est := NewEstimator(testTable(), nil)
	got := est.Estimate([]Record{
		{Model: "openai/gpt-4o", PromptTokens: 1_000_000, CompletionTokens: 100_000},
	})
	// 1M input at $2.5/M + 100k output at $10/M.
	want := 2.5 + 1.0
	if got != want {
		t.Fatalf("Estimate = %v, want %v", got, want)
	}
}

func TestEstimateApproximatesMissingSplit(t *testing.T) {
	est := NewEstimator(testTable(), nil)
	got := est.Estimate([]Record{
		{Model: "openai/gpt-4o", TotalTokens: 1_000_000},
	})
	// 70/30 split: 700k in at $2.5/M + 300k out at $10/M.
	want := 0.7*2.5 + 0.3*10.0
	if got != want {
		t.Fatalf("Estimate = %v, want %v", got, want)
	}
}

func TestEstimateDeterministicAndNonNegative(t *testing.T) {
	est := NewEstimator(nil, nil)
	records := []Record{
		{Model: "google/gemini-2.5-flash", PromptTokens: 4200, CompletionTokens: 900},
		{Model: "unknown-model", TotalTokens: 15000},
		{Model: "", TotalTokens: 0},
	}
	first := est.Estimate(records)
	if first < 0 {
		t.Fatalf("Estimate returned negative value %v", first)
	}
	for i := 0; i < 5; i++ {
		if got := est.Estimate(records); got != first {
			t.Fatalf("Estimate not deterministic: %v != %v", got, first)
		}
	}
}

func TestEstimateEmptyUsage(t *testing.T) {
	est := NewEstimator(nil, nil)
	if got := est.Estimate(nil); got != 0 {
		t.Fatalf("Estimate(nil) = %v, want 0", got)
	}
}

func TestLoadDefaultTable(t *testing.T) {
	table, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if len(table) == 0 {
		t.Fatal("embedded price table is empty")
	}
	for model, p := range table {
		if p.Input <= 0 || p.Output <= 0 {
			t.Fatalf("model %s has non-positive rates: %+v", model, p)
		}
	}
}
