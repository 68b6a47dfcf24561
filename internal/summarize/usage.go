package summarize

import (
	"encoding/json"
	"sort"

	"recap/internal/llm"
	"recap/internal/pricing"
)

// Role identifies which slot in the multi-model pipeline a call served.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleSynthesis Role = "synthesis"
)

// TokenUsage is the per-role token accounting persisted with each result.
// TotalTokens always equals PromptTokens+CompletionTokens when a split was
// reported; otherwise the provider-reported total is kept as-is and the
// cost estimator approximates the split.
type TokenUsage struct {
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// UsageMap aggregates token usage by role across one orchestrator run.
type UsageMap map[Role]TokenUsage

// Record stores a call's usage under its role, replacing any earlier entry
// for the same role (the error-fallback path re-invokes the primary model).
func (m UsageMap) Record(role Role, model string, usage llm.Usage) {
	total := usage.TotalTokens
	if usage.PromptTokens > 0 || usage.CompletionTokens > 0 {
		total = usage.PromptTokens + usage.CompletionTokens
	}
	m[role] = TokenUsage{
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      total,
	}
}

// Records converts the map into pricing records, ordered by role for
// deterministic estimation.
func (m UsageMap) Records() []pricing.Record {
	roles := make([]string, 0, len(m))
	for role := range m {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	records := make([]pricing.Record, 0, len(roles))
	for _, role := range roles {
		usage := m[Role(role)]
		records = append(records, pricing.Record{
			Model:            usage.Model,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		})
	}
	return records
}

// EncodeJSON serializes the map for persistence, keyed by role name.
func (m UsageMap) EncodeJSON() (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	plain := make(map[string]TokenUsage, len(m))
	for role, usage := range m {
		plain[string(role)] = usage
	}
	encoded, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// DecodeUsageJSON restores a usage map persisted with EncodeJSON.
func DecodeUsageJSON(raw string) (UsageMap, error) {
	if raw == "" {
		return UsageMap{}, nil
	}
	var plain map[string]TokenUsage
	if err := json.Unmarshal([]byte(raw), &plain); err != nil {
		return nil, err
	}
	m := make(UsageMap, len(plain))
	for role, usage := range plain {
		m[Role(role)] = usage
	}
	return m, nil
}
