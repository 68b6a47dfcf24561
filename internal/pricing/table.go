package pricing

import (
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed pricing.json
var defaultPricingJSON []byte

// ModelPricing holds USD rates per one million tokens.
type ModelPricing struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// Table maps model names to their pricing.
type Table map[string]ModelPricing

// DefaultTier is applied when a model is missing from the table, so cost
// estimation degrades rather than failing on unknown models.
var DefaultTier = ModelPricing{Input: 1.0, Output: 3.0}

// LoadDefault parses the embedded price table.
func LoadDefault() (Table, error) {
	var table Table
	if err := json.Unmarshal(defaultPricingJSON, &table); err != nil {
		return nil, err
	}
	return table, nil
}

// Lookup finds pricing for a model, trying an exact match, then the name
// without a provider prefix, then the longest key prefix. The second return
// reports whether a real entry was found; callers receive DefaultTier
// either way.
func (t Table) Lookup(model string) (ModelPricing, bool) {
	model = strings.TrimSpace(model)
	if model == "" {
		return DefaultTier, false
	}
	if p, ok := t[model]; ok {
		return p, true
	}

	// Models arrive both as "provider/name" and bare "name".
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		bare := model[idx+1:]
		for key, p := range t {
			if strings.HasSuffix(key, "/"+bare) || key == bare {
				return p, true
			}
		}
	}

	// Longest prefix match keeps versioned names (model-2025-01) priced.
	var bestKey string
	var bestPricing ModelPricing
	for key, p := range t {
		if strings.HasPrefix(model, key) && len(key) > len(bestKey) {
			bestKey = key
			bestPricing = p
		}
	}
	if bestKey != "" {
		return bestPricing, true
	}
	return DefaultTier, false
}
