// Package pricing converts accumulated token counts into monetary cost.
// Rates are dollars per 1K tokens, keyed by model identifier. Lookups for
// unknown models fail loudly: cost feeds billing, and a silent zero is worse
// than an error.
package pricing

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned when a model id has no rate entry.
var ErrUnknownModel = errors.New("pricing: unknown model")

// Rate holds per-1K-token prices in dollars.
type Rate struct {
	InputPer1K  float64 `yaml:"input_per_1k" json:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k" json:"output_per_1k"`
}

// Table maps model identifiers (and aliases) to rates.
type Table struct {
	rates   map[string]Rate
	aliases map[string]string
}

// NewTable creates a Table from explicit rates.
func NewTable(rates map[string]Rate) *Table {
	t := &Table{
		rates:   make(map[string]Rate, len(rates)),
		aliases: make(map[string]string),
	}
	for id, r := range rates {
		t.rates[id] = r
	}
	return t
}

// AddAlias registers an alternate name for a model id.
func (t *Table) AddAlias(alias, modelID string) {
	t.aliases[alias] = modelID
}

// Rate returns the rate entry for a model id or alias.
func (t *Table) Rate(modelID string) (Rate, error) {
	if r, ok := t.rates[modelID]; ok {
		return r, nil
	}
	if canonical, ok := t.aliases[modelID]; ok {
		if r, ok := t.rates[canonical]; ok {
			return r, nil
		}
	}
	return Rate{}, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
}

// Cost computes the dollar cost of a run's accumulated tokens.
func (t *Table) Cost(modelID string, inputTokens, outputTokens int) (float64, error) {
	r, err := t.Rate(modelID)
	if err != nil {
		return 0, err
	}
	cost := float64(inputTokens)/1000*r.InputPer1K + float64(outputTokens)/1000*r.OutputPer1K
	return cost, nil
}

// Models returns the canonical model ids in the table.
func (t *Table) Models() []string {
	ids := make([]string, 0, len(t.rates))
	for id := range t.rates {
		ids = append(ids, id)
	}
	return ids
}

// Default returns the built-in rate table (February 2026 list prices).
func Default() *Table {
	t := NewTable(map[string]Rate{
		// Anthropic
		"claude-opus-4-6":   {InputPer1K: 0.015, OutputPer1K: 0.075},
		"claude-sonnet-4-5": {InputPer1K: 0.003, OutputPer1K: 0.015},

		// OpenAI
		"gpt-5.2":      {InputPer1K: 0.0025, OutputPer1K: 0.010},
		"gpt-5.2-mini": {InputPer1K: 0.00075, OutputPer1K: 0.003},

		// Gemini
		"gemini-3-pro-preview":   {InputPer1K: 0.00125, OutputPer1K: 0.005},
		"gemini-3-flash-preview": {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	})
	t.AddAlias("opus", "claude-opus-4-6")
	t.AddAlias("sonnet", "claude-sonnet-4-5")
	t.AddAlias("gpt5", "gpt-5.2")
	t.AddAlias("gemini-pro", "gemini-3-pro-preview")
	t.AddAlias("gemini-flash", "gemini-3-flash-preview")
	return t
}
