package llm

import "github.com/shopspring/decimal"

// ModelCost holds per-million-token pricing for a model, in USD.
type ModelCost struct {
	InputPerMTok  decimal.Decimal
	OutputPerMTok decimal.Decimal
}

var million = decimal.NewFromInt(1_000_000)

// Cost returns the USD cost of a call with the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) decimal.Decimal {
	in := decimal.NewFromInt(int64(inputTokens)).Mul(c.InputPerMTok)
	out := decimal.NewFromInt(int64(outputTokens)).Mul(c.OutputPerMTok)
	return in.Add(out).Div(million)
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
func LookupCost(modelID string) *ModelCost {
	p, ok := modelPrices[modelID]
	if !ok {
		return nil
	}
	return &ModelCost{
		InputPerMTok:  decimal.RequireFromString(p[0]),
		OutputPerMTok: decimal.RequireFromString(p[1]),
	}
}

// modelPrices lists input and output USD per million tokens for the models
// the friendly names resolve to, plus common direct IDs.
var modelPrices = map[string][2]string{
	// Gemini
	"gemini-1.5-flash":      {"0.075", "0.3"},
	"gemini-2.0-flash":      {"0.1", "0.4"},
	"gemini-2.0-flash-lite": {"0.075", "0.3"},
	"gemini-2.5-flash":      {"0.3", "2.5"},
	"gemini-2.5-flash-lite": {"0.1", "0.4"},
	"gemini-2.5-pro":        {"1.25", "10"},

	// Anthropic
	"claude-3-5-haiku-20241022":  {"0.8", "4"},
	"claude-haiku-4-5":           {"1", "5"},
	"claude-haiku-4-5-20251001":  {"1", "5"},
	"claude-sonnet-4-20250514":   {"3", "15"},
	"claude-sonnet-4-5":          {"3", "15"},
	"claude-sonnet-4-5-20250929": {"3", "15"},

	// OpenAI
	"gpt-4o":       {"2.5", "10"},
	"gpt-4o-mini":  {"0.15", "0.6"},
	"gpt-4.1":      {"2", "8"},
	"gpt-4.1-mini": {"0.4", "1.6"},
	"gpt-4.1-nano": {"0.1", "0.4"},
	"gpt-5-mini":   {"0.25", "2"},
	"gpt-5-nano":   {"0.05", "0.4"},
}
