package llm

// ModelCost is USD per million tokens. A grading call costs a fraction
// of a cent on every model here, but the per-request log line reports
// it so heavy practice sessions stay visible.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of a request with the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	in := float64(inputTokens) * c.InputPerMTok
	out := float64(outputTokens) * c.OutputPerMTok
	return (in + out) / 1_000_000
}

// LookupCost returns pricing for a model ID, or nil when the model is
// not in the table.
func LookupCost(modelID string) *ModelCost {
	c, ok := modelCosts[modelID]
	if !ok {
		return nil
	}
	return &c
}

// modelCosts covers the models the config layer can select, whether by
// friendly name or pinned ID. OpenRouter models are not listed since
// its per-route pricing differs from the upstream providers.
var modelCosts = map[string]ModelCost{
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-haiku-4-5-20251001":  {1, 5},

	"gpt-4o":      {2.5, 10},
	"gpt-4o-mini": {0.15, 0.6},

	"gemini-2.5-flash": {0.3, 2.5},
	"gemini-2.5-pro":   {1.25, 10},
	"gemini-2.0-flash": {0.1, 0.4},
}
