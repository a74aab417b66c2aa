package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/llm"
	"github.com/solotrader/tradecraft/internal/quest"
)

// LLMValidator grades markings by asking a model to judge each criterion.
type LLMValidator struct {
	provider llm.Provider
	config   Config
}

// Config bounds the grading request.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the grading defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 1024}
}

// NewLLM creates an LLM-backed validator with the given provider.
func NewLLM(provider llm.Provider, cfg Config) *LLMValidator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &LLMValidator{provider: provider, config: cfg}
}

// gradeOutput is the raw LLM response before conversion.
type gradeOutput struct {
	Criteria []gradeEntry `json:"criteria"`
}

type gradeEntry struct {
	Criterion  string `json:"criterion"`
	Passed     bool   `json:"passed"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Validate asks the model for a per-criterion grade and derives the
// score from the passing fraction, the same way the simulated validator
// does. A criterion the model omits counts as failed.
func (v *LLMValidator) Validate(ctx context.Context, q catalog.QuestDefinition, markings []quest.Marking) (quest.Outcome, error) {
	ctx = llm.WithPurpose(ctx, "marking-validation")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(q, markings)},
		},
		Schema:      GradeSchema,
		MaxTokens:   v.config.MaxTokens,
		Temperature: v.config.Temperature,
	}

	resp, err := v.provider.Generate(ctx, req)
	if err != nil {
		return quest.Outcome{}, fmt.Errorf("grading failed: %w", err)
	}

	var raw gradeOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return quest.Outcome{}, fmt.Errorf("failed to parse grade response: %w", err)
	}

	graded := make(map[string]gradeEntry, len(raw.Criteria))
	for _, c := range raw.Criteria {
		graded[c.Criterion] = c
	}

	out := quest.Outcome{
		PerCriterion: make(map[string]bool, len(q.Criteria)),
	}
	valid := 0
	for _, criterion := range q.Criteria {
		g, ok := graded[criterion]
		if !ok {
			out.PerCriterion[criterion] = false
			out.Feedback = append(out.Feedback, quest.Feedback{
				Criterion: criterion,
				Message:   fmt.Sprintf("%s was not graded. Mark it and resubmit.", criterion),
			})
			continue
		}
		out.PerCriterion[criterion] = g.Passed
		if g.Passed {
			valid++
		}
		out.Feedback = append(out.Feedback, quest.Feedback{
			Criterion:  criterion,
			Passed:     g.Passed,
			Message:    g.Message,
			Suggestion: g.Suggestion,
		})
	}

	if len(q.Criteria) > 0 {
		out.Score = int(math.Round(float64(valid) / float64(len(q.Criteria)) * 100))
	}
	out.Passed = out.Score >= q.MinAccuracy
	return out, nil
}
