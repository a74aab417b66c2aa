package quest

import (
	"context"

	"github.com/solotrader/tradecraft/internal/catalog"
)

// Feedback explains one criterion's result to the learner.
type Feedback struct {
	Criterion  string
	Passed     bool
	Message    string
	Suggestion string
}

// Outcome is a validator's judgment of one attempt.
type Outcome struct {
	PerCriterion map[string]bool
	Score        int // 0..100
	Passed       bool
	Feedback     []Feedback
}

// Validator scores a set of markings against a quest's criteria. The
// session does not care how scoring happens; implementations range from
// a seeded simulator to an LLM grader.
type Validator interface {
	Validate(ctx context.Context, q catalog.QuestDefinition, markings []Marking) (Outcome, error)
}
