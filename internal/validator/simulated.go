// Package validator provides the marking validators the quest session
// calls: a local simulated scorer and an LLM-backed grader.
package validator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/quest"
)

// Simulated scores attempts without analyzing the markings: each
// criterion passes with a fixed probability and the overall score is the
// passing fraction. Stands in for a real grader during offline play.
type Simulated struct {
	rng *rand.Rand

	// CriterionPassRate is the per-criterion pass probability.
	CriterionPassRate float64

	// Latency delays each validation to mimic analysis time. Zero means
	// immediate.
	Latency time.Duration
}

// NewSimulated builds a simulated validator from a seeded source, so
// tests can fix outcomes.
func NewSimulated(src rand.Source) *Simulated {
	return &Simulated{
		rng:               rand.New(src),
		CriterionPassRate: 0.75,
	}
}

// Validate scores each criterion independently and passes the attempt
// when the rounded percentage meets the quest's accuracy floor.
func (s *Simulated) Validate(ctx context.Context, q catalog.QuestDefinition, markings []quest.Marking) (quest.Outcome, error) {
	if s.Latency > 0 {
		select {
		case <-ctx.Done():
			return quest.Outcome{}, ctx.Err()
		case <-time.After(s.Latency):
		}
	}

	out := quest.Outcome{
		PerCriterion: make(map[string]bool, len(q.Criteria)),
	}

	valid := 0
	for _, criterion := range q.Criteria {
		ok := s.rng.Float64() < s.CriterionPassRate
		out.PerCriterion[criterion] = ok
		if ok {
			valid++
			out.Feedback = append(out.Feedback, quest.Feedback{
				Criterion: criterion,
				Passed:    true,
				Message:   fmt.Sprintf("%s correctly identified!", criterion),
			})
		} else {
			out.Feedback = append(out.Feedback, quest.Feedback{
				Criterion:  criterion,
				Passed:     false,
				Message:    fmt.Sprintf("%s marking needs improvement. Check the placement and timing.", criterion),
				Suggestion: fmt.Sprintf("Review the %s identification rules and try again.", criterion),
			})
		}
	}

	if len(q.Criteria) > 0 {
		out.Score = int(math.Round(float64(valid) / float64(len(q.Criteria)) * 100))
	}
	out.Passed = out.Score >= q.MinAccuracy
	return out, nil
}
