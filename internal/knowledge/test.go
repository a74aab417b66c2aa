// Package knowledge runs multiple-choice knowledge tests: non-linear
// navigation, overwritable answers, exact-match scoring on submit.
package knowledge

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/solotrader/tradecraft/internal/catalog"
)

// State is the test session's position in its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInProgress:
		return "in-progress"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ErrInvalidState is returned when an operation is attempted in a state
// that does not permit it.
var ErrInvalidState = errors.New("invalid test state")

// DefaultPassingScore applies when a test does not set its own threshold.
const DefaultPassingScore = 80

// Session is one run through a question set. Destroyed on submission or
// abandonment; retaking requires a fresh session.
type Session struct {
	ID           string
	ConceptID    string
	StageID      string
	Questions    []catalog.MCQQuestion
	PassingScore int
	StartedAt    time.Time

	// ExpireAt is the auto-submit deadline. Zero means no time limit.
	ExpireAt time.Time

	state   State
	index   int
	answers map[int]int
	result  Result
}

// Result is the scored outcome of a submitted test.
type Result struct {
	ScorePercent int
	Passed       bool
	Correct      int
	Total        int
}

// NewSession starts a test over the given questions. A positive
// timeLimitSecs sets the auto-submit deadline.
func NewSession(conceptID, stageID string, questions []catalog.MCQQuestion, passingScore, timeLimitSecs int, now time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, errors.New("test has no questions")
	}
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}
	s := &Session{
		ID:           uuid.NewString(),
		ConceptID:    conceptID,
		StageID:      stageID,
		Questions:    questions,
		PassingScore: passingScore,
		StartedAt:    now,
		state:        StateInProgress,
		answers:      make(map[int]int),
	}
	if timeLimitSecs > 0 {
		s.ExpireAt = now.Add(time.Duration(timeLimitSecs) * time.Second)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Index returns the current question index.
func (s *Session) Index() int {
	return s.index
}

// Answer stores or overwrites the choice for a question index. Allowed
// for any index at any time before submission.
func (s *Session) Answer(questionIndex, choice int) error {
	if s.state != StateInProgress {
		return fmt.Errorf("answer in state %s: %w", s.state, ErrInvalidState)
	}
	if questionIndex < 0 || questionIndex >= len(s.Questions) {
		return fmt.Errorf("question index %d out of range [0,%d)", questionIndex, len(s.Questions))
	}
	s.answers[questionIndex] = choice
	return nil
}

// AnswerFor returns the stored choice for a question, or -1 if
// unanswered.
func (s *Session) AnswerFor(questionIndex int) int {
	if c, ok := s.answers[questionIndex]; ok {
		return c
	}
	return -1
}

// GoTo moves the current index, clamped to the question range. Pure
// navigation; answered state is not checked.
func (s *Session) GoTo(index int) error {
	if s.state != StateInProgress {
		return fmt.Errorf("navigate in state %s: %w", s.state, ErrInvalidState)
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.Questions)-1 {
		index = len(s.Questions) - 1
	}
	s.index = index
	return nil
}

// Submit scores the test and transitions to Completed. Unanswered
// questions count as incorrect. The percentage rounds to the nearest
// integer and passes at PassingScore or above. No mutation is accepted
// afterward.
func (s *Session) Submit() (Result, error) {
	if s.state != StateInProgress {
		return Result{}, fmt.Errorf("submit in state %s: %w", s.state, ErrInvalidState)
	}

	correct := 0
	for i, q := range s.Questions {
		if choice, ok := s.answers[i]; ok && choice == q.Correct {
			correct++
		}
	}
	total := len(s.Questions)
	score := int(math.Round(float64(correct) / float64(total) * 100))

	s.result = Result{
		ScorePercent: score,
		Passed:       score >= s.PassingScore,
		Correct:      correct,
		Total:        total,
	}
	s.state = StateCompleted
	return s.result, nil
}

// Expired reports whether the deadline has passed. Always false without
// a time limit.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpireAt.IsZero() && !now.Before(s.ExpireAt)
}

// Result returns the scored outcome after submission.
func (s *Session) Result() (Result, error) {
	if s.state != StateCompleted {
		return Result{}, fmt.Errorf("result in state %s: %w", s.state, ErrInvalidState)
	}
	return s.result, nil
}
