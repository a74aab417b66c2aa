// Package quest implements the attempt session state machine for a single
// in-progress quest: markings accumulate, a validator scores each attempt,
// and successful reps advance the session toward completion.
package quest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solotrader/tradecraft/internal/catalog"
)

// State is the session's position in its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateAwaitingValidation
	StatePassed
)

// String returns the display label for a state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInProgress:
		return "in-progress"
	case StateAwaitingValidation:
		return "awaiting-validation"
	case StatePassed:
		return "passed"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidState is returned when an operation is attempted in a
	// state that does not permit it.
	ErrInvalidState = errors.New("invalid session state")

	// ErrNoMarkings is returned when an attempt is submitted without any
	// markings placed. This is a precondition, not a validation failure.
	ErrNoMarkings = errors.New("no markings to validate")
)

// Marking is one annotation the learner placed on the chart. The core
// treats positions as opaque coordinates; only the validator interprets
// them.
type Marking struct {
	X, Y     float64
	Type     string // e.g. "HH", "OB", "FVG"
	Label    string
	PlacedAt time.Time
}

// Session tracks one in-progress quest attempt.
type Session struct {
	ID            string
	Quest         catalog.QuestDefinition
	StartedAt     time.Time
	AttemptsMade  int
	CompletedReps int

	state    State
	markings []Marking
	history  []Outcome
}

// NewSession opens a session for a quest. Prior persisted progress seeds
// completedReps, so a learner resumes where they left off.
func NewSession(q catalog.QuestDefinition, priorReps int, now time.Time) *Session {
	if priorReps < 0 {
		priorReps = 0
	}
	if priorReps > q.RequiredReps {
		priorReps = q.RequiredReps
	}
	return &Session{
		ID:            uuid.NewString(),
		Quest:         q,
		StartedAt:     now,
		CompletedReps: priorReps,
		state:         StateInProgress,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Markings returns a copy of the current marking sequence.
func (s *Session) Markings() []Marking {
	out := make([]Marking, len(s.markings))
	copy(out, s.markings)
	return out
}

// History returns a copy of the validation outcomes so far, oldest first.
func (s *Session) History() []Outcome {
	out := make([]Outcome, len(s.history))
	copy(out, s.history)
	return out
}

// AddMarking appends a marking. Only permitted while in progress; a
// session busy with validation rejects new markings.
func (s *Session) AddMarking(m Marking) error {
	if s.state != StateInProgress {
		return fmt.Errorf("add marking in state %s: %w", s.state, ErrInvalidState)
	}
	s.markings = append(s.markings, m)
	return nil
}

// ClearMarkings empties the marking sequence.
func (s *Session) ClearMarkings() error {
	if s.state != StateInProgress {
		return fmt.Errorf("clear markings in state %s: %w", s.state, ErrInvalidState)
	}
	s.markings = nil
	return nil
}

// BeginAttempt transitions to AwaitingValidation and hands back the
// markings to score. The session stays busy (no new markings, no second
// submit) until ResolveAttempt or AbortAttempt is called. Submitting with
// zero markings is rejected before any validation happens.
func (s *Session) BeginAttempt() ([]Marking, error) {
	if s.state != StateInProgress {
		return nil, fmt.Errorf("submit attempt in state %s: %w", s.state, ErrInvalidState)
	}
	if len(s.markings) == 0 {
		return nil, ErrNoMarkings
	}
	s.state = StateAwaitingValidation
	return s.Markings(), nil
}

// AttemptResult describes what a resolved attempt changed.
type AttemptResult struct {
	Outcome        Outcome
	RepCompleted   bool
	QuestCompleted bool
	CompletedReps  int
}

// ResolveAttempt applies a validation outcome to a pending attempt.
// A passed outcome completes a rep; the rep that reaches the quest's
// required count transitions the session to Passed, otherwise markings
// reset for the next rep. A failed outcome keeps the markings so the
// learner can adjust, and only attemptsMade advances.
func (s *Session) ResolveAttempt(outcome Outcome) (AttemptResult, error) {
	if s.state != StateAwaitingValidation {
		return AttemptResult{}, fmt.Errorf("resolve attempt in state %s: %w", s.state, ErrInvalidState)
	}

	s.AttemptsMade++
	s.history = append(s.history, outcome)

	res := AttemptResult{Outcome: outcome}

	if !outcome.Passed {
		s.state = StateInProgress
		res.CompletedReps = s.CompletedReps
		return res, nil
	}

	s.CompletedReps++
	res.RepCompleted = true
	res.CompletedReps = s.CompletedReps

	if s.CompletedReps >= s.Quest.RequiredReps {
		s.state = StatePassed
		res.QuestCompleted = true
		return res, nil
	}

	// Next rep starts from a clean chart.
	s.markings = nil
	s.state = StateInProgress
	return res, nil
}

// AbortAttempt returns a pending attempt to InProgress without recording
// anything. Used when the validator fails or the in-flight call is
// canceled; the attempt is retryable and markings stay put.
func (s *Session) AbortAttempt() error {
	if s.state != StateAwaitingValidation {
		return fmt.Errorf("abort attempt in state %s: %w", s.state, ErrInvalidState)
	}
	s.state = StateInProgress
	return nil
}
