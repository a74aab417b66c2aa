package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/solotrader/tradecraft/internal/concept"
	"github.com/solotrader/tradecraft/internal/events"
	"github.com/solotrader/tradecraft/internal/quest"
	"github.com/solotrader/tradecraft/internal/repository"
)

// SessionView is a read-only snapshot of the active quest session.
type SessionView struct {
	SessionID     string
	QuestID       string
	QuestTitle    string
	State         quest.State
	CompletedReps int
	RequiredReps  int
	AttemptsMade  int
	Markings      []quest.Marking
}

// StartQuest opens a session for a quest, seeding completed reps from
// persisted progress. Fails with ErrSessionActive while another session
// exists; the caller must ExitQuest first.
func (e *Engine) StartQuest(ctx context.Context, questID string) (SessionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return SessionView{}, ErrSessionActive
	}

	q, err := e.cat.Quest(questID)
	if err != nil {
		return SessionView{}, err
	}

	priorReps := 0
	if e.repos.QuestProgress != nil {
		prog, err := e.repos.QuestProgress.Get(ctx, questID)
		switch {
		case err == nil:
			if prog.Completed {
				// A completed quest restarts from scratch.
				priorReps = 0
			} else {
				priorReps = prog.CompletedReps
			}
		case errors.Is(err, repository.ErrNotFound):
		default:
			return SessionView{}, fmt.Errorf("loading quest progress: %w", err)
		}
	}

	e.session = quest.NewSession(q, priorReps, e.clock.Now())
	return e.sessionViewLocked(), nil
}

// Session returns a snapshot of the active session.
func (e *Engine) Session() (SessionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return SessionView{}, ErrNoActiveSession
	}
	return e.sessionViewLocked(), nil
}

func (e *Engine) sessionViewLocked() SessionView {
	s := e.session
	return SessionView{
		SessionID:     s.ID,
		QuestID:       s.Quest.ID,
		QuestTitle:    s.Quest.Title,
		State:         s.State(),
		CompletedReps: s.CompletedReps,
		RequiredReps:  s.Quest.RequiredReps,
		AttemptsMade:  s.AttemptsMade,
		Markings:      s.Markings(),
	}
}

// AddMarking appends a marking to the active session.
func (e *Engine) AddMarking(x, y float64, typeTag, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return ErrNoActiveSession
	}
	return e.session.AddMarking(quest.Marking{
		X: x, Y: y, Type: typeTag, Label: label, PlacedAt: e.clock.Now(),
	})
}

// ClearMarkings empties the active session's markings.
func (e *Engine) ClearMarkings() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return ErrNoActiveSession
	}
	return e.session.ClearMarkings()
}

// SubmitAttempt validates the current markings. The mutex is released
// for the duration of the validator call; the session stays busy and a
// result returning for a session the learner exited meanwhile is
// discarded. Validator failures leave the attempt retryable. Completing
// the quest closes the session.
func (e *Engine) SubmitAttempt(ctx context.Context) (quest.AttemptResult, error) {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return quest.AttemptResult{}, ErrNoActiveSession
	}
	sess := e.session
	markings, err := sess.BeginAttempt()
	if err != nil {
		e.mu.Unlock()
		return quest.AttemptResult{}, err
	}
	vctx, cancel := context.WithCancel(ctx)
	e.cancelValidation = cancel
	sessionID := sess.ID
	q := sess.Quest
	e.mu.Unlock()

	outcome, verr := e.validator.Validate(vctx, q, markings)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelValidation = nil

	// Identity guard: the result only applies to the session that
	// submitted it.
	if e.session == nil || e.session.ID != sessionID {
		return quest.AttemptResult{}, ErrValidationDiscarded
	}

	if verr != nil {
		if abortErr := sess.AbortAttempt(); abortErr != nil {
			e.logger.Warn("aborting attempt failed", "error", abortErr)
		}
		return quest.AttemptResult{}, fmt.Errorf("validation failed: %w", verr)
	}

	res, err := sess.ResolveAttempt(outcome)
	if err != nil {
		return quest.AttemptResult{}, err
	}

	e.logValidationLocked(ctx, q.ID, outcome)

	if res.RepCompleted {
		if _, err := e.awardXPLocked(ctx, RepXP, "rep:"+q.ID); err != nil {
			e.logger.Warn("rep XP award failed", "error", err)
		}
	}

	if e.activePractical == nil {
		if res.QuestCompleted {
			e.completeQuestLocked(ctx, sess)
		}
		e.persistQuestProgressLocked(ctx, sess, res.QuestCompleted)
	} else if res.QuestCompleted {
		e.completePracticalLocked(ctx, outcome)
	}

	if res.QuestCompleted {
		e.session = nil
		e.activePractical = nil
	}

	return res, nil
}

// completePracticalLocked records a passed practical check and applies
// its rewards. Callers hold e.mu.
func (e *Engine) completePracticalLocked(ctx context.Context, outcome quest.Outcome) {
	p := *e.activePractical
	e.recordKnowledgeResultLocked(ctx, p.ConceptID, p.StageID, concept.TestPractical, outcome.Score, true)
	e.removePendingLocked(p.ConceptID, p.StageID, concept.TestPractical)
	e.bus.Publish(events.TestPassed{At: e.clock.Now(), TestID: p.ID, Score: outcome.Score})
	if _, err := e.awardXPLocked(ctx, TestPassXP, "practical:"+p.ID); err != nil {
		e.logger.Warn("practical XP award failed", "error", err)
	}
}

// ExitQuest abandons the active session, persisting partial rep
// progress. An in-flight validation is canceled and its result will be
// discarded.
func (e *Engine) ExitQuest(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return ErrNoActiveSession
	}
	if e.cancelValidation != nil {
		e.cancelValidation()
		e.cancelValidation = nil
	}
	if e.activePractical == nil {
		e.persistQuestProgressLocked(ctx, e.session, e.session.State() == quest.StatePassed)
	}
	e.session = nil
	e.activePractical = nil
	return nil
}

// completeQuestLocked applies completion rewards and feeds the concept
// graph. Callers hold e.mu.
func (e *Engine) completeQuestLocked(ctx context.Context, sess *quest.Session) {
	q := sess.Quest
	now := e.clock.Now()

	e.bus.Publish(events.QuestCompleted{At: now, QuestID: q.ID})

	if q.RewardXP > 0 {
		if _, err := e.awardXPLocked(ctx, q.RewardXP, "quest:"+q.ID); err != nil {
			e.logger.Warn("quest XP award failed", "quest", q.ID, "error", err)
		}
	}
	e.awardCoinsLocked(ctx, q.RewardCoins, "quest:"+q.ID)
	e.unlockLocked(ctx, "quest_master_"+q.ID, "Quest Master: "+q.Title,
		"Completed all reps of "+q.Title)

	if q.ConceptID == "" {
		return
	}
	done, err := e.graph.OnQuestCompleted(q.ID, q.ConceptID)
	if err != nil {
		e.logger.Warn("concept update failed", "quest", q.ID, "error", err)
		return
	}
	if e.repos.Concept != nil {
		if err := e.repos.Concept.AddQuest(ctx, q.ConceptID, q.ID); err != nil {
			e.logger.Warn("persisting concept quest failed", "error", err)
		}
	}
	for _, sc := range done {
		e.bus.Publish(events.ConceptStageCompleted{At: now, ConceptID: sc.ConceptID, StageID: sc.StageID})
		if e.repos.Concept != nil {
			if err := e.repos.Concept.AddStage(ctx, sc.ConceptID, sc.StageID); err != nil {
				e.logger.Warn("persisting concept stage failed", "error", err)
			}
		}
		for _, req := range sc.Tests {
			e.pendingTests = append(e.pendingTests, PendingTest{
				ID:        pendingID(req.ConceptID, req.StageID, req.Type),
				ConceptID: req.ConceptID,
				StageID:   req.StageID,
				Type:      req.Type,
			})
		}
	}
}

// persistQuestProgressLocked writes the session's rep progress. Callers
// hold e.mu.
func (e *Engine) persistQuestProgressLocked(ctx context.Context, sess *quest.Session, completed bool) {
	if e.repos.QuestProgress == nil {
		return
	}
	prog := &repository.QuestProgress{
		QuestID:       sess.Quest.ID,
		CompletedReps: sess.CompletedReps,
		AttemptsMade:  sess.AttemptsMade,
		Completed:     completed,
	}
	if err := e.repos.QuestProgress.Upsert(ctx, prog); err != nil {
		e.logger.Warn("persisting quest progress failed", "quest", sess.Quest.ID, "error", err)
	}
}

// logValidationLocked appends an attempt outcome to the validation log.
// Callers hold e.mu.
func (e *Engine) logValidationLocked(ctx context.Context, questID string, outcome quest.Outcome) {
	if e.repos.ValidationLog == nil {
		return
	}
	rec := repository.ValidationRecord{
		ID:        uuid.NewString(),
		QuestID:   questID,
		Score:     outcome.Score,
		Passed:    outcome.Passed,
		Feedback:  outcome.Feedback,
		CreatedAt: e.clock.Now(),
	}
	if err := e.repos.ValidationLog.Append(ctx, rec); err != nil {
		e.logger.Warn("logging validation failed", "quest", questID, "error", err)
	}
}

// PendingTests lists the knowledge checks unlocked but not yet taken.
func (e *Engine) PendingTests() []PendingTest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PendingTest, len(e.pendingTests))
	copy(out, e.pendingTests)
	return out
}
