package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/concept"
	"github.com/solotrader/tradecraft/internal/events"
	"github.com/solotrader/tradecraft/internal/knowledge"
	"github.com/solotrader/tradecraft/internal/quest"
	"github.com/solotrader/tradecraft/internal/repository"
)

// DefaultTestTimeLimitSecs is the MCQ test deadline when the content
// does not set one.
const DefaultTestTimeLimitSecs = 600

// TestView is a read-only snapshot of the active test session.
type TestView struct {
	TestID    string
	ConceptID string
	StageID   string
	Index     int
	Questions int
}

// StartTest begins the pending knowledge test with the given ID. MCQ
// tests run in the test runner; practical checks are started with
// StartPracticalAssessment instead.
func (e *Engine) StartTest(pendingID string) (TestView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.test != nil {
		return TestView{}, ErrTestActive
	}

	idx := slices.IndexFunc(e.pendingTests, func(p PendingTest) bool {
		return p.ID == pendingID && p.Type == concept.TestMCQ
	})
	if idx < 0 {
		return TestView{}, ErrPendingTestNotFound
	}
	pending := e.pendingTests[idx]

	def, err := e.cat.Concept(pending.ConceptID)
	if err != nil {
		return TestView{}, err
	}

	sess, err := knowledge.NewSession(pending.ConceptID, pending.StageID,
		def.MCQBank, knowledge.DefaultPassingScore, DefaultTestTimeLimitSecs, e.clock.Now())
	if err != nil {
		return TestView{}, err
	}

	e.test = sess
	return e.testViewLocked(), nil
}

// Test returns a snapshot of the active test session.
func (e *Engine) Test() (TestView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.test == nil {
		return TestView{}, ErrNoActiveTest
	}
	return e.testViewLocked(), nil
}

func (e *Engine) testViewLocked() TestView {
	return TestView{
		TestID:    e.test.ID,
		ConceptID: e.test.ConceptID,
		StageID:   e.test.StageID,
		Index:     e.test.Index(),
		Questions: len(e.test.Questions),
	}
}

// TestQuestion returns the question at the given index in the active
// test.
func (e *Engine) TestQuestion(index int) (catalog.MCQQuestion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.test == nil {
		return catalog.MCQQuestion{}, ErrNoActiveTest
	}
	if index < 0 || index >= len(e.test.Questions) {
		return catalog.MCQQuestion{}, fmt.Errorf("question index %d out of range", index)
	}
	return e.test.Questions[index], nil
}

// Answer stores a choice for a question in the active test.
func (e *Engine) Answer(questionIndex, choice int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.test == nil {
		return ErrNoActiveTest
	}
	return e.test.Answer(questionIndex, choice)
}

// GoTo navigates the active test, clamped to the question range.
func (e *Engine) GoTo(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.test == nil {
		return ErrNoActiveTest
	}
	return e.test.GoTo(index)
}

// SubmitTest scores the active test. A pass awards XP and the Test
// Master achievement. The session is destroyed either way; retaking
// requires the stage to unlock another test.
func (e *Engine) SubmitTest(ctx context.Context) (knowledge.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitTestLocked(ctx)
}

func (e *Engine) submitTestLocked(ctx context.Context) (knowledge.Result, error) {
	if e.test == nil {
		return knowledge.Result{}, ErrNoActiveTest
	}

	res, err := e.test.Submit()
	if err != nil {
		return knowledge.Result{}, err
	}
	testID := e.test.ID
	conceptID, stageID := e.test.ConceptID, e.test.StageID
	e.test = nil

	e.recordKnowledgeResultLocked(ctx, conceptID, stageID, concept.TestMCQ, res.ScorePercent, res.Passed)

	if res.Passed {
		e.removePendingLocked(conceptID, stageID, concept.TestMCQ)
		e.bus.Publish(events.TestPassed{At: e.clock.Now(), TestID: testID, Score: res.ScorePercent})
		if _, err := e.awardXPLocked(ctx, TestPassXP, "test:"+testID); err != nil {
			e.logger.Warn("test XP award failed", "error", err)
		}
		e.unlockLocked(ctx, "test_master", "Test Master", "Passed a knowledge test")
	}
	return res, nil
}

// removePendingLocked drops one pending knowledge check once a passing
// result is recorded. Callers hold e.mu.
func (e *Engine) removePendingLocked(conceptID, stageID string, typ concept.TestType) {
	id := pendingID(conceptID, stageID, typ)
	idx := slices.IndexFunc(e.pendingTests, func(p PendingTest) bool { return p.ID == id })
	if idx >= 0 {
		e.pendingTests = slices.Delete(e.pendingTests, idx, idx+1)
	}
}

// recordKnowledgeResultLocked persists a submitted knowledge check.
// Callers hold e.mu.
func (e *Engine) recordKnowledgeResultLocked(ctx context.Context, conceptID, stageID string, typ concept.TestType, score int, passed bool) {
	if e.repos.Knowledge == nil {
		return
	}
	rec := repository.KnowledgeResult{
		ID:        uuid.NewString(),
		ConceptID: conceptID,
		StageID:   stageID,
		Type:      typ,
		Score:     score,
		Passed:    passed,
		CreatedAt: e.clock.Now(),
	}
	if err := e.repos.Knowledge.Append(ctx, rec); err != nil {
		e.logger.Warn("recording knowledge result failed", "concept", conceptID, "stage", stageID, "error", err)
	}
}

// AbandonTest discards the active test without scoring it.
func (e *Engine) AbandonTest() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.test == nil {
		return ErrNoActiveTest
	}
	e.test = nil
	return nil
}

// TickTest auto-submits the active test once its deadline passes.
// Returns the result and true when a submission happened.
func (e *Engine) TickTest(ctx context.Context) (knowledge.Result, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.test == nil || !e.test.Expired(e.clock.Now()) {
		return knowledge.Result{}, false, nil
	}
	res, err := e.submitTestLocked(ctx)
	if err != nil {
		return knowledge.Result{}, false, err
	}
	return res, true, nil
}

// StartPracticalAssessment turns a pending practical check into a
// marking session graded by the validator, reusing the quest flow with
// a single required rep.
func (e *Engine) StartPracticalAssessment(ctx context.Context, pendingID string) (SessionView, error) {
	e.mu.Lock()

	if e.session != nil {
		e.mu.Unlock()
		return SessionView{}, ErrSessionActive
	}

	idx := slices.IndexFunc(e.pendingTests, func(p PendingTest) bool {
		return p.ID == pendingID && p.Type == concept.TestPractical
	})
	if idx < 0 {
		e.mu.Unlock()
		return SessionView{}, ErrPendingTestNotFound
	}
	pending := e.pendingTests[idx]

	def, err := e.cat.Concept(pending.ConceptID)
	if err != nil {
		e.mu.Unlock()
		return SessionView{}, err
	}
	stageIdx := slices.IndexFunc(def.Stages, func(st catalog.Stage) bool {
		return st.ID == pending.StageID
	})
	if stageIdx < 0 {
		e.mu.Unlock()
		return SessionView{}, ErrPendingTestNotFound
	}
	practical, ok := def.PracticalFor(def.Stages[stageIdx])
	if !ok {
		e.mu.Unlock()
		return SessionView{}, ErrPendingTestNotFound
	}

	q := practicalQuest(practical)
	e.session = quest.NewSession(q, 0, e.clock.Now())
	active := e.pendingTests[idx]
	e.activePractical = &active
	view := e.sessionViewLocked()
	e.mu.Unlock()
	return view, nil
}

// practicalQuest adapts a practical test definition into the quest
// session shape: one rep, graded against the practical's criteria.
// ConceptID stays empty; practicals do not feed stage completion.
func practicalQuest(p catalog.PracticalTest) catalog.QuestDefinition {
	return catalog.QuestDefinition{
		ID:            "practical_" + p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Criteria:      p.Criteria,
		RequiredReps:  1,
		MinAccuracy:   knowledge.DefaultPassingScore,
		TimeLimitSecs: p.TimeLimitSecs,
	}
}
