// Package engine wires the domain packages into the single in-process
// API the presentation layer consumes. One mutex serializes all profile
// and session mutations; the only work done outside it is the validator
// call during attempt submission.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/solotrader/tradecraft/internal/achievements"
	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/concept"
	"github.com/solotrader/tradecraft/internal/events"
	"github.com/solotrader/tradecraft/internal/knowledge"
	"github.com/solotrader/tradecraft/internal/progression"
	"github.com/solotrader/tradecraft/internal/quest"
	"github.com/solotrader/tradecraft/internal/repository"
	"github.com/solotrader/tradecraft/internal/streak"
)

// Fixed rewards that are not part of quest content.
const (
	// RepXP is awarded for every successfully validated rep, separate
	// from the quest's completion reward.
	RepXP = 20

	// TestPassXP is awarded for passing a knowledge test.
	TestPassXP = 50
)

var (
	// ErrSessionActive is returned by StartQuest while a quest session
	// exists; the caller must ExitQuest first.
	ErrSessionActive = errors.New("a quest session is already active")

	// ErrNoActiveSession is returned by quest operations without an
	// active session.
	ErrNoActiveSession = errors.New("no active quest session")

	// ErrNoActiveTest is returned by test operations without an active
	// test session.
	ErrNoActiveTest = errors.New("no active test session")

	// ErrTestActive is returned by StartTest while a test is running.
	ErrTestActive = errors.New("a test session is already active")

	// ErrValidationDiscarded is returned when a validation result came
	// back for a session the learner had already exited.
	ErrValidationDiscarded = errors.New("validation result discarded: session exited")

	// ErrPendingTestNotFound is returned when StartTest names an
	// unknown pending test.
	ErrPendingTestNotFound = errors.New("pending test not found")
)

// Repos bundles the persistence interfaces. Any nil field disables
// persistence for that concern; the engine still works fully in memory.
type Repos struct {
	Profile       repository.ProfileRepo
	QuestProgress repository.QuestProgressRepo
	Concept       repository.ConceptProgressRepo
	Achievements  repository.AchievementRepo
	ValidationLog repository.ValidationLogRepo
	Knowledge     repository.KnowledgeResultRepo
}

// PendingTest is a knowledge check a completed stage has unlocked but
// the learner has not taken yet.
type PendingTest struct {
	ID        string
	ConceptID string
	StageID   string
	Type      concept.TestType
}

// Engine is the progression core. All exported methods are safe for
// concurrent use.
type Engine struct {
	mu sync.Mutex

	cat       *catalog.Catalog
	ledger    *progression.Ledger
	streak    *streak.Tracker
	graph     *concept.Graph
	recorder  *achievements.Recorder
	validator quest.Validator
	bus       *events.Bus
	clock     Clock
	logger    *slog.Logger
	repos     Repos

	session          *quest.Session
	cancelValidation context.CancelFunc

	test            *knowledge.Session
	pendingTests    []PendingTest
	activePractical *PendingTest
}

// Options configures New. Catalog and Validator are required; the rest
// default to in-memory state, the system clock, and slog.Default.
type Options struct {
	Catalog   *catalog.Catalog
	Validator quest.Validator
	Bus       *events.Bus
	Clock     Clock
	Logger    *slog.Logger
	Repos     Repos
}

// New builds an engine with a fresh profile. Call Load to restore
// persisted state.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("engine requires a catalog")
	}
	if opts.Validator == nil {
		return nil, errors.New("engine requires a validator")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}

	return &Engine{
		cat:       opts.Catalog,
		ledger:    progression.NewLedger(progression.NewProfile()),
		streak:    &streak.Tracker{},
		graph:     concept.NewGraph(opts.Catalog),
		recorder:  achievements.NewRecorder(),
		validator: opts.Validator,
		bus:       opts.Bus,
		clock:     opts.Clock,
		logger:    opts.Logger,
		repos:     opts.Repos,
	}, nil
}

// Load restores persisted state from the configured repositories.
// Missing records are not an error; the engine keeps its fresh state.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.repos.Profile != nil {
		rec, err := e.repos.Profile.Get(ctx)
		switch {
		case err == nil:
			e.ledger = progression.NewLedger(progression.Profile{
				Level: rec.Level, XP: rec.XP, Coins: rec.Coins,
			})
			e.streak = &streak.Tracker{LastActive: rec.StreakLastActive, Count: rec.StreakCount}
		case errors.Is(err, repository.ErrNotFound):
		default:
			return fmt.Errorf("loading profile: %w", err)
		}
	}

	if e.repos.Concept != nil {
		list, err := e.repos.Concept.List(ctx)
		if err != nil {
			return fmt.Errorf("loading concept progress: %w", err)
		}
		for _, p := range list {
			e.graph.Restore(p)
		}
	}

	if e.repos.Achievements != nil {
		list, err := e.repos.Achievements.List(ctx)
		if err != nil {
			return fmt.Errorf("loading achievements: %w", err)
		}
		e.recorder.Restore(list)
	}

	if err := e.rebuildPendingTestsLocked(ctx); err != nil {
		return err
	}

	return nil
}

// rebuildPendingTestsLocked derives the pending knowledge checks from
// completed stages that have no recorded result yet. Callers hold e.mu.
func (e *Engine) rebuildPendingTestsLocked(ctx context.Context) error {
	if e.repos.Knowledge == nil {
		return nil
	}
	results, err := e.repos.Knowledge.List(ctx)
	if err != nil {
		return fmt.Errorf("loading knowledge results: %w", err)
	}
	// Failed submissions keep the check pending; only a pass clears it.
	taken := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Passed {
			taken[pendingID(r.ConceptID, r.StageID, r.Type)] = true
		}
	}

	e.pendingTests = nil
	for _, cd := range e.cat.Concepts() {
		prog := e.graph.Snapshot(cd.ID)
		for _, st := range cd.Stages {
			if !prog.CompletedStages[st.ID] {
				continue
			}
			if st.HasMCQ {
				e.appendPendingLocked(cd.ID, st.ID, concept.TestMCQ, taken)
			}
			if st.HasPractical {
				e.appendPendingLocked(cd.ID, st.ID, concept.TestPractical, taken)
			}
		}
	}
	return nil
}

func (e *Engine) appendPendingLocked(conceptID, stageID string, typ concept.TestType, taken map[string]bool) {
	id := pendingID(conceptID, stageID, typ)
	if taken[id] {
		return
	}
	e.pendingTests = append(e.pendingTests, PendingTest{
		ID:        id,
		ConceptID: conceptID,
		StageID:   stageID,
		Type:      typ,
	})
}

func pendingID(conceptID, stageID string, typ concept.TestType) string {
	return fmt.Sprintf("%s/%s/%s", conceptID, stageID, typ)
}

// Profile returns a copy of the current progression state.
func (e *Engine) Profile() progression.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Profile()
}

// Rank returns the current rank label.
func (e *Engine) Rank() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Rank()
}

// RankColor returns the interpolated rank color for display.
func (e *Engine) RankColor() progression.RGB {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.RankColor()
}

// Streak returns the current streak count.
func (e *Engine) Streak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streak.Count
}

// Achievements returns the unlock log in order.
func (e *Engine) Achievements() []achievements.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recorder.All()
}

// DailyQuests returns today's rotating quest selection for the current
// level.
func (e *Engine) DailyQuests() []catalog.QuestDefinition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cat.DailyQuests(e.ledger.Profile().Level, e.clock.Now())
}

// IsConceptUnlocked reports whether a concept's prerequisites are
// mastered.
func (e *Engine) IsConceptUnlocked(conceptID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.IsConceptUnlocked(conceptID)
}

// IsConceptMastered reports whether every stage of a concept is done.
func (e *Engine) IsConceptMastered(conceptID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.IsMastered(conceptID)
}

// ConceptProgress returns a copy of the tracked progress for a concept.
func (e *Engine) ConceptProgress(conceptID string) concept.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Snapshot(conceptID)
}

// RecordDailyActivity feeds a day into the streak tracker and returns
// the updated count.
func (e *Engine) RecordDailyActivity(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	count := e.streak.RecordActivity(now)
	e.bus.Publish(events.StreakUpdated{At: now, Count: count})
	e.persistProfile(ctx)
	return count
}

// AwardXP applies an external XP award. Non-positive amounts are
// rejected.
func (e *Engine) AwardXP(ctx context.Context, amount int, reason string) (progression.AwardResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.awardXPLocked(ctx, amount, reason)
}

// awardXPLocked applies XP and publishes the resulting events. Callers
// hold e.mu.
func (e *Engine) awardXPLocked(ctx context.Context, amount int, reason string) (progression.AwardResult, error) {
	res, err := e.ledger.AwardXP(amount)
	if err != nil {
		return progression.AwardResult{}, err
	}

	now := e.clock.Now()
	e.bus.Publish(events.XPAwarded{At: now, Amount: amount, Reason: reason})
	for lvl := res.Level - res.LevelsGained + 1; lvl <= res.Level; lvl++ {
		if res.LevelsGained > 0 {
			e.bus.Publish(events.LevelUp{At: now, NewLevel: lvl})
		}
	}

	e.persistProfile(ctx)
	return res, nil
}

// awardCoinsLocked adds coins and publishes the event. Callers hold e.mu.
func (e *Engine) awardCoinsLocked(ctx context.Context, amount int, reason string) {
	if amount <= 0 {
		return
	}
	if _, err := e.ledger.AwardCoins(amount); err != nil {
		return
	}
	e.bus.Publish(events.CoinsAwarded{At: e.clock.Now(), Amount: amount, Reason: reason})
	e.persistProfile(ctx)
}

// unlockLocked records an achievement once and publishes the event.
// Callers hold e.mu.
func (e *Engine) unlockLocked(ctx context.Context, id, title, description string) {
	now := e.clock.Now()
	a := achievements.Achievement{ID: id, Title: title, Description: description, UnlockedAt: now}
	if !e.recorder.Unlock(a) {
		return
	}
	e.bus.Publish(events.AchievementUnlocked{At: now, ID: id, Title: title})
	if e.repos.Achievements != nil {
		if err := e.repos.Achievements.Append(ctx, a); err != nil {
			e.logger.Warn("persisting achievement failed", "id", id, "error", err)
		}
	}
}

// persistProfile writes the combined progression and streak state.
// Callers hold e.mu.
func (e *Engine) persistProfile(ctx context.Context) {
	if e.repos.Profile == nil {
		return
	}
	p := e.ledger.Profile()
	rec := &repository.ProfileRecord{
		Level:            p.Level,
		XP:               p.XP,
		Coins:            p.Coins,
		StreakCount:      e.streak.Count,
		StreakLastActive: e.streak.LastActive,
	}
	if err := e.repos.Profile.Upsert(ctx, rec); err != nil {
		e.logger.Warn("persisting profile failed", "error", err)
	}
}
