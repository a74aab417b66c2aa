// Package events defines the engine's outbound domain events and a
// synchronous in-memory bus for dispatching them to collaborators
// (persistence, notifications, CLI output).
package events

import (
	"time"
)

// EventType identifies a kind of domain event.
type EventType string

const (
	EventLevelUp               EventType = "progression.level_up"
	EventXPAwarded             EventType = "progression.xp_awarded"
	EventCoinsAwarded          EventType = "progression.coins_awarded"
	EventStreakUpdated         EventType = "streak.updated"
	EventQuestCompleted        EventType = "quest.completed"
	EventConceptStageCompleted EventType = "concept.stage_completed"
	EventTestPassed            EventType = "knowledge.test_passed"
	EventAchievementUnlocked   EventType = "achievements.unlocked"
)

// Event is the base interface for all domain events.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time
}

// LevelUp fires once per level gained, including intermediate levels of
// a cascading award.
type LevelUp struct {
	At       time.Time
	NewLevel int
}

func (e LevelUp) EventType() EventType  { return EventLevelUp }
func (e LevelUp) OccurredAt() time.Time { return e.At }

// XPAwarded fires for every applied XP award.
type XPAwarded struct {
	At     time.Time
	Amount int
	Reason string
}

func (e XPAwarded) EventType() EventType  { return EventXPAwarded }
func (e XPAwarded) OccurredAt() time.Time { return e.At }

// CoinsAwarded fires when coins land in the balance.
type CoinsAwarded struct {
	At     time.Time
	Amount int
	Reason string
}

func (e CoinsAwarded) EventType() EventType  { return EventCoinsAwarded }
func (e CoinsAwarded) OccurredAt() time.Time { return e.At }

// StreakUpdated fires when a recorded activity changes or confirms the
// streak count.
type StreakUpdated struct {
	At    time.Time
	Count int
}

func (e StreakUpdated) EventType() EventType  { return EventStreakUpdated }
func (e StreakUpdated) OccurredAt() time.Time { return e.At }

// QuestCompleted fires when the final rep of a quest passes validation.
type QuestCompleted struct {
	At      time.Time
	QuestID string
}

func (e QuestCompleted) EventType() EventType  { return EventQuestCompleted }
func (e QuestCompleted) OccurredAt() time.Time { return e.At }

// ConceptStageCompleted fires when a stage's required quests are all
// done.
type ConceptStageCompleted struct {
	At        time.Time
	ConceptID string
	StageID   string
}

func (e ConceptStageCompleted) EventType() EventType  { return EventConceptStageCompleted }
func (e ConceptStageCompleted) OccurredAt() time.Time { return e.At }

// TestPassed fires when a knowledge test submission meets its passing
// score.
type TestPassed struct {
	At     time.Time
	TestID string
	Score  int
}

func (e TestPassed) EventType() EventType  { return EventTestPassed }
func (e TestPassed) OccurredAt() time.Time { return e.At }

// AchievementUnlocked fires on the first unlock of an achievement ID.
type AchievementUnlocked struct {
	At    time.Time
	ID    string
	Title string
}

func (e AchievementUnlocked) EventType() EventType  { return EventAchievementUnlocked }
func (e AchievementUnlocked) OccurredAt() time.Time { return e.At }
