// Package repository persists learner state over SQLite: the profile,
// quest progress, concept progress, achievements, and the validation
// log.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/solotrader/tradecraft/internal/achievements"
	"github.com/solotrader/tradecraft/internal/concept"
	"github.com/solotrader/tradecraft/internal/quest"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProfileRecord is the persisted learner profile: progression plus
// streak state in one row.
type ProfileRecord struct {
	Level            int
	XP               int
	Coins            int
	StreakCount      int
	StreakLastActive time.Time // zero when no activity recorded yet
}

// QuestProgress is the persisted per-quest progress.
type QuestProgress struct {
	QuestID       string
	CompletedReps int
	AttemptsMade  int
	Completed     bool
}

// ValidationRecord is one logged validation attempt.
type ValidationRecord struct {
	ID        string
	QuestID   string
	Score     int
	Passed    bool
	Feedback  []quest.Feedback
	CreatedAt time.Time
}

// ValidationStats aggregates the validation log for one quest or all
// quests.
type ValidationStats struct {
	Attempts int
	Passed   int
}

// KnowledgeResult is one submitted knowledge check, MCQ or practical.
type KnowledgeResult struct {
	ID        string
	ConceptID string
	StageID   string
	Type      concept.TestType
	Score     int
	Passed    bool
	CreatedAt time.Time
}

type ProfileRepo interface {
	Get(ctx context.Context) (*ProfileRecord, error)
	Upsert(ctx context.Context, p *ProfileRecord) error
}

type QuestProgressRepo interface {
	Get(ctx context.Context, questID string) (*QuestProgress, error)
	Upsert(ctx context.Context, p *QuestProgress) error
	List(ctx context.Context) ([]*QuestProgress, error)
}

type ConceptProgressRepo interface {
	Get(ctx context.Context, conceptID string) (*concept.Progress, error)
	AddQuest(ctx context.Context, conceptID, questID string) error
	AddStage(ctx context.Context, conceptID, stageID string) error
	List(ctx context.Context) ([]*concept.Progress, error)
}

type AchievementRepo interface {
	Append(ctx context.Context, a achievements.Achievement) error
	List(ctx context.Context) ([]achievements.Achievement, error)
}

type ValidationLogRepo interface {
	Append(ctx context.Context, rec ValidationRecord) error
	ListByQuest(ctx context.Context, questID string) ([]ValidationRecord, error)
	Stats(ctx context.Context) (ValidationStats, error)
}

type KnowledgeResultRepo interface {
	Append(ctx context.Context, rec KnowledgeResult) error
	List(ctx context.Context) ([]KnowledgeResult, error)
}
