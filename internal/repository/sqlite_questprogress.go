package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/solotrader/tradecraft/internal/db"
)

// SQLiteQuestProgressRepo implements QuestProgressRepo using a SQLite
// database.
type SQLiteQuestProgressRepo struct {
	db db.DBTX
}

// NewSQLiteQuestProgressRepo creates a new SQLiteQuestProgressRepo.
func NewSQLiteQuestProgressRepo(conn db.DBTX) *SQLiteQuestProgressRepo {
	return &SQLiteQuestProgressRepo{db: conn}
}

func (r *SQLiteQuestProgressRepo) Get(ctx context.Context, questID string) (*QuestProgress, error) {
	query := `SELECT quest_id, completed_reps, attempts_made, completed
		FROM quest_progress WHERE quest_id = ?`
	row := r.db.QueryRowContext(ctx, query, questID)

	var p QuestProgress
	var completed int
	err := row.Scan(&p.QuestID, &p.CompletedReps, &p.AttemptsMade, &completed)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("quest progress %q: %w", questID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning quest progress: %w", err)
	}
	p.Completed = intToBool(completed)
	return &p, nil
}

func (r *SQLiteQuestProgressRepo) Upsert(ctx context.Context, p *QuestProgress) error {
	query := `INSERT INTO quest_progress (quest_id, completed_reps, attempts_made, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(quest_id) DO UPDATE SET
			completed_reps = excluded.completed_reps,
			attempts_made = excluded.attempts_made,
			completed = excluded.completed,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		p.QuestID, p.CompletedReps, p.AttemptsMade, boolToInt(p.Completed), nowUTC())
	if err != nil {
		return fmt.Errorf("upserting quest progress: %w", err)
	}
	return nil
}

func (r *SQLiteQuestProgressRepo) List(ctx context.Context) ([]*QuestProgress, error) {
	query := `SELECT quest_id, completed_reps, attempts_made, completed
		FROM quest_progress ORDER BY quest_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing quest progress: %w", err)
	}
	defer rows.Close()

	var out []*QuestProgress
	for rows.Next() {
		var p QuestProgress
		var completed int
		if err := rows.Scan(&p.QuestID, &p.CompletedReps, &p.AttemptsMade, &completed); err != nil {
			return nil, fmt.Errorf("scanning quest progress row: %w", err)
		}
		p.Completed = intToBool(completed)
		out = append(out, &p)
	}
	return out, rows.Err()
}
