package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solotrader/tradecraft/internal/db"
	"github.com/solotrader/tradecraft/internal/quest"
)

// SQLiteValidationLogRepo implements ValidationLogRepo using a SQLite
// database. Feedback is stored as a JSON column; it is read back for
// display, never queried.
type SQLiteValidationLogRepo struct {
	db db.DBTX
}

// NewSQLiteValidationLogRepo creates a new SQLiteValidationLogRepo.
func NewSQLiteValidationLogRepo(conn db.DBTX) *SQLiteValidationLogRepo {
	return &SQLiteValidationLogRepo{db: conn}
}

func (r *SQLiteValidationLogRepo) Append(ctx context.Context, rec ValidationRecord) error {
	feedback, err := json.Marshal(rec.Feedback)
	if err != nil {
		return fmt.Errorf("marshaling feedback: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO validation_log (id, quest_id, score, passed, feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.QuestID, rec.Score, boolToInt(rec.Passed), string(feedback), timeToString(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("appending validation record: %w", err)
	}
	return nil
}

func (r *SQLiteValidationLogRepo) ListByQuest(ctx context.Context, questID string) ([]ValidationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, quest_id, score, passed, feedback, created_at
		FROM validation_log WHERE quest_id = ? ORDER BY created_at, id`, questID)
	if err != nil {
		return nil, fmt.Errorf("listing validation records: %w", err)
	}
	defer rows.Close()

	var out []ValidationRecord
	for rows.Next() {
		var rec ValidationRecord
		var passed int
		var feedback, createdAt string
		if err := rows.Scan(&rec.ID, &rec.QuestID, &rec.Score, &passed, &feedback, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning validation record: %w", err)
		}
		rec.Passed = intToBool(passed)
		rec.CreatedAt = parseTime(createdAt)
		if err := json.Unmarshal([]byte(feedback), &rec.Feedback); err != nil {
			rec.Feedback = []quest.Feedback{}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteValidationLogRepo) Stats(ctx context.Context) (ValidationStats, error) {
	var s ValidationStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(passed), 0) FROM validation_log`).
		Scan(&s.Attempts, &s.Passed)
	if err != nil {
		return ValidationStats{}, fmt.Errorf("aggregating validation log: %w", err)
	}
	return s, nil
}
