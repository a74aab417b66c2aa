package repository

import (
	"context"
	"fmt"

	"github.com/solotrader/tradecraft/internal/achievements"
	"github.com/solotrader/tradecraft/internal/db"
)

// SQLiteAchievementRepo implements AchievementRepo using a SQLite
// database. The table is append-only; the first unlock of an ID wins.
type SQLiteAchievementRepo struct {
	db db.DBTX
}

// NewSQLiteAchievementRepo creates a new SQLiteAchievementRepo.
func NewSQLiteAchievementRepo(conn db.DBTX) *SQLiteAchievementRepo {
	return &SQLiteAchievementRepo{db: conn}
}

func (r *SQLiteAchievementRepo) Append(ctx context.Context, a achievements.Achievement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO achievements (id, title, description, unlocked_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.Title, a.Description, timeToString(a.UnlockedAt))
	if err != nil {
		return fmt.Errorf("appending achievement: %w", err)
	}
	return nil
}

func (r *SQLiteAchievementRepo) List(ctx context.Context) ([]achievements.Achievement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, unlocked_at FROM achievements ORDER BY unlocked_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	defer rows.Close()

	var out []achievements.Achievement
	for rows.Next() {
		var a achievements.Achievement
		var unlockedAt string
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &unlockedAt); err != nil {
			return nil, fmt.Errorf("scanning achievement row: %w", err)
		}
		a.UnlockedAt = parseTime(unlockedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
