package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/solotrader/tradecraft/internal/db"
)

// SQLiteProfileRepo implements ProfileRepo using a SQLite database.
// A single-learner app stores one row under the fixed id 'default'.
type SQLiteProfileRepo struct {
	db db.DBTX
}

// NewSQLiteProfileRepo creates a new SQLiteProfileRepo.
func NewSQLiteProfileRepo(conn db.DBTX) *SQLiteProfileRepo {
	return &SQLiteProfileRepo{db: conn}
}

func (r *SQLiteProfileRepo) Get(ctx context.Context) (*ProfileRecord, error) {
	query := `SELECT level, xp, coins, streak_count, streak_last_active
		FROM profile WHERE id = 'default'`
	row := r.db.QueryRowContext(ctx, query)

	var p ProfileRecord
	var lastActive string
	err := row.Scan(&p.Level, &p.XP, &p.Coins, &p.StreakCount, &lastActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	p.StreakLastActive = parseTime(lastActive)
	return &p, nil
}

func (r *SQLiteProfileRepo) Upsert(ctx context.Context, p *ProfileRecord) error {
	query := `INSERT INTO profile (id, level, xp, coins, streak_count, streak_last_active, created_at, updated_at)
		VALUES ('default', ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			level = excluded.level,
			xp = excluded.xp,
			coins = excluded.coins,
			streak_count = excluded.streak_count,
			streak_last_active = excluded.streak_last_active,
			updated_at = excluded.updated_at`
	now := nowUTC()
	_, err := r.db.ExecContext(ctx, query,
		p.Level, p.XP, p.Coins, p.StreakCount, timeToString(p.StreakLastActive), now, now)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
