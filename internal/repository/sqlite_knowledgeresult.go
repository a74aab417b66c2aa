package repository

import (
	"context"
	"fmt"

	"github.com/solotrader/tradecraft/internal/concept"
	"github.com/solotrader/tradecraft/internal/db"
)

// SQLiteKnowledgeResultRepo implements KnowledgeResultRepo using a
// SQLite database.
type SQLiteKnowledgeResultRepo struct {
	db db.DBTX
}

// NewSQLiteKnowledgeResultRepo creates a new SQLiteKnowledgeResultRepo.
func NewSQLiteKnowledgeResultRepo(conn db.DBTX) *SQLiteKnowledgeResultRepo {
	return &SQLiteKnowledgeResultRepo{db: conn}
}

func (r *SQLiteKnowledgeResultRepo) Append(ctx context.Context, rec KnowledgeResult) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge_results (id, concept_id, stage_id, type, score, passed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ConceptID, rec.StageID, string(rec.Type), rec.Score,
		boolToInt(rec.Passed), timeToString(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("appending knowledge result: %w", err)
	}
	return nil
}

func (r *SQLiteKnowledgeResultRepo) List(ctx context.Context) ([]KnowledgeResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, concept_id, stage_id, type, score, passed, created_at
		FROM knowledge_results ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge results: %w", err)
	}
	defer rows.Close()

	var out []KnowledgeResult
	for rows.Next() {
		var rec KnowledgeResult
		var typ string
		var passed int
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.ConceptID, &rec.StageID, &typ, &rec.Score, &passed, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning knowledge result: %w", err)
		}
		rec.Type = concept.TestType(typ)
		rec.Passed = intToBool(passed)
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
