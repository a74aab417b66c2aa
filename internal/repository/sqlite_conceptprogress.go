package repository

import (
	"context"
	"fmt"

	"github.com/solotrader/tradecraft/internal/concept"
	"github.com/solotrader/tradecraft/internal/db"
)

// SQLiteConceptProgressRepo implements ConceptProgressRepo using a
// SQLite database. Completed quests and stages are stored as membership
// rows, so adds are idempotent by primary key.
type SQLiteConceptProgressRepo struct {
	db db.DBTX
}

// NewSQLiteConceptProgressRepo creates a new SQLiteConceptProgressRepo.
func NewSQLiteConceptProgressRepo(conn db.DBTX) *SQLiteConceptProgressRepo {
	return &SQLiteConceptProgressRepo{db: conn}
}

func (r *SQLiteConceptProgressRepo) Get(ctx context.Context, conceptID string) (*concept.Progress, error) {
	p := &concept.Progress{
		ConceptID:       conceptID,
		CompletedQuests: make(map[string]bool),
		CompletedStages: make(map[string]bool),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT quest_id FROM concept_quests WHERE concept_id = ?`, conceptID)
	if err != nil {
		return nil, fmt.Errorf("listing concept quests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scanning concept quest row: %w", err)
		}
		p.CompletedQuests[q] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stageRows, err := r.db.QueryContext(ctx,
		`SELECT stage_id FROM concept_stages WHERE concept_id = ?`, conceptID)
	if err != nil {
		return nil, fmt.Errorf("listing concept stages: %w", err)
	}
	defer stageRows.Close()
	for stageRows.Next() {
		var s string
		if err := stageRows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning concept stage row: %w", err)
		}
		p.CompletedStages[s] = true
	}
	return p, stageRows.Err()
}

func (r *SQLiteConceptProgressRepo) AddQuest(ctx context.Context, conceptID, questID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO concept_quests (concept_id, quest_id) VALUES (?, ?)`,
		conceptID, questID)
	if err != nil {
		return fmt.Errorf("adding concept quest: %w", err)
	}
	return nil
}

func (r *SQLiteConceptProgressRepo) AddStage(ctx context.Context, conceptID, stageID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO concept_stages (concept_id, stage_id) VALUES (?, ?)`,
		conceptID, stageID)
	if err != nil {
		return fmt.Errorf("adding concept stage: %w", err)
	}
	return nil
}

func (r *SQLiteConceptProgressRepo) List(ctx context.Context) ([]*concept.Progress, error) {
	byID := make(map[string]*concept.Progress)
	get := func(conceptID string) *concept.Progress {
		p, ok := byID[conceptID]
		if !ok {
			p = &concept.Progress{
				ConceptID:       conceptID,
				CompletedQuests: make(map[string]bool),
				CompletedStages: make(map[string]bool),
			}
			byID[conceptID] = p
		}
		return p
	}

	rows, err := r.db.QueryContext(ctx, `SELECT concept_id, quest_id FROM concept_quests`)
	if err != nil {
		return nil, fmt.Errorf("listing concept quests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c, q string
		if err := rows.Scan(&c, &q); err != nil {
			return nil, fmt.Errorf("scanning concept quest row: %w", err)
		}
		get(c).CompletedQuests[q] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stageRows, err := r.db.QueryContext(ctx, `SELECT concept_id, stage_id FROM concept_stages`)
	if err != nil {
		return nil, fmt.Errorf("listing concept stages: %w", err)
	}
	defer stageRows.Close()
	for stageRows.Next() {
		var c, s string
		if err := stageRows.Scan(&c, &s); err != nil {
			return nil, fmt.Errorf("scanning concept stage row: %w", err)
		}
		get(c).CompletedStages[s] = true
	}
	if err := stageRows.Err(); err != nil {
		return nil, err
	}

	out := make([]*concept.Progress, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	return out, nil
}
