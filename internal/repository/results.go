package repository

import (
	"context"
	"fmt"

	"github.com/mazecom/labyrinth-server-go/internal/referee"
)

const outcomeSchema = `
CREATE TABLE IF NOT EXISTS game_outcomes (
	game_id     UUID PRIMARY KEY,
	winners     TEXT[] NOT NULL,
	ejected     TEXT[] NOT NULL,
	rounds      INTEGER NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ResultsRepository stores finished game outcomes. It implements
// referee.OutcomeSink.
type ResultsRepository struct {
	db *DB
}

// NewResultsRepository prepares the outcome store, creating the table when
// missing.
func NewResultsRepository(ctx context.Context, db *DB) (*ResultsRepository, error) {
	if _, err := db.pool.Exec(ctx, outcomeSchema); err != nil {
		return nil, fmt.Errorf("ensuring outcome schema: %w", err)
	}
	return &ResultsRepository{db: db}, nil
}

// RecordOutcome inserts one finished game.
func (r *ResultsRepository) RecordOutcome(ctx context.Context, outcome referee.Outcome) error {
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO game_outcomes (game_id, winners, ejected, rounds) VALUES ($1, $2, $3, $4)`,
		outcome.GameID, outcome.Winners, outcome.Ejected, outcome.Rounds,
	)
	if err != nil {
		return fmt.Errorf("inserting outcome %s: %w", outcome.GameID, err)
	}
	return nil
}

// RecentOutcomes lists the latest finished games, newest first.
func (r *ResultsRepository) RecentOutcomes(ctx context.Context, limit int) ([]referee.Outcome, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT game_id, winners, ejected, rounds FROM game_outcomes ORDER BY finished_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var out []referee.Outcome
	for rows.Next() {
		var o referee.Outcome
		if err := rows.Scan(&o.GameID, &o.Winners, &o.Ejected, &o.Rounds); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
