package referee

import (
	"context"

	"github.com/google/uuid"
)

// Outcome is the final result of one game: winner and ejected player names,
// both sorted alphabetically.
type Outcome struct {
	GameID  uuid.UUID
	Winners []string
	Ejected []string
	Rounds  int
}

// OutcomeSink receives finished game results, e.g. a leaderboard database.
type OutcomeSink interface {
	RecordOutcome(ctx context.Context, outcome Outcome) error
}
