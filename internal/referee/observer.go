package referee

import (
	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// Observer watches a game from the outside. It receives the public view
// after every completed turn and the outcome at the end. Observer errors are
// logged and never affect the game.
type Observer interface {
	StateUpdated(st *state.GameState) error
	GameOver(outcome Outcome) error
}

// LoggingObserver writes turn-by-turn summaries to a zap logger.
type LoggingObserver struct {
	logger *zap.Logger
	turn   int
}

// NewLoggingObserver builds an observer that logs each turn.
func NewLoggingObserver(logger *zap.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) StateUpdated(st *state.GameState) error {
	o.turn++
	o.logger.Info("turn completed",
		zap.Int("turn", o.turn),
		zap.String("next", st.CurrentColor()),
		zap.Int("playersLeft", len(st.Order())),
	)
	return nil
}

func (o *LoggingObserver) GameOver(outcome Outcome) error {
	o.logger.Info("game over",
		zap.String("gameId", outcome.GameID.String()),
		zap.Strings("winners", outcome.Winners),
		zap.Strings("ejected", outcome.Ejected),
		zap.Int("rounds", outcome.Rounds),
	)
	return nil
}
