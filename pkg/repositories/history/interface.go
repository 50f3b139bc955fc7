package history

import (
	"context"

	"github.com/fadedpez/tucocasino/pkg/entities"
)

// Repository stores the settled rounds of every game
type Repository interface {
	// SaveRound records a settled round
	SaveRound(ctx context.Context, round *entities.RoundRecord) error

	// GetPlayerRounds retrieves a player's most recent rounds, newest first
	GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error)

	// GetRecentRounds retrieves the most recent rounds of a game type, newest
	// first. An empty game type matches every game.
	GetRecentRounds(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RoundRecord, error)

	// Close closes any resources used by the repository
	Close() error
}
