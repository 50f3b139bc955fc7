package history

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/google/uuid"
)

// MemoryRepository implements Repository interface with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// All rounds in the order they were saved
	rounds []*entities.RoundRecord
	// Indexes into rounds by player
	playerRounds map[string][]int
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		playerRounds: make(map[string][]int),
	}
}

// SaveRound stores a round and indexes it under its player
func (r *MemoryRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	if round.ID == "" {
		round.ID = uuid.New().String()
	}
	if round.CompletedAt.IsZero() {
		round.CompletedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	roundCopy := *round
	r.rounds = append(r.rounds, &roundCopy)
	r.playerRounds[round.PlayerID] = append(r.playerRounds[round.PlayerID], len(r.rounds)-1)
	return nil
}

// GetPlayerRounds retrieves rounds for a player
func (r *MemoryRepository) GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexes := r.playerRounds[playerID]
	results := make([]*entities.RoundRecord, 0)
	for i := len(indexes) - 1; i >= 0 && len(results) < limit; i-- {
		roundCopy := *r.rounds[indexes[i]]
		results = append(results, &roundCopy)
	}
	return results, nil
}

// GetRecentRounds retrieves recent rounds of a game type
func (r *MemoryRepository) GetRecentRounds(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RoundRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*entities.RoundRecord, 0)
	for i := len(r.rounds) - 1; i >= 0 && len(results) < limit; i-- {
		if gameType != "" && r.rounds[i].GameType != gameType {
			continue
		}
		roundCopy := *r.rounds[i]
		results = append(results, &roundCopy)
	}
	return results, nil
}

// Close is a no-op for memory repository since there are no resources to close
func (r *MemoryRepository) Close() error {
	return nil
}
