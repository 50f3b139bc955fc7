package jackpot

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fadedpez/tucocasino/internal/types"
)

// Manager holds the pools of every machine, keyed by pool ID
type Manager struct {
	mu    sync.RWMutex
	pools map[string]*Pool
	opts  []Option
}

// NewManager creates an empty manager. opts are applied to every pool it
// registers.
func NewManager(opts ...Option) *Manager {
	return &Manager{
		pools: make(map[string]*Pool),
		opts:  opts,
	}
}

// Register creates the pool described by cfg
func (m *Manager) Register(cfg Config) (*Pool, error) {
	pool, err := NewPool(cfg, m.opts...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pools[cfg.ID]; exists {
		return nil, types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("jackpot %s is already registered", cfg.ID))
	}
	m.pools[cfg.ID] = pool
	return pool, nil
}

// Pool returns the pool registered under id
func (m *Manager) Pool(id string) (*Pool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pool, ok := m.pools[id]
	if !ok {
		return nil, types.NewGameError(types.ErrGameNotFound, fmt.Sprintf("Jackpot %s not found", id))
	}
	return pool, nil
}

// Statuses returns a snapshot of every pool ordered by ID
func (m *Manager) Statuses() []Status {
	m.mu.RLock()
	pools := make([]*Pool, 0, len(m.pools))
	for _, pool := range m.pools {
		pools = append(pools, pool)
	}
	m.mu.RUnlock()

	statuses := make([]Status, len(pools))
	for i, pool := range pools {
		statuses[i] = pool.Status()
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses
}
