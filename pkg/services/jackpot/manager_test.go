package jackpot

import (
	"testing"

	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/fadedpez/tucocasino/pkg/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegisterAndLookup(t *testing.T) {
	m := NewManager(WithSource(rng.NewSeeded(1)))

	pool, err := m.Register(testConfig())
	require.NoError(t, err)

	found, err := m.Pool("main")
	require.NoError(t, err)
	assert.Same(t, pool, found)

	_, err = m.Pool("missing")
	assert.True(t, types.IsGameError(err, types.ErrGameNotFound))
}

func TestManagerRejectsDuplicates(t *testing.T) {
	m := NewManager()
	_, err := m.Register(testConfig())
	require.NoError(t, err)

	_, err = m.Register(testConfig())
	assert.True(t, types.IsGameError(err, types.ErrInvalidArgument))
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	m := NewManager()
	cfg := testConfig()
	cfg.ContributionRate = dec("-0.1")

	_, err := m.Register(cfg)
	assert.True(t, types.IsGameError(err, types.ErrInvalidArgument))
	assert.Empty(t, m.Statuses())
}

func TestManagerStatusesSorted(t *testing.T) {
	m := NewManager()
	for _, id := range []string{"mega", "main", "mini"} {
		cfg := testConfig()
		cfg.ID = id
		_, err := m.Register(cfg)
		require.NoError(t, err)
	}

	statuses := m.Statuses()
	require.Len(t, statuses, 3)
	assert.Equal(t, "main", statuses[0].ID)
	assert.Equal(t, "mega", statuses[1].ID)
	assert.Equal(t, "mini", statuses[2].ID)
}
