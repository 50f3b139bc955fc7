package games

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/stretchr/testify/suite"
)

type counter struct {
	id    string
	value int
	done  bool
}

type RegistryTestSuite struct {
	suite.Suite
	clock    *quartz.Mock
	registry *Registry[*counter]
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.clock = quartz.NewMock(s.T())
	s.registry = NewRegistry[*counter](s.clock)
}

func (s *RegistryTestSuite) create() string {
	return s.registry.Create(func(id string) *counter { return &counter{id: id} })
}

func (s *RegistryTestSuite) TestNewRegistry() {
	// Execute
	registry := NewRegistry[int](nil)

	// Assert
	s.NotNil(registry, "Registry should not be nil")
	s.NotNil(registry.entries, "Entries map should be initialized")
	s.Zero(registry.Len(), "Registry should be empty")
}

func (s *RegistryTestSuite) TestCreateAssignsUniqueIDs() {
	// Execute
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		id := s.create()
		s.False(seen[id], "ID %s should be unique", id)
		seen[id] = true
	}

	// Assert
	s.Equal(500, s.registry.Len())
}

func (s *RegistryTestSuite) TestCreatePassesIDToBuilder() {
	id := s.create()

	err := s.registry.Read(id, func(c *counter) {
		s.Equal(id, c.id)
	})
	s.NoError(err)
}

func (s *RegistryTestSuite) TestUpdate() {
	// Setup
	id := s.create()

	// Execute
	err := s.registry.Update(id, func(c *counter) error {
		c.value = 7
		return nil
	})

	// Assert
	s.NoError(err)
	s.NoError(s.registry.Read(id, func(c *counter) {
		s.Equal(7, c.value)
	}))
}

func (s *RegistryTestSuite) TestUpdateReturnsCallbackError() {
	id := s.create()
	boom := errors.New("boom")

	err := s.registry.Update(id, func(c *counter) error { return boom })

	s.ErrorIs(err, boom)
}

func (s *RegistryTestSuite) TestNotFound() {
	err := s.registry.Update("nonexistent_game", func(c *counter) error { return nil })
	s.True(types.IsGameError(err, types.ErrGameNotFound), "Should return GameNotFound error")

	err = s.registry.Read("nonexistent_game", func(c *counter) {})
	s.True(types.IsGameError(err, types.ErrGameNotFound), "Should return GameNotFound error")
}

func (s *RegistryTestSuite) TestDelete() {
	id := s.create()

	s.True(s.registry.Delete(id))
	s.False(s.registry.Delete(id), "second delete should report missing")

	err := s.registry.Update(id, func(c *counter) error { return nil })
	s.True(types.IsGameError(err, types.ErrGameNotFound))
}

func (s *RegistryTestSuite) TestDeleteInsideUpdate() {
	id := s.create()

	err := s.registry.Update(id, func(c *counter) error {
		s.registry.Delete(id)
		return nil
	})

	s.NoError(err)
	s.Zero(s.registry.Len())
}

func (s *RegistryTestSuite) TestSweepUsesIdleTime() {
	// Setup
	ctx := context.Background()
	stale := s.create()
	s.clock.Advance(5 * time.Minute).MustWait(ctx)
	fresh := s.create()
	s.clock.Advance(time.Minute).MustWait(ctx)

	// Execute
	removed := s.registry.Sweep(func(c *counter, idle time.Duration) bool {
		return idle > 3*time.Minute
	})

	// Assert
	s.Equal(1, removed)
	s.Error(s.registry.Read(stale, func(c *counter) {}))
	s.NoError(s.registry.Read(fresh, func(c *counter) {}))
}

func (s *RegistryTestSuite) TestUpdateRefreshesIdleTime() {
	ctx := context.Background()
	id := s.create()
	s.clock.Advance(10 * time.Minute).MustWait(ctx)

	s.NoError(s.registry.Update(id, func(c *counter) error { return nil }))

	removed := s.registry.Sweep(func(c *counter, idle time.Duration) bool {
		return idle > time.Minute
	})
	s.Zero(removed)
}

func (s *RegistryTestSuite) TestSweepByState() {
	done := s.create()
	s.create()
	s.NoError(s.registry.Update(done, func(c *counter) error {
		c.done = true
		return nil
	}))

	removed := s.registry.Sweep(func(c *counter, idle time.Duration) bool { return c.done })

	s.Equal(1, removed)
	s.Equal(1, s.registry.Len())
}

func (s *RegistryTestSuite) TestConcurrentUpdatesAreSerialized() {
	// Setup
	id := s.create()
	numGoroutines := 16
	numOperations := 200

	// Execute concurrent updates against the same session
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				_ = s.registry.Update(id, func(c *counter) error {
					c.value++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	// Assert no increment was lost
	s.NoError(s.registry.Read(id, func(c *counter) {
		s.Equal(numGoroutines*numOperations, c.value)
	}))
}

func (s *RegistryTestSuite) TestConcurrentCreateAndDelete() {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := s.create()
				if j%2 == 0 {
					s.registry.Delete(id)
				}
			}
		}()
	}
	wg.Wait()

	s.Equal(500, s.registry.Len())
}
