package scheduler

import (
	"context"
	"time"
)

// SessionReaper drops idle game sessions
type SessionReaper interface {
	Reap(finishedTTL, abandonedTTL time.Duration) int
}

// IndexPruner deletes time-partitioned indices past their retention
type IndexPruner interface {
	PruneIndices(ctx context.Context, retentionMonths int, now time.Time) (int, error)
}

// AddSessionReaping schedules reaper to drop finished sessions idle past
// finishedTTL and abandoned ones idle past abandonedTTL
func (s *Scheduler) AddSessionReaping(name string, reaper SessionReaper, finishedTTL, abandonedTTL, interval time.Duration) {
	s.AddTask(name, interval, func(ctx context.Context) error {
		if removed := reaper.Reap(finishedTTL, abandonedTTL); removed > 0 {
			s.logger.Info("Reaped %d idle sessions (%s)", removed, name)
		}
		return nil
	})
}

// AddIndexPruning schedules pruner to keep retentionMonths of indices
func (s *Scheduler) AddIndexPruning(pruner IndexPruner, retentionMonths int, interval time.Duration) {
	s.AddTask("index_pruning", interval, func(ctx context.Context) error {
		deleted, err := pruner.PruneIndices(ctx, retentionMonths, s.clock.Now())
		if err != nil {
			return err
		}
		if deleted > 0 {
			s.logger.Info("Pruned %d indices older than %d months", deleted, retentionMonths)
		}
		return nil
	})
}
