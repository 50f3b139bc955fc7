package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/internal/logging"
)

// Task represents a scheduled task
type Task struct {
	Name     string
	Interval time.Duration
	Fn       func(context.Context) error
}

// Scheduler runs tasks on fixed intervals
type Scheduler struct {
	tasks   []*Task
	running bool
	mutex   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	clock   quartz.Clock
	logger  *logging.Logger
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock sets the clock that drives the task tickers
func WithClock(clock quartz.Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithLogger sets the scheduler logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates a new scheduler
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		tasks:  make([]*Task, 0),
		clock:  quartz.NewReal(),
		logger: logging.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask adds a task to the scheduler. Tasks added after Start wait for
// the next Start.
func (s *Scheduler) AddTask(name string, interval time.Duration, fn func(context.Context) error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
}

// Start runs every task once and then on its interval until Stop or ctx is
// cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, task := range s.tasks {
		ticker := s.clock.NewTicker(task.Interval, "scheduler", task.Name)
		s.wg.Add(1)
		go s.runTask(ctx, task, ticker)
	}

	s.logger.Info("Scheduler started with %d tasks", len(s.tasks))
}

// Stop cancels all tasks and waits for any run in progress to finish
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mutex.Unlock()

	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// runTask runs a task immediately and then on every tick
func (s *Scheduler) runTask(ctx context.Context, task *Task, ticker *quartz.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	s.logger.Debug("Running task %s immediately on startup", task.Name)
	s.run(ctx, task)

	for {
		select {
		case <-ticker.C:
			s.logger.Debug("Running scheduled task: %s", task.Name)
			s.run(ctx, task)
		case <-ctx.Done():
			s.logger.Debug("Task %s stopped", task.Name)
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context, task *Task) {
	start := s.clock.Now()
	if err := task.Fn(ctx); err != nil {
		s.logger.Error("Error running task %s: %v", task.Name, err)
		return
	}
	s.logger.Debug("Task %s finished in %s", task.Name, s.clock.Since(start))
}
