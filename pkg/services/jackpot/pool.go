package jackpot

import (
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/fadedpez/tucocasino/pkg/rng"
	"github.com/shopspring/decimal"
)

// Config describes a progressive pool
type Config struct {
	ID               string
	SeedAmount       decimal.Decimal // starting value of a new pool
	ResetAmount      decimal.Decimal // value the pool drops to after a win
	ContributionRate decimal.Decimal // fraction of every bet added to the pool
	MustHitBy        decimal.Decimal // the pool always pays out before exceeding this
}

// Validate checks 0 < seed <= reset <= mustHitBy and 0 < rate < 1, with at
// least one whole amount between reset and mustHitBy for thresholds to land on
func (c Config) Validate() error {
	switch {
	case c.ID == "":
		return types.NewGameError(types.ErrInvalidArgument, "jackpot ID is required")
	case !c.SeedAmount.IsPositive():
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("jackpot %s: seed amount must be positive", c.ID))
	case c.ResetAmount.LessThan(c.SeedAmount):
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("jackpot %s: reset amount %s is below seed %s", c.ID, c.ResetAmount, c.SeedAmount))
	case c.MustHitBy.LessThan(c.ResetAmount):
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("jackpot %s: must-hit-by %s is below reset %s", c.ID, c.MustHitBy, c.ResetAmount))
	case c.MustHitBy.Floor().LessThan(c.ResetAmount.Ceil()):
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("jackpot %s: no whole amount between reset %s and must-hit-by %s", c.ID, c.ResetAmount, c.MustHitBy))
	case !c.ContributionRate.IsPositive() || c.ContributionRate.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("jackpot %s: contribution rate %s must be in (0, 1)", c.ID, c.ContributionRate))
	}
	return nil
}

// Win is the most recent payout of a pool
type Win struct {
	Amount decimal.Decimal `json:"amount"`
	At     time.Time       `json:"at"`
}

// Status is the public snapshot of a pool. The winning threshold is never
// part of it.
type Status struct {
	ID            string          `json:"id"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	MustHitBy     decimal.Decimal `json:"must_hit_by"`
	LastWin       *Win            `json:"last_win,omitempty"`
}

// ContributionResult reports what one bet did to the pool. When Won is
// set, Amount is the prize and CurrentAmount the pool after the reset.
type ContributionResult struct {
	Won           bool            `json:"won"`
	Amount        decimal.Decimal `json:"amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Contribution  decimal.Decimal `json:"contribution"`
}

// Pool is a progressive jackpot shared by every spin of a machine
type Pool struct {
	mu        sync.Mutex
	cfg       Config
	current   decimal.Decimal
	threshold decimal.Decimal
	lastWin   *Win

	src    rng.Source
	clock  quartz.Clock
	logger *logging.Logger
}

// Option configures a Pool
type Option func(*Pool)

// WithSource sets the randomness used to roll winning thresholds
func WithSource(src rng.Source) Option {
	return func(p *Pool) { p.src = src }
}

// WithClock sets the clock used to timestamp wins
func WithClock(clock quartz.Clock) Option {
	return func(p *Pool) { p.clock = clock }
}

// WithLogger sets the pool logger
func WithLogger(logger *logging.Logger) Option {
	return func(p *Pool) { p.logger = logger }
}

// NewPool creates a pool at its seed amount with a freshly rolled threshold
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:     cfg,
		current: cfg.SeedAmount,
		src:     rng.Crypto(),
		clock:   quartz.NewReal(),
		logger:  logging.Default,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.rollThreshold()
	return p, nil
}

// ID returns the pool identifier
func (p *Pool) ID() string {
	return p.cfg.ID
}

// Contribute adds the pool's share of bet. If that lifts the pool to its
// threshold the whole pool is won and reset in the same step.
func (p *Pool) Contribute(bet decimal.Decimal) ContributionResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	contribution := bet.Mul(p.cfg.ContributionRate)
	p.current = p.current.Add(contribution)

	if p.current.LessThan(p.threshold) {
		return ContributionResult{
			CurrentAmount: p.current,
			Contribution:  contribution,
		}
	}

	prize := p.current
	p.lastWin = &Win{Amount: prize, At: p.clock.Now()}
	p.current = p.cfg.ResetAmount
	p.rollThreshold()

	p.logger.Info("Jackpot %s won: %s, reset to %s", p.cfg.ID, prize, p.current)
	return ContributionResult{
		Won:           true,
		Amount:        prize,
		CurrentAmount: p.current,
		Contribution:  contribution,
	}
}

// Status returns a snapshot of the pool
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := Status{
		ID:            p.cfg.ID,
		CurrentAmount: p.current,
		MustHitBy:     p.cfg.MustHitBy,
	}
	if p.lastWin != nil {
		win := *p.lastWin
		status.LastWin = &win
	}
	return status
}

// rollThreshold picks a whole-unit threshold uniformly between the current
// pool and mustHitBy. Callers hold p.mu.
func (p *Pool) rollThreshold() {
	lo := decimal.Max(p.current, p.cfg.SeedAmount).Ceil().IntPart()
	hi := p.cfg.MustHitBy.Floor().IntPart()
	p.threshold = decimal.NewFromInt(rng.IntRange(p.src, lo, hi))
}
