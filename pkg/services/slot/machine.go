package slot

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/fadedpez/tucocasino/pkg/repositories/history"
	"github.com/fadedpez/tucocasino/pkg/rng"
	"github.com/fadedpez/tucocasino/pkg/services/jackpot"
	"github.com/fadedpez/tucocasino/pkg/services/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultReels       = 5
	DefaultStripLength = 50
	DefaultRows        = 3
)

// Round outcomes recorded in history
const (
	OutcomeLoss         = "loss"
	OutcomeWin          = "win"
	OutcomeJackpot      = "jackpot"
	OutcomeCreditFailed = "credit_failed"
)

// Config describes the reel layout of a machine
type Config struct {
	MachineID   string
	Reels       int
	StripLength int
	Rows        int
}

// Grid holds the visible symbols, indexed by reel then row
type Grid [][]Symbol

// SpinResult is everything one spin produced
type SpinResult struct {
	SpinID     string                     `json:"spin_id"`
	MachineID  string                     `json:"machine_id"`
	PlayerID   string                     `json:"player_id"`
	Bet        decimal.Decimal            `json:"bet"`
	Stops      []int                      `json:"stops"`
	Grid       Grid                       `json:"grid"`
	Line       Payline                    `json:"line"`
	LineResult LineResult                 `json:"line_result"`
	Jackpot    jackpot.ContributionResult `json:"jackpot"`
	TotalWin   decimal.Decimal            `json:"total_win"`
	At         time.Time                  `json:"at"`
}

// Outcome classifies the spin for round history
func (r *SpinResult) Outcome() string {
	switch {
	case r.Jackpot.Won:
		return OutcomeJackpot
	case r.LineResult.Payout.IsPositive():
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}

// Machine is a reel slot tied to one jackpot pool. Strips are fixed for
// the lifetime of the machine; only the stops are drawn per spin.
type Machine struct {
	cfg      Config
	strips   []Strip
	paytable Paytable
	pool     *jackpot.Pool
	ledger   wallet.Ledger
	src      rng.Source
	history  history.Repository
	clock    quartz.Clock
	logger   *logging.Logger
}

// Option configures a Machine
type Option func(*Machine)

// WithSource sets the randomness used for strips and stops
func WithSource(src rng.Source) Option {
	return func(m *Machine) { m.src = src }
}

// WithPaytable replaces the default paytable
func WithPaytable(paytable Paytable) Option {
	return func(m *Machine) { m.paytable = paytable }
}

// WithStrips uses the given strips instead of generating them
func WithStrips(strips []Strip) Option {
	return func(m *Machine) { m.strips = strips }
}

// WithHistory records every spin in repo
func WithHistory(repo history.Repository) Option {
	return func(m *Machine) { m.history = repo }
}

// WithClock sets the clock used to timestamp spins
func WithClock(clock quartz.Clock) Option {
	return func(m *Machine) { m.clock = clock }
}

// WithLogger sets the machine logger
func WithLogger(logger *logging.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// NewMachine builds a machine, generating its strips unless they were given
func NewMachine(cfg Config, pool *jackpot.Pool, ledger wallet.Ledger, opts ...Option) (*Machine, error) {
	if cfg.Reels == 0 {
		cfg.Reels = DefaultReels
	}
	if cfg.StripLength == 0 {
		cfg.StripLength = DefaultStripLength
	}
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Reels < 0 || cfg.StripLength < 0 || cfg.Rows < 0 {
		return nil, types.NewGameError(types.ErrInvalidArgument,
			fmt.Sprintf("machine %s: reels %d, strip length %d and rows %d must be positive", cfg.MachineID, cfg.Reels, cfg.StripLength, cfg.Rows))
	}

	m := &Machine{
		cfg:      cfg,
		paytable: DefaultPaytable(),
		pool:     pool,
		ledger:   ledger,
		src:      rng.Crypto(),
		clock:    quartz.NewReal(),
		logger:   logging.Default,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.strips == nil {
		m.strips = GenerateStrips(m.src, cfg.Reels, cfg.StripLength)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine) validate() error {
	switch {
	case m.cfg.MachineID == "":
		return types.NewGameError(types.ErrInvalidArgument, "machine ID is required")
	case m.pool == nil:
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("machine %s has no jackpot pool", m.cfg.MachineID))
	case m.ledger == nil:
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("machine %s has no ledger", m.cfg.MachineID))
	case len(m.strips) < MinLineCount:
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("machine %s needs at least %d reels, got %d", m.cfg.MachineID, MinLineCount, len(m.strips)))
	case m.cfg.Rows < 1:
		return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("machine %s needs at least one row", m.cfg.MachineID))
	}
	for i, strip := range m.strips {
		if len(strip) < m.cfg.Rows {
			return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("machine %s: reel %d is shorter than the window", m.cfg.MachineID, i))
		}
	}
	return nil
}

// ID returns the machine identifier
func (m *Machine) ID() string {
	return m.cfg.MachineID
}

// Spin debits bet, feeds the jackpot, spins the reels and credits the
// line payout plus any jackpot prize
func (m *Machine) Spin(ctx context.Context, playerID string, bet decimal.Decimal) (*SpinResult, error) {
	if playerID == "" {
		return nil, types.NewGameError(types.ErrInvalidArgument, "player ID is required")
	}
	if !bet.IsPositive() {
		return nil, types.NewGameError(types.ErrInvalidBet, fmt.Sprintf("bet must be positive, got %s", bet))
	}

	spinID := uuid.New().String()
	if err := m.ledger.Debit(ctx, playerID, bet, spinID); err != nil {
		return nil, wallet.LedgerError("debit of bet failed", err)
	}

	result := &SpinResult{
		SpinID:    spinID,
		MachineID: m.cfg.MachineID,
		PlayerID:  playerID,
		Bet:       bet,
		Jackpot:   m.pool.Contribute(bet),
		Line:      CenterLine(len(m.strips), m.cfg.Rows),
	}

	result.Stops, result.Grid = m.stop()
	result.LineResult = EvaluatePayline(result.Grid, result.Line, bet, m.paytable)
	result.TotalWin = result.LineResult.Payout
	if result.Jackpot.Won {
		result.TotalWin = result.TotalWin.Add(result.Jackpot.Amount)
	}
	result.At = m.clock.Now()

	if result.TotalWin.IsPositive() {
		if err := m.ledger.Credit(ctx, playerID, result.TotalWin, spinID); err != nil {
			m.logger.Error("Credit of %s to player %s for spin %s failed: %v", result.TotalWin, playerID, spinID, err)
			m.record(ctx, result, OutcomeCreditFailed)
			return nil, wallet.LedgerError("credit of winnings failed", err)
		}
	}

	if result.Jackpot.Won {
		m.logger.Info("Player %s hit jackpot %s for %s on spin %s", playerID, m.pool.ID(), result.Jackpot.Amount, spinID)
	}
	m.record(ctx, result, result.Outcome())
	return result, nil
}

// stop draws a stop per reel and reads the visible window below it
func (m *Machine) stop() ([]int, Grid) {
	stops := make([]int, len(m.strips))
	grid := make(Grid, len(m.strips))
	for i, strip := range m.strips {
		stops[i] = m.src.Intn(len(strip))
		grid[i] = make([]Symbol, m.cfg.Rows)
		for row := range grid[i] {
			grid[i][row] = strip.At(stops[i] + row)
		}
	}
	return stops, grid
}

func (m *Machine) record(ctx context.Context, result *SpinResult, outcome string) {
	if m.history == nil {
		return
	}

	jackpotWin := decimal.Zero
	if result.Jackpot.Won {
		jackpotWin = result.Jackpot.Amount
	}
	round := &entities.RoundRecord{
		ID:          result.SpinID,
		GameType:    entities.GameTypeSlot,
		GameID:      result.MachineID,
		PlayerID:    result.PlayerID,
		Bet:         result.Bet,
		Payout:      result.TotalWin,
		Outcome:     outcome,
		JackpotWin:  jackpotWin,
		CompletedAt: result.At,
	}
	if err := m.history.SaveRound(ctx, round); err != nil {
		m.logger.Warn("Failed to record spin %s: %v", result.SpinID, err)
	}
}

// JackpotStatus returns the public snapshot of the machine's pool
func (m *Machine) JackpotStatus() jackpot.Status {
	return m.pool.Status()
}

// Strips returns a copy of the reel strips
func (m *Machine) Strips() []Strip {
	strips := make([]Strip, len(m.strips))
	for i, strip := range m.strips {
		strips[i] = append(Strip(nil), strip...)
	}
	return strips
}

// Paytable returns a copy of the machine's paytable
func (m *Machine) Paytable() Paytable {
	paytable := make(Paytable, len(m.paytable))
	for symbol, counts := range m.paytable {
		paytable[symbol] = make(map[int]int64, len(counts))
		for count, multiplier := range counts {
			paytable[symbol][count] = multiplier
		}
	}
	return paytable
}
