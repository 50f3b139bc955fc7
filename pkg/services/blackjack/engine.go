package blackjack

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/internal/games"
	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/fadedpez/tucocasino/pkg/repositories/history"
	"github.com/fadedpez/tucocasino/pkg/rng"
	"github.com/fadedpez/tucocasino/pkg/services/wallet"
	"github.com/shopspring/decimal"
)

// DeckFactory produces the deck for a new session
type DeckFactory func(src rng.Source) *entities.Deck

// Engine runs single-player blackjack sessions against the house
type Engine struct {
	ledger   wallet.Ledger
	sessions *games.Registry[*Session]
	src      rng.Source
	newDeck  DeckFactory
	history  history.Repository
	clock    quartz.Clock
	logger   *logging.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithSource sets the randomness used to shuffle decks
func WithSource(src rng.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithDeckFactory replaces the shuffled deck each session is dealt from
func WithDeckFactory(factory DeckFactory) Option {
	return func(e *Engine) { e.newDeck = factory }
}

// WithHistory records every settled hand in repo
func WithHistory(repo history.Repository) Option {
	return func(e *Engine) { e.history = repo }
}

// WithClock sets the clock used for session timestamps and idle tracking
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the engine logger
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a blackjack engine that moves stakes through ledger
func NewEngine(ledger wallet.Ledger, opts ...Option) *Engine {
	e := &Engine{
		ledger:  ledger,
		src:     rng.Crypto(),
		newDeck: entities.NewShuffledDeck,
		clock:   quartz.NewReal(),
		logger:  logging.Default,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sessions = games.NewRegistry[*Session](e.clock)
	return e
}

// StartGame debits the bet, deals a new hand and registers the session.
// A hand that opens with a player blackjack resolves immediately. If the
// winnings of such a hand cannot be credited, the view is returned with the
// error so the game can be settled later.
func (e *Engine) StartGame(ctx context.Context, playerID string, bet decimal.Decimal) (*PublicView, error) {
	if playerID == "" {
		return nil, types.NewGameError(types.ErrInvalidArgument, "player ID is required")
	}
	if !bet.IsPositive() {
		return nil, types.NewGameError(types.ErrInvalidBet, fmt.Sprintf("bet must be positive, got %s", bet))
	}

	id := e.sessions.Create(func(id string) *Session {
		return newSession(id, playerID, bet, e.clock.Now())
	})

	var view PublicView
	var unsettled bool
	err := e.sessions.Update(id, func(s *Session) error {
		if err := e.ledger.Debit(ctx, playerID, bet, id); err != nil {
			e.sessions.Delete(id)
			return wallet.LedgerError("debit of bet failed", err)
		}

		s.Deck = e.newDeck(e.src)
		for _, hand := range []*Hand{&s.PlayerHand, &s.PlayerHand, &s.DealerHand, &s.DealerHand} {
			if err := e.deal(ctx, s, hand); err != nil {
				return err
			}
		}
		s.resolveNaturals()

		if err := e.settle(ctx, s); err != nil {
			view = Project(s)
			unsettled = true
			return err
		}
		view = Project(s)
		return nil
	})
	if unsettled {
		return &view, err
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Started blackjack game %s for player %s with bet %s", id, playerID, bet)
	return &view, nil
}

// Hit draws one card for the player. Going over 21 loses the hand.
func (e *Engine) Hit(ctx context.Context, gameID string) (*PublicView, error) {
	return e.act(ctx, gameID, func(s *Session) error {
		if err := e.deal(ctx, s, &s.PlayerHand); err != nil {
			return err
		}
		if s.PlayerHand.IsBust() {
			s.resolve(StatusDealerWon, fmt.Sprintf("Bust with %d! Dealer wins", s.PlayerHand.Score()))
		}
		return nil
	})
}

// Stand ends the player's turn, plays out the dealer and resolves the hand
func (e *Engine) Stand(ctx context.Context, gameID string) (*PublicView, error) {
	return e.act(ctx, gameID, func(s *Session) error {
		for DealerShouldDraw(s.DealerHand) {
			if err := e.deal(ctx, s, &s.DealerHand); err != nil {
				return err
			}
		}
		s.resolveShowdown()
		return nil
	})
}

// act runs a player action on an active session, then settles it if the
// action resolved the hand. A failed credit returns the unsettled view
// alongside the error.
func (e *Engine) act(ctx context.Context, gameID string, action func(s *Session) error) (*PublicView, error) {
	var view PublicView
	var unsettled bool
	err := e.sessions.Update(gameID, func(s *Session) error {
		if s.Status.IsTerminal() {
			return types.NewGameError(types.ErrGameNotActive, fmt.Sprintf("game %s is already over (%s)", gameID, s.Status))
		}

		if err := action(s); err != nil {
			return err
		}
		s.UpdatedAt = e.clock.Now()

		if err := e.settle(ctx, s); err != nil {
			view = Project(s)
			unsettled = true
			return err
		}
		view = Project(s)
		return nil
	})
	if unsettled {
		return &view, err
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// View returns the current public view of a session
func (e *Engine) View(gameID string) (*PublicView, error) {
	var view PublicView
	err := e.sessions.Read(gameID, func(s *Session) {
		view = Project(s)
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Settle retries crediting the winnings of a resolved hand whose earlier
// credit failed. Settling an already settled hand is a no-op.
func (e *Engine) Settle(ctx context.Context, gameID string) (*PublicView, error) {
	var view PublicView
	err := e.sessions.Update(gameID, func(s *Session) error {
		if !s.Status.IsTerminal() {
			return types.NewGameError(types.ErrGameNotActive, fmt.Sprintf("game %s has not been resolved", gameID))
		}
		if err := e.settle(ctx, s); err != nil {
			return err
		}
		view = Project(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Reap removes settled sessions idle for longer than finishedTTL and any
// other session idle for longer than abandonedTTL. An abandoned active hand
// forfeits its bet. It returns the number of sessions removed.
func (e *Engine) Reap(finishedTTL, abandonedTTL time.Duration) int {
	removed := e.sessions.Sweep(func(s *Session, idle time.Duration) bool {
		switch {
		case s.Settled:
			return idle > finishedTTL
		case idle <= abandonedTTL:
			return false
		case s.Status.IsTerminal():
			e.logger.Error("Dropping game %s for player %s with unpaid winnings %s", s.ID, s.PlayerID, s.Winnings)
		default:
			e.logger.Info("Dropping abandoned game %s for player %s", s.ID, s.PlayerID)
		}
		return true
	})

	if removed > 0 {
		e.logger.Debug("Reaped %d blackjack sessions", removed)
	}
	return removed
}

// ActiveSessions returns the number of sessions held by the engine
func (e *Engine) ActiveSessions() int {
	return e.sessions.Len()
}

// deal draws the top card into hand. An empty deck means the session can
// no longer be trusted: it is removed and the stake refunded.
func (e *Engine) deal(ctx context.Context, s *Session, hand *Hand) error {
	card, err := s.Deck.Draw()
	if err == nil {
		hand.Add(card)
		return nil
	}

	e.logger.Error("Deck exhausted in game %s for player %s, terminating session", s.ID, s.PlayerID)
	e.sessions.Delete(s.ID)
	if refundErr := e.ledger.Credit(ctx, s.PlayerID, s.Bet, s.ID); refundErr != nil {
		e.logger.Error("Refund of %s to player %s for game %s failed: %v", s.Bet, s.PlayerID, s.ID, refundErr)
	}
	return types.WrapError(types.ErrDeckExhausted, fmt.Sprintf("game %s ran out of cards", s.ID), err)
}

// settle credits the winnings of a resolved hand and records it, once
func (e *Engine) settle(ctx context.Context, s *Session) error {
	if !s.Status.IsTerminal() || s.Settled {
		return nil
	}

	if s.Winnings.IsPositive() {
		if err := e.ledger.Credit(ctx, s.PlayerID, s.Winnings, s.ID); err != nil {
			e.logger.Error("Credit of %s to player %s for game %s failed: %v", s.Winnings, s.PlayerID, s.ID, err)
			return wallet.LedgerError(fmt.Sprintf("credit of winnings for game %s failed", s.ID), err)
		}
	}

	s.Settled = true
	s.UpdatedAt = e.clock.Now()
	e.record(ctx, s)
	return nil
}

func (e *Engine) record(ctx context.Context, s *Session) {
	if e.history == nil {
		return
	}

	round := &entities.RoundRecord{
		GameType:    entities.GameTypeBlackjack,
		GameID:      s.ID,
		PlayerID:    s.PlayerID,
		Bet:         s.Bet,
		Payout:      s.Winnings,
		Outcome:     string(s.Status),
		JackpotWin:  decimal.Zero,
		CompletedAt: s.UpdatedAt,
	}
	if err := e.history.SaveRound(ctx, round); err != nil {
		e.logger.Warn("Failed to record blackjack round %s: %v", s.ID, err)
	}
}
