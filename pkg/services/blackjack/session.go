package blackjack

import (
	"time"

	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/shopspring/decimal"
)

// Status represents the state of a blackjack session
type Status string

const (
	StatusActive             Status = "active"
	StatusPlayerWonBlackjack Status = "player_won_blackjack"
	StatusPush               Status = "push"
	StatusDealerWon          Status = "dealer_won"
	StatusPlayerWon          Status = "player_won"
)

// IsTerminal returns true once the hand has been resolved
func (s Status) IsTerminal() bool {
	return s != StatusActive
}

// Session is one player's hand against the dealer. It is owned by the
// engine's registry and only mutated while holding the session lock.
type Session struct {
	ID         string
	PlayerID   string
	Bet        decimal.Decimal
	Deck       *entities.Deck
	PlayerHand Hand
	DealerHand Hand
	Status     Status
	Message    string
	Winnings   decimal.Decimal
	Settled    bool // winnings have been credited and the round recorded
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func newSession(id, playerID string, bet decimal.Decimal, now time.Time) *Session {
	return &Session{
		ID:         id,
		PlayerID:   playerID,
		Bet:        bet,
		PlayerHand: Hand{},
		DealerHand: Hand{},
		Status:     StatusActive,
		Winnings:   decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// resolve moves the session to a terminal status and fixes its winnings
func (s *Session) resolve(status Status, message string) {
	s.Status = status
	s.Message = message
	s.Winnings = Payout(status, s.Bet)
}

// resolveNaturals settles a hand that opens with a player blackjack
func (s *Session) resolveNaturals() {
	if s.PlayerHand.Score() != BlackjackScore {
		return
	}
	if s.DealerHand.Score() == BlackjackScore {
		s.resolve(StatusPush, "Push! Both you and the dealer have blackjack")
		return
	}
	s.resolve(StatusPlayerWonBlackjack, "Blackjack! You win 3:2")
}

// resolveShowdown compares final hands once the dealer has finished drawing
func (s *Session) resolveShowdown() {
	player := s.PlayerHand.Score()
	dealer := s.DealerHand.Score()

	switch {
	case dealer > BlackjackScore:
		s.resolve(StatusPlayerWon, "Dealer busts! You win")
	case dealer > player:
		s.resolve(StatusDealerWon, "Dealer wins")
	case dealer < player:
		s.resolve(StatusPlayerWon, "You win!")
	default:
		s.resolve(StatusPush, "Push")
	}
}
