package blackjack

import (
	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/shopspring/decimal"
)

// CardView is a card as shown to the player. A face-down card carries no
// suit or rank.
type CardView struct {
	Suit     entities.Suit `json:"suit,omitempty"`
	Rank     entities.Rank `json:"rank,omitempty"`
	FaceDown bool          `json:"face_down,omitempty"`
}

// PublicView is everything the player may see about a session
type PublicView struct {
	GameID      string          `json:"game_id"`
	PlayerID    string          `json:"player_id"`
	Bet         decimal.Decimal `json:"bet"`
	PlayerHand  []CardView      `json:"player_hand"`
	PlayerScore int             `json:"player_score"`
	DealerHand  []CardView      `json:"dealer_hand"`
	DealerScore *int            `json:"dealer_score"` // nil while the hand is active
	Status      Status          `json:"status"`
	Message     string          `json:"message"`
	Winnings    decimal.Decimal `json:"winnings"`
	Settled     bool            `json:"settled"`
}

// Project builds the player-facing view of a session. While the hand is
// active the dealer's hole card and score are withheld.
func Project(s *Session) PublicView {
	view := PublicView{
		GameID:      s.ID,
		PlayerID:    s.PlayerID,
		Bet:         s.Bet,
		PlayerHand:  faceUp(s.PlayerHand),
		PlayerScore: s.PlayerHand.Score(),
		DealerHand:  faceUp(s.DealerHand),
		Status:      s.Status,
		Message:     s.Message,
		Winnings:    s.Winnings,
		Settled:     s.Settled,
	}

	if s.Status == StatusActive {
		for i := 1; i < len(view.DealerHand); i++ {
			view.DealerHand[i] = CardView{FaceDown: true}
		}
		return view
	}

	dealerScore := s.DealerHand.Score()
	view.DealerScore = &dealerScore
	return view
}

func faceUp(hand Hand) []CardView {
	views := make([]CardView, len(hand))
	for i, card := range hand {
		views[i] = CardView{Suit: card.Suit, Rank: card.Rank}
	}
	return views
}
