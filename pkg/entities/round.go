package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameType identifies which engine produced a round.
type GameType string

const (
	GameTypeBlackjack GameType = "blackjack"
	GameTypeSlot      GameType = "slot"
)

// RoundRecord is the settled outcome of one blackjack hand or one slot spin.
type RoundRecord struct {
	ID          string          `json:"id"`
	GameType    GameType        `json:"game_type"`
	GameID      string          `json:"game_id"` // blackjack session ID or slot machine ID
	PlayerID    string          `json:"player_id"`
	Bet         decimal.Decimal `json:"bet"`
	Payout      decimal.Decimal `json:"payout"`
	Outcome     string          `json:"outcome"`
	JackpotWin  decimal.Decimal `json:"jackpot_win"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Net returns the player's profit for the round.
func (r *RoundRecord) Net() decimal.Decimal {
	return r.Payout.Sub(r.Bet)
}

// IsWin returns true if the round paid more than was wagered
func (r *RoundRecord) IsWin() bool {
	return r.Payout.GreaterThan(r.Bet)
}
