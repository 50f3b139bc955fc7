package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlayerStatistics represents aggregated statistics for a player in a specific game type
type PlayerStatistics struct {
	PlayerID     string
	GameType     GameType
	RoundsPlayed int
	Wins         int
	Losses       int
	Pushes       int
	Jackpots     int
	TotalBet     decimal.Decimal
	TotalPayout  decimal.Decimal
	LastUpdated  time.Time
}

// NetProfit calculates the player's net profit
func (s *PlayerStatistics) NetProfit() decimal.Decimal {
	return s.TotalPayout.Sub(s.TotalBet)
}

// WinRate calculates the player's win rate as a percentage
func (s *PlayerStatistics) WinRate() float64 {
	if s.RoundsPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.RoundsPlayed) * 100.0
}

// RTP returns total payout over total wagered as a percentage.
func (s *PlayerStatistics) RTP() float64 {
	if s.TotalBet.IsZero() {
		return 0.0
	}
	rtp, _ := s.TotalPayout.Div(s.TotalBet).Mul(decimal.NewFromInt(100)).Float64()
	return rtp
}
