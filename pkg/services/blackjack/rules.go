package blackjack

import (
	"strconv"

	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/shopspring/decimal"
)

const (
	BlackjackScore = 21 // Best possible hand
	DealerStandsOn = 17 // Dealer draws until reaching this score, soft or hard
)

var (
	blackjackMultiplier = decimal.RequireFromString("2.5") // 3:2 plus the returned bet
	winMultiplier       = decimal.NewFromInt(2)
)

// CardValue returns the value a card counts for before any ace reduction
func CardValue(card entities.Card) int {
	switch card.Rank {
	case entities.Ace:
		return 11
	case entities.Jack, entities.Queen, entities.King:
		return 10
	default:
		val, _ := strconv.Atoi(string(card.Rank))
		return val
	}
}

// IsAce reports whether the card is an ace
func IsAce(card entities.Card) bool {
	return card.Rank == entities.Ace
}

// score returns the best total and whether an ace is still counted as 11
func score(cards []entities.Card) (int, bool) {
	total := 0
	elevenAces := 0

	for _, card := range cards {
		total += CardValue(card)
		if IsAce(card) {
			elevenAces++
		}
	}

	// Count aces as 1 for as long as the hand would otherwise bust
	for total > BlackjackScore && elevenAces > 0 {
		total -= 10
		elevenAces--
	}

	return total, elevenAces > 0
}

// Score returns the best total for a hand
func Score(cards []entities.Card) int {
	total, _ := score(cards)
	return total
}

// IsSoft reports whether the hand's total counts an ace as 11
func IsSoft(cards []entities.Card) bool {
	_, soft := score(cards)
	return soft
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []entities.Card) bool {
	return Score(cards) > BlackjackScore
}

// IsNatural checks if a hand is a two-card 21
func IsNatural(cards []entities.Card) bool {
	return len(cards) == 2 && Score(cards) == BlackjackScore
}

// DealerShouldDraw reports whether the dealer must take another card
func DealerShouldDraw(cards []entities.Card) bool {
	return Score(cards) < DealerStandsOn
}

// Payout returns the amount returned to the player for a resolved hand,
// including the original stake
func Payout(status Status, bet decimal.Decimal) decimal.Decimal {
	switch status {
	case StatusPlayerWonBlackjack:
		return bet.Mul(blackjackMultiplier)
	case StatusPlayerWon:
		return bet.Mul(winMultiplier)
	case StatusPush:
		return bet
	default:
		return decimal.Zero
	}
}
