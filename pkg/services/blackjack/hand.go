package blackjack

import (
	"github.com/fadedpez/tucocasino/pkg/entities"
)

// Hand is the ordered cards held by the player or the dealer

type Hand []entities.Card

// Add appends a card to the hand
func (h *Hand) Add(card entities.Card) {
	*h = append(*h, card)
}

// Score returns the best total for the hand
func (h Hand) Score() int {
	return Score(h)
}

// IsBust checks if the hand exceeds 21
func (h Hand) IsBust() bool {
	return IsBust(h)
}

// IsNatural checks if the hand is a two-card 21
func (h Hand) IsNatural() bool {
	return IsNatural(h)
}

// Cards returns a copy of the cards in the hand
func (h Hand) Cards() []entities.Card {
	cards := make([]entities.Card, len(h))
	copy(cards, h)
	return cards
}
