package entities

import (
	"errors"

	"github.com/fadedpez/tucocasino/pkg/rng"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is an ordered stack of cards. The top of the deck is the end of the
// slice, so Draw pops from the back.
type Deck struct {
	cards []Card
}

// NewDeck creates a new deck of 52 cards, one of each rank and suit, in canonical order
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}

	return &Deck{cards: cards}
}

// NewShuffledDeck creates a full deck and shuffles it with src.
func NewShuffledDeck(src rng.Source) *Deck {
	d := NewDeck()
	d.Shuffle(src)
	return d
}

// NewStackedDeck returns a full deck arranged so that top is drawn first, in
// order. Cards in top are removed from the rest of the deck so the deck still
// holds each card exactly once.
func NewStackedDeck(top ...Card) *Deck {
	skip := make(map[Card]bool, len(top))
	for _, c := range top {
		skip[c] = true
	}

	cards := make([]Card, 0, DeckSize)
	for _, c := range NewDeck().cards {
		if !skip[c] {
			cards = append(cards, c)
		}
	}
	for i := len(top) - 1; i >= 0; i-- {
		cards = append(cards, top[i])
	}

	return &Deck{cards: cards}
}

// Shuffle performs a Fisher-Yates shuffle, walking from the last index down to 1
// and swapping each position with one drawn from [0, i].
func (d *Deck) Shuffle(src rng.Source) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	return card, nil
}

// Trim discards every card below the top n
func (d *Deck) Trim(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(d.cards) {
		d.cards = append([]Card(nil), d.cards[len(d.cards)-n:]...)
	}
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the undrawn cards, bottom first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
