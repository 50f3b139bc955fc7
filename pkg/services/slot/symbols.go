package slot

import "github.com/fadedpez/tucocasino/pkg/rng"

// Symbol is one reel symbol
type Symbol string

const (
	Wild   Symbol = "WILD"
	Seven  Symbol = "SEVEN"
	Bar    Symbol = "BAR"
	Bell   Symbol = "BELL"
	Cherry Symbol = "CHERRY"
	Lemon  Symbol = "LEMON"
	Orange Symbol = "ORANGE"
	Plum   Symbol = "PLUM"
)

// Symbols lists the whole alphabet, high-value symbols first
var Symbols = []Symbol{Wild, Seven, Bar, Bell, Cherry, Lemon, Orange, Plum}

// Cumulative probability bands for the high-value symbols. Anything above
// the last band is a uniformly chosen low-value symbol.
var highBands = []struct {
	below  float64
	symbol Symbol
}{
	{below: 0.02, symbol: Wild},
	{below: 0.05, symbol: Seven},
	{below: 0.10, symbol: Bar},
	{below: 0.20, symbol: Bell},
}

var lowSymbols = []Symbol{Cherry, Lemon, Orange, Plum}

// Strip is the fixed symbol sequence printed on one reel
type Strip []Symbol

// At returns the symbol at pos, wrapping around the end of the strip
func (s Strip) At(pos int) Symbol {
	return s[pos%len(s)]
}

// GenerateStrip samples a strip of the given length
func GenerateStrip(src rng.Source, length int) Strip {
	strip := make(Strip, length)
	for i := range strip {
		strip[i] = sampleSymbol(src)
	}
	return strip
}

// GenerateStrips samples one strip per reel
func GenerateStrips(src rng.Source, reels, length int) []Strip {
	strips := make([]Strip, reels)
	for i := range strips {
		strips[i] = GenerateStrip(src, length)
	}
	return strips
}

func sampleSymbol(src rng.Source) Symbol {
	r := src.Float64()
	for _, band := range highBands {
		if r < band.below {
			return band.symbol
		}
	}
	return lowSymbols[src.Intn(len(lowSymbols))]
}
