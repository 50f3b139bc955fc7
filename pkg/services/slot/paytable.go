package slot

import "github.com/shopspring/decimal"

// MinLineCount is the shortest run that can pay
const MinLineCount = 3

// Paytable maps a symbol and run length to a bet multiplier
type Paytable map[Symbol]map[int]int64

// DefaultPaytable returns the standard five-reel paytable
func DefaultPaytable() Paytable {
	return Paytable{
		Wild:   {3: 100, 4: 300, 5: 1000},
		Seven:  {3: 50, 4: 150, 5: 500},
		Bar:    {3: 25, 4: 75, 5: 250},
		Bell:   {3: 15, 4: 40, 5: 120},
		Cherry: {3: 8, 4: 20, 5: 60},
		Plum:   {3: 6, 4: 15, 5: 45},
		Orange: {3: 5, 4: 12, 5: 35},
		Lemon:  {3: 4, 4: 10, 5: 30},
	}
}

// Multiplier returns the multiplier for a run, or 0 if the run does not pay
func (p Paytable) Multiplier(symbol Symbol, count int) int64 {
	if count < MinLineCount {
		return 0
	}
	return p[symbol][count]
}

// Payline selects one row per reel
type Payline []int

// CenterLine returns the middle row across every reel
func CenterLine(reels, rows int) Payline {
	line := make(Payline, reels)
	for i := range line {
		line[i] = rows / 2
	}
	return line
}

// LineResult is the evaluation of one payline
type LineResult struct {
	Symbols    []Symbol        `json:"symbols"`
	Symbol     Symbol          `json:"symbol"` // scoring symbol after wild substitution
	Count      int             `json:"count"`
	Multiplier int64           `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
}

// EvaluateLine scores the run that starts on the first reel. A wild counts
// as whatever symbol it sits next to in the run; a run of wilds alone scores
// as WILD.
func EvaluateLine(symbols []Symbol, bet decimal.Decimal, paytable Paytable) LineResult {
	result := LineResult{
		Symbols: append([]Symbol(nil), symbols...),
		Payout:  decimal.Zero,
	}
	if len(symbols) == 0 {
		return result
	}

	base := symbols[0]
	count := 1
	for _, sym := range symbols[1:] {
		if base == Wild && sym != Wild {
			base = sym
		} else if sym != base && sym != Wild {
			break
		}
		count++
	}

	result.Symbol = base
	result.Count = count
	result.Multiplier = paytable.Multiplier(base, count)
	result.Payout = bet.Mul(decimal.NewFromInt(result.Multiplier))
	return result
}

// EvaluatePayline reads line out of grid and scores it
func EvaluatePayline(grid Grid, line Payline, bet decimal.Decimal, paytable Paytable) LineResult {
	symbols := make([]Symbol, 0, len(line))
	for reel, row := range line {
		if reel >= len(grid) || row >= len(grid[reel]) {
			break
		}
		symbols = append(symbols, grid[reel][row])
	}
	return EvaluateLine(symbols, bet, paytable)
}
