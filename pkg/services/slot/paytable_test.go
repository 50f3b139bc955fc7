package slot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateLine(t *testing.T) {
	bet := decimal.NewFromInt(2)

	testCases := []struct {
		name       string
		symbols    []Symbol
		paytable   Paytable
		symbol     Symbol
		count      int
		multiplier int64
	}{
		{
			name:       "three sevens",
			symbols:    []Symbol{Seven, Seven, Seven, Bar, Lemon},
			paytable:   Paytable{Seven: {3: 50}},
			symbol:     Seven,
			count:      3,
			multiplier: 50,
		},
		{
			name:       "leading wild takes the next symbol",
			symbols:    []Symbol{Wild, Bell, Bell, Orange, Orange},
			paytable:   DefaultPaytable(),
			symbol:     Bell,
			count:      3,
			multiplier: 15,
		},
		{
			name:       "wilds inside the run",
			symbols:    []Symbol{Bell, Wild, Bell, Wild, Cherry},
			paytable:   DefaultPaytable(),
			symbol:     Bell,
			count:      4,
			multiplier: 40,
		},
		{
			name:       "two leading wilds",
			symbols:    []Symbol{Wild, Wild, Bar, Bar, Seven},
			paytable:   DefaultPaytable(),
			symbol:     Bar,
			count:      4,
			multiplier: 75,
		},
		{
			name:       "all wild",
			symbols:    []Symbol{Wild, Wild, Wild, Wild, Wild},
			paytable:   DefaultPaytable(),
			symbol:     Wild,
			count:      5,
			multiplier: 1000,
		},
		{
			name:       "run of two does not pay",
			symbols:    []Symbol{Seven, Seven, Bar, Seven, Seven},
			paytable:   DefaultPaytable(),
			symbol:     Seven,
			count:      2,
			multiplier: 0,
		},
		{
			name:       "no match",
			symbols:    []Symbol{Cherry, Lemon, Cherry, Cherry, Cherry},
			paytable:   DefaultPaytable(),
			symbol:     Cherry,
			count:      1,
			multiplier: 0,
		},
		{
			name:       "missing paytable entry",
			symbols:    []Symbol{Bar, Bar, Bar, Bar, Lemon},
			paytable:   Paytable{Seven: {3: 50}},
			symbol:     Bar,
			count:      4,
			multiplier: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := EvaluateLine(tc.symbols, bet, tc.paytable)

			assert.Equal(t, tc.symbol, result.Symbol)
			assert.Equal(t, tc.count, result.Count)
			assert.Equal(t, tc.multiplier, result.Multiplier)
			assert.True(t, bet.Mul(decimal.NewFromInt(tc.multiplier)).Equal(result.Payout), "payout %s", result.Payout)
			assert.Equal(t, tc.symbols, result.Symbols)
		})
	}
}

func TestEvaluateLineEmpty(t *testing.T) {
	result := EvaluateLine(nil, decimal.NewFromInt(1), DefaultPaytable())

	assert.Zero(t, result.Count)
	assert.True(t, result.Payout.IsZero())
}

func TestEvaluatePaylineReadsRows(t *testing.T) {
	grid := Grid{
		{Lemon, Seven, Plum},
		{Bar, Seven, Bell},
		{Cherry, Wild, Orange},
		{Plum, Bar, Lemon},
		{Bell, Cherry, Bar},
	}

	center := EvaluatePayline(grid, CenterLine(5, 3), decimal.NewFromInt(1), DefaultPaytable())
	assert.Equal(t, []Symbol{Seven, Seven, Wild, Bar, Cherry}, center.Symbols)
	assert.Equal(t, Seven, center.Symbol)
	assert.Equal(t, 3, center.Count)
	assert.Equal(t, "50", center.Payout.String())

	vee := EvaluatePayline(grid, Payline{0, 1, 2, 1, 0}, decimal.NewFromInt(1), DefaultPaytable())
	assert.Equal(t, []Symbol{Lemon, Seven, Orange, Bar, Bell}, vee.Symbols)
	assert.True(t, vee.Payout.IsZero())
}

func TestEvaluatePaylineStopsAtGridEdge(t *testing.T) {
	grid := Grid{{Seven}, {Seven}, {Seven}}

	result := EvaluatePayline(grid, Payline{0, 0, 0, 0, 0}, decimal.NewFromInt(1), DefaultPaytable())

	assert.Len(t, result.Symbols, 3)
	assert.Equal(t, 3, result.Count)
}

func TestCenterLine(t *testing.T) {
	assert.Equal(t, Payline{1, 1, 1, 1, 1}, CenterLine(5, 3))
	assert.Equal(t, Payline{0, 0, 0}, CenterLine(3, 1))
}

func TestDefaultPaytableCoversAlphabet(t *testing.T) {
	paytable := DefaultPaytable()
	for _, symbol := range Symbols {
		for count := MinLineCount; count <= DefaultReels; count++ {
			assert.Positive(t, paytable.Multiplier(symbol, count), "%s x%d", symbol, count)
		}
		assert.Zero(t, paytable.Multiplier(symbol, 2))
	}
	assert.Greater(t, paytable.Multiplier(Wild, 5), paytable.Multiplier(Seven, 5))
}
