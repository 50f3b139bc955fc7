package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet represents a player's balance as held by the ledger
type Wallet struct {
	UserID      string          // Player ID
	Balance     decimal.Decimal // Current balance
	LastUpdated time.Time       // When the wallet was last updated
}

// TransactionType represents the type of wallet transaction
type TransactionType string

const (
	TransactionTypeBet    TransactionType = "BET"
	TransactionTypePayout TransactionType = "PAYOUT"
	TransactionTypeRefund TransactionType = "REFUND"
	TransactionTypeSeed   TransactionType = "SEED"
)

// Transaction represents a single wallet transaction
type Transaction struct {
	ID           string          // Unique identifier
	UserID       string          // User associated with the transaction
	Amount       decimal.Decimal // Amount (positive for credits, negative for debits)
	Type         TransactionType // Type of transaction
	ReferenceID  string          // Game or spin the movement belongs to
	Description  string          // Human-readable description
	Timestamp    time.Time       // When the transaction occurred
	BalanceAfter decimal.Decimal // Balance after this transaction
}
