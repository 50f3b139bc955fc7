package wallet

import (
	"context"

	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_wallet_service

// Ledger moves a player's funds on behalf of the games. Debit must fail
// without effect when the player cannot cover the amount. The reference ties
// the movement to a game or spin.
type Ledger interface {
	Debit(ctx context.Context, playerID string, amount decimal.Decimal, reference string) error
	Credit(ctx context.Context, playerID string, amount decimal.Decimal, reference string) error
}

// WalletService is the player-facing side of the ledger
type WalletService interface {
	Ledger
	GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)
}
