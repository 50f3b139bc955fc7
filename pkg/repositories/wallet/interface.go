package wallet

import (
	"context"
	"errors"

	"github.com/fadedpez/tucocasino/pkg/entities"
)

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Repository defines the interface for wallet data operations
type Repository interface {
	// GetWallet retrieves a wallet by user ID
	GetWallet(ctx context.Context, userID string) (*entities.Wallet, error)

	// SaveWallet creates or updates a wallet
	SaveWallet(ctx context.Context, wallet *entities.Wallet) error

	// ApplyTransaction atomically adds transaction.Amount to the wallet balance
	// and records the transaction with its BalanceAfter filled in. A movement
	// that would leave the balance negative fails with ErrInsufficientFunds
	// and changes nothing.
	ApplyTransaction(ctx context.Context, transaction *entities.Transaction) (*entities.Wallet, error)

	// GetTransactions retrieves recent transactions for a user, newest first
	GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// GetTransactionsByType retrieves transactions of a specific type, newest first
	GetTransactionsByType(ctx context.Context, userID string, transactionType entities.TransactionType, limit int) ([]*entities.Transaction, error)
}
