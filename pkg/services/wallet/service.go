package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/fadedpez/tucocasino/pkg/entities"
	walletRepo "github.com/fadedpez/tucocasino/pkg/repositories/wallet"
	"github.com/shopspring/decimal"
)

// DefaultStartingBalance is credited to a wallet the first time a player is seen
var DefaultStartingBalance = decimal.NewFromInt(100)

// Service handles wallet business logic and implements Ledger
type Service struct {
	repo            walletRepo.Repository
	logger          *logging.Logger
	startingBalance decimal.Decimal
	createMu        sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger used by the service
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithStartingBalance sets the balance new wallets open with
func WithStartingBalance(amount decimal.Decimal) Option {
	return func(s *Service) { s.startingBalance = amount }
}

// NewService creates a new wallet service
func NewService(repo walletRepo.Repository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		logger:          logging.Default,
		startingBalance: DefaultStartingBalance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ WalletService = (*Service)(nil)

// GetOrCreateWallet retrieves a wallet or creates a new one if it doesn't exist
func (s *Service) GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err == nil {
		return wallet, false, nil
	}
	if !errors.Is(err, walletRepo.ErrWalletNotFound) {
		return nil, false, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	// Another caller may have created it while we waited
	wallet, err = s.repo.GetWallet(ctx, userID)
	if err == nil {
		return wallet, false, nil
	}
	if !errors.Is(err, walletRepo.ErrWalletNotFound) {
		return nil, false, err
	}

	newWallet := &entities.Wallet{
		UserID:      userID,
		Balance:     s.startingBalance,
		LastUpdated: time.Now(),
	}
	if err := s.repo.SaveWallet(ctx, newWallet); err != nil {
		return nil, false, err
	}

	s.logger.Info("Opened wallet for user %s with balance %s", userID, newWallet.Balance)
	return newWallet, true, nil
}

// GetBalance returns the current balance for a user
func (s *Service) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// Debit removes amount from the player's balance if they can cover it
func (s *Service) Debit(ctx context.Context, playerID string, amount decimal.Decimal, reference string) error {
	return s.move(ctx, playerID, amount.Neg(), entities.TransactionTypeBet, reference)
}

// Credit adds amount to the player's balance
func (s *Service) Credit(ctx context.Context, playerID string, amount decimal.Decimal, reference string) error {
	return s.move(ctx, playerID, amount, entities.TransactionTypePayout, reference)
}

func (s *Service) move(ctx context.Context, playerID string, amount decimal.Decimal, txType entities.TransactionType, reference string) error {
	if amount.IsZero() {
		return types.NewGameError(types.ErrInvalidArgument, "amount must be non-zero")
	}
	if txType == entities.TransactionTypeBet && amount.IsPositive() || txType == entities.TransactionTypePayout && amount.IsNegative() {
		return types.NewGameError(types.ErrInvalidArgument, "amount must be positive")
	}

	if _, _, err := s.GetOrCreateWallet(ctx, playerID); err != nil {
		s.logger.Error("Error getting wallet for user %s: %v", playerID, err)
		return types.WrapError(types.ErrLedgerUnavailable, "wallet lookup failed", err)
	}

	wallet, err := s.repo.ApplyTransaction(ctx, &entities.Transaction{
		UserID:      playerID,
		Amount:      amount,
		Type:        txType,
		ReferenceID: reference,
		Description: fmt.Sprintf("%s %s", txType, reference),
		Timestamp:   time.Now(),
	})
	if err != nil {
		if errors.Is(err, walletRepo.ErrInsufficientFunds) {
			return types.WrapError(types.ErrInsufficientFunds, fmt.Sprintf("cannot cover %s", amount.Neg()), err)
		}
		s.logger.Error("Error applying %s for user %s: %v", txType, playerID, err)
		return types.WrapError(types.ErrLedgerUnavailable, "wallet update failed", err)
	}

	s.logger.Debug("%s %s for user %s (ref %s), balance now %s", txType, amount, playerID, reference, wallet.Balance)
	return nil
}

// RecentTransactions retrieves recent transactions for a user
func (s *Service) RecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	return s.repo.GetTransactions(ctx, userID, limit)
}
