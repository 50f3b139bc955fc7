package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed-width UTC layout so stored timestamps sort lexically
const timeLayout = "2006-01-02 15:04:05.000000"

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an already migrated database
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetWallet retrieves a wallet by user ID
func (r *SQLiteRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	return getWallet(ctx, r.db, userID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getWallet(ctx context.Context, q queryer, userID string) (*entities.Wallet, error) {
	query := `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = ?`

	var wallet entities.Wallet
	var balance, updatedAt string

	err := q.QueryRowContext(ctx, query, userID).Scan(&wallet.UserID, &balance, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	if wallet.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("error parsing balance '%s': %w", balance, err)
	}
	if wallet.LastUpdated, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &wallet, nil
}

// SaveWallet creates or updates a wallet
func (r *SQLiteRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	wallet.LastUpdated = time.Now()
	formattedTime := formatTime(wallet.LastUpdated)

	query := `
		INSERT INTO wallets (user_id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			balance = excluded.balance,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, wallet.UserID, wallet.Balance.String(), formattedTime, formattedTime)
	if err != nil {
		return fmt.Errorf("error saving wallet: %w", err)
	}

	return nil
}

// ApplyTransaction atomically moves funds and records the transaction
func (r *SQLiteRepository) ApplyTransaction(ctx context.Context, transaction *entities.Transaction) (*entities.Wallet, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	wallet, err := getWallet(ctx, tx, transaction.UserID)
	if err != nil {
		return nil, err
	}

	balance := wallet.Balance.Add(transaction.Amount)
	if balance.IsNegative() {
		return nil, ErrInsufficientFunds
	}

	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now()
	}
	transaction.BalanceAfter = balance

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance = ?, updated_at = ? WHERE user_id = ?`,
		balance.String(), formatTime(transaction.Timestamp), transaction.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (
			id, user_id, amount, type, reference_id, description, timestamp, balance_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		transaction.ID,
		transaction.UserID,
		transaction.Amount.String(),
		transaction.Type,
		transaction.ReferenceID,
		transaction.Description,
		formatTime(transaction.Timestamp),
		balance.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("error adding transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	wallet.Balance = balance
	wallet.LastUpdated = transaction.Timestamp
	return wallet, nil
}

// GetTransactions retrieves recent transactions for a user
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`
	return r.queryTransactions(ctx, query, userID, limit)
}

// GetTransactionsByType retrieves transactions of a specific type
func (r *SQLiteRepository) GetTransactionsByType(ctx context.Context, userID string, transactionType entities.TransactionType, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ? AND type = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`
	return r.queryTransactions(ctx, query, userID, transactionType, limit)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*entities.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*entities.Transaction, 0)
	for rows.Next() {
		var tx entities.Transaction
		var amount, timestamp, balanceAfter string
		var referenceID, description sql.NullString

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&amount,
			&tx.Type,
			&referenceID,
			&description,
			&timestamp,
			&balanceAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}

		tx.ReferenceID = referenceID.String
		tx.Description = description.String
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("error parsing amount '%s': %w", amount, err)
		}
		if tx.BalanceAfter, err = decimal.NewFromString(balanceAfter); err != nil {
			return nil, fmt.Errorf("error parsing balance '%s': %w", balanceAfter, err)
		}
		if tx.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, err
		}

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", value, err)
	}
	return t, nil
}
