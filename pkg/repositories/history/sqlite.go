package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed-width UTC layout so stored timestamps sort lexically
const timeLayout = "2006-01-02 15:04:05.000000"

const selectRoundColumns = `SELECT id, game_type, game_id, player_id, bet, payout, outcome, jackpot_win, completed_at FROM rounds`

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an already migrated database
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveRound stores a round
func (r *SQLiteRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	if round.ID == "" {
		round.ID = uuid.New().String()
	}
	if round.CompletedAt.IsZero() {
		round.CompletedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rounds (id, game_type, game_id, player_id, bet, payout, outcome, jackpot_win, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		round.ID,
		round.GameType,
		round.GameID,
		round.PlayerID,
		round.Bet.String(),
		round.Payout.String(),
		round.Outcome,
		round.JackpotWin.String(),
		round.CompletedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("error saving round: %w", err)
	}
	return nil
}

// GetPlayerRounds retrieves rounds for a player
func (r *SQLiteRepository) GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error) {
	query := selectRoundColumns + ` WHERE player_id = ? ORDER BY completed_at DESC, rowid DESC LIMIT ?`
	return r.queryRounds(ctx, query, playerID, limit)
}

// GetRecentRounds retrieves recent rounds of a game type
func (r *SQLiteRepository) GetRecentRounds(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RoundRecord, error) {
	if gameType == "" {
		query := selectRoundColumns + ` ORDER BY completed_at DESC, rowid DESC LIMIT ?`
		return r.queryRounds(ctx, query, limit)
	}
	query := selectRoundColumns + ` WHERE game_type = ? ORDER BY completed_at DESC, rowid DESC LIMIT ?`
	return r.queryRounds(ctx, query, gameType, limit)
}

func (r *SQLiteRepository) queryRounds(ctx context.Context, query string, args ...any) ([]*entities.RoundRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]*entities.RoundRecord, 0)
	for rows.Next() {
		var round entities.RoundRecord
		var bet, payout, jackpotWin, completedAt string

		err := rows.Scan(
			&round.ID,
			&round.GameType,
			&round.GameID,
			&round.PlayerID,
			&bet,
			&payout,
			&round.Outcome,
			&jackpotWin,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning round row: %w", err)
		}

		if round.Bet, err = decimal.NewFromString(bet); err != nil {
			return nil, fmt.Errorf("error parsing bet '%s': %w", bet, err)
		}
		if round.Payout, err = decimal.NewFromString(payout); err != nil {
			return nil, fmt.Errorf("error parsing payout '%s': %w", payout, err)
		}
		if round.JackpotWin, err = decimal.NewFromString(jackpotWin); err != nil {
			return nil, fmt.Errorf("error parsing jackpot win '%s': %w", jackpotWin, err)
		}
		if round.CompletedAt, err = time.ParseInLocation(timeLayout, completedAt, time.UTC); err != nil {
			return nil, fmt.Errorf("error parsing timestamp '%s': %w", completedAt, err)
		}

		rounds = append(rounds, &round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return rounds, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
