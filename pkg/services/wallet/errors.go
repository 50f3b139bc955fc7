package wallet

import (
	"errors"

	"github.com/fadedpez/tucocasino/internal/types"
)

// LedgerError classifies a failed Debit or Credit for a game caller. Errors
// the ledger already classified keep their code; anything else means the
// ledger could not be reached.
func LedgerError(message string, err error) error {
	var gameErr *types.GameError
	if errors.As(err, &gameErr) {
		return gameErr
	}
	return types.WrapError(types.ErrLedgerUnavailable, message, err)
}
