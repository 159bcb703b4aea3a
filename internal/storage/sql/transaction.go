package sql

// The code in this file must be unware of the database implementation.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/results-hub/results-hub/internal/abstractions"
)

type TransactionFunction func(*sql.Tx) error

// WithTransaction runs fn in a transaction. The transaction is committed
// unless fn fails with an error that is not a service error or a service
// error that asks for a rollback. The error of fn is returned unchanged.
func WithTransaction(ctx context.Context, pool *sql.DB, logger *slog.Logger, name string, resourceID any, fn TransactionFunction) error {
	txn, err := pool.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("Failed to begin transaction", "name", name, "resource_id", resourceID, "error", err.Error())
		return databaseError(fmt.Sprintf("begin transaction %s", name), resourceID, err)
	}

	fnErr := fn(txn)
	commit := fnErr == nil
	if fnErr != nil {
		if se, ok := fnErr.(abstractions.ServiceError); ok {
			commit = !se.ShouldRollback()
		}
	}

	if commit {
		if txnErr := txn.Commit(); txnErr != nil {
			logger.Error("Failed to commit transaction", "name", name, "resource_id", resourceID, "error", txnErr.Error())
			return databaseError(fmt.Sprintf("commit transaction %s", name), resourceID, txnErr)
		}
	} else {
		if txnErr := txn.Rollback(); txnErr != nil {
			logger.Error("Failed to rollback transaction", "name", name, "resource_id", resourceID, "error", txnErr.Error())
			return databaseError(fmt.Sprintf("rollback transaction %s", name), resourceID, txnErr)
		}
		logger.Debug("Rolled back transaction", "name", name, "resource_id", resourceID)
	}
	return fnErr
}
