package storage

import (
	"log/slog"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/internal/storage/sql"
)

// NewStorage creates a new storage instance based on the database configuration.
// It currently uses the SQL storage implementation.
func NewStorage(databaseConfig *map[string]any, otelEnabled bool, logger *slog.Logger) (abstractions.Storage, error) {
	if databaseConfig == nil {
		return nil, serviceerrors.NewServiceError(messages.ConfigurationFailed, "Error", "missing database configuration")
	}
	return sql.NewStorage(*databaseConfig, otelEnabled, logger)
}
