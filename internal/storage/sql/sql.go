package sql

import (
	"context"
	db "database/sql"
	"log/slog"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/internal/storage/sql/postgres"
	"github.com/results-hub/results-hub/internal/storage/sql/shared"
	"github.com/results-hub/results-hub/internal/storage/sql/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

const (
	// These are the only tables currently supported
	TABLE_RESULTS        = "results"
	TABLE_RESULT_DETAILS = "result_details"
	TABLE_PROJECTS       = "projects"
)

type SQLStorage struct {
	sqlConfig  *shared.SQLDatabaseConfig
	pool       *db.DB
	statements shared.SQLStatementsFactory
	logger     *slog.Logger
	ctx        context.Context
}

// NewStorage opens the pool for the configured driver, applies the driver
// setup and makes sure the tables exist.
func NewStorage(config map[string]any, otelEnabled bool, logger *slog.Logger) (abstractions.Storage, error) {
	var sqlConfig shared.SQLDatabaseConfig
	if err := mapstructure.Decode(config, &sqlConfig); err != nil {
		return nil, serviceerrors.NewServiceError(messages.ConfigurationFailed, "Error", err.Error())
	}

	var dbSystem attribute.KeyValue
	switch sqlConfig.Driver {
	case sqlite.DRIVER:
		dbSystem = semconv.DBSystemSqlite
	case postgres.DRIVER:
		dbSystem = semconv.DBSystemPostgreSQL
	default:
		return nil, serviceerrors.NewServiceError(messages.UnsupportedDriver, "Driver", sqlConfig.Driver)
	}

	databaseName := sqlConfig.GetDatabaseName()
	logger = logger.With("driver", sqlConfig.GetDriverName(), "database", databaseName)
	logger.Info("Creating SQL storage", "url", sqlConfig.GetConnectionURL())

	dsn := sqlConfig.GetDataSourceName()
	if sqlConfig.Driver == postgres.DRIVER {
		if err := postgres.EnsureDatabaseExists(context.Background(), logger, dsn); err != nil {
			return nil, err
		}
	}

	var pool *db.DB
	var err error
	if otelEnabled {
		attrs := []attribute.KeyValue{dbSystem}
		if databaseName != "" {
			attrs = append(attrs, semconv.DBNameKey.String(databaseName))
		}
		pool, err = otelsql.Open(sqlConfig.Driver, dsn, otelsql.WithAttributes(attrs...))
	} else {
		pool, err = db.Open(sqlConfig.Driver, dsn)
	}
	if err != nil {
		return nil, err
	}

	success := false
	defer func() {
		if !success {
			pool.Close()
		}
	}()

	if sqlConfig.ConnMaxLifetime != nil {
		pool.SetConnMaxLifetime(*sqlConfig.ConnMaxLifetime)
	}
	if sqlConfig.MaxIdleConns != nil {
		pool.SetMaxIdleConns(*sqlConfig.MaxIdleConns)
	}
	if sqlConfig.MaxOpenConns != nil {
		pool.SetMaxOpenConns(*sqlConfig.MaxOpenConns)
	}

	var statements shared.SQLStatementsFactory
	switch sqlConfig.Driver {
	case sqlite.DRIVER:
		statements, err = sqlite.Setup(pool, &sqlConfig)
	case postgres.DRIVER:
		statements, err = postgres.Setup(pool, &sqlConfig)
	}
	if err != nil {
		return nil, err
	}

	s := &SQLStorage{
		sqlConfig:  &sqlConfig,
		pool:       pool,
		statements: statements,
		logger:     logger,
		ctx:        context.Background(),
	}

	// ping the database to verify the DSN provided by the user is valid and the server is accessible
	logger.Info("Pinging SQL storage")
	if err := s.Ping(1 * time.Second); err != nil {
		return nil, err
	}

	logger.Info("Ensuring schemas are created")
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}

	success = true
	return s, nil
}

// Ping the database to verify DSN provided by the user is valid and the
// server accessible.
func (s *SQLStorage) Ping(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.pool.PingContext(ctx)
}

func (s *SQLStorage) GetDriverName() string {
	return s.sqlConfig.GetDriverName()
}

func (s *SQLStorage) GetConnectionURL() string {
	return s.sqlConfig.GetConnectionURL()
}

func (s *SQLStorage) executor(txn *db.Tx) *SQLExecutor {
	return &SQLExecutor{Db: s.pool, Txn: txn, Ctx: s.ctx}
}

func (s *SQLStorage) ensureSchema() error {
	if _, err := s.executor(nil).Exec(s.statements.GetTablesSchema()); err != nil {
		return err
	}
	return nil
}

func (s *SQLStorage) Close() error {
	return s.pool.Close()
}

func (s *SQLStorage) WithLogger(logger *slog.Logger) abstractions.Storage {
	return &SQLStorage{
		sqlConfig:  s.sqlConfig,
		pool:       s.pool,
		statements: s.statements,
		logger:     logger,
		ctx:        s.ctx,
	}
}

func (s *SQLStorage) WithContext(ctx context.Context) abstractions.Storage {
	return &SQLStorage{
		sqlConfig:  s.sqlConfig,
		pool:       s.pool,
		statements: s.statements,
		logger:     s.logger,
		ctx:        ctx,
	}
}
