package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/results-hub/results-hub/internal/storage/sql/shared"
)

const DRIVER = "pgx"

func Setup(_ *sql.DB, _ *shared.SQLDatabaseConfig) (shared.SQLStatementsFactory, error) {
	return NewStatementsFactory(), nil
}

// EnsureDatabaseExists creates the database named in the URL (and its owner
// role when a password is given) through the postgres admin database.
func EnsureDatabaseExists(ctx context.Context, logger *slog.Logger, connURL string) error {
	if !strings.Contains(connURL, "://") {
		logger.Warn("Postgres URL is not in URL form; skipping auto-create")
		return nil
	}

	parsed, err := url.Parse(connURL)
	if err != nil {
		return fmt.Errorf("parse postgres url: %w", err)
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" || dbName == "postgres" {
		return nil
	}

	adminURL := *parsed
	adminURL.Path = "/postgres"

	adminDB, err := sql.Open(DRIVER, adminURL.String())
	if err != nil {
		return fmt.Errorf("open postgres admin connection: %w", err)
	}
	defer adminDB.Close()

	if err := adminDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres admin database: %w", err)
	}

	var exists bool
	row := adminDB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("check postgres database existence: %w", err)
	}
	if exists {
		return nil
	}

	logger.Info("Postgres database does not exist; creating", "database", dbName)

	owner := ""
	password := ""
	if parsed.User != nil {
		owner = parsed.User.Username()
		if pass, ok := parsed.User.Password(); ok {
			password = pass
		}
	}

	if err := ensureRoleExists(ctx, logger, adminDB, owner, password); err != nil {
		return err
	}

	createSQL := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
	if owner != "" {
		createSQL = fmt.Sprintf("CREATE DATABASE %s OWNER %s", quoteIdentifier(dbName), quoteIdentifier(owner))
	}
	if _, err := adminDB.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create postgres database: %w", err)
	}

	return nil
}

func ensureRoleExists(ctx context.Context, logger *slog.Logger, adminDB *sql.DB, owner string, password string) error {
	if owner == "" {
		return nil
	}

	var exists bool
	row := adminDB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)", owner)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("check postgres role existence: %w", err)
	}
	if exists {
		return nil
	}

	if password == "" {
		logger.Warn("Postgres role does not exist and no password provided; skipping role creation", "role", owner)
		return nil
	}

	logger.Info("Postgres role does not exist; creating", "role", owner)
	createSQL := fmt.Sprintf("CREATE USER %s WITH PASSWORD %s", quoteIdentifier(owner), quoteLiteral(password))
	if _, err := adminDB.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create postgres role: %w", err)
	}

	return nil
}

func quoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
