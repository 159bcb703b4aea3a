package sql

// The code in this file must be unware of the database implementation.

import (
	"context"
	db "database/sql"
	"fmt"

	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
)

type SQLExecutor struct {
	Db  *db.DB
	Txn *db.Tx
	Ctx context.Context
}

func (s *SQLExecutor) Exec(query string, args ...any) (db.Result, error) {
	if s.Txn != nil {
		return s.Txn.ExecContext(s.Ctx, query, args...)
	}
	return s.Db.ExecContext(s.Ctx, query, args...)
}

func (s *SQLExecutor) Query(query string, args ...any) (*db.Rows, error) {
	if s.Txn != nil {
		return s.Txn.QueryContext(s.Ctx, query, args...)
	}
	return s.Db.QueryContext(s.Ctx, query, args...)
}

func (s *SQLExecutor) QueryRow(query string, args ...any) *db.Row {
	if s.Txn != nil {
		return s.Txn.QueryRowContext(s.Ctx, query, args...)
	}
	return s.Db.QueryRowContext(s.Ctx, query, args...)
}

func databaseError(operation string, resourceID any, err error) error {
	return serviceerrors.NewServiceError(messages.DatabaseOperationFailed, "Type", operation, "ResourceId", fmt.Sprintf("%v", resourceID), "Error", err.Error())
}

func queryError(resource string, err error) error {
	return serviceerrors.NewServiceError(messages.QueryFailed, "Type", resource, "Error", err.Error())
}

// dedupe removes duplicate ids keeping the first occurrence.
func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
