package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/storage/sql/shared"
	"github.com/results-hub/results-hub/pkg/api"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type resultFilter struct {
	column string
	op     string
}

var resultFilters = map[string]resultFilter{
	abstractions.FilterProjectID: {column: "project_id", op: shared.OpEq},
	abstractions.FilterSuiteName: {column: "suite_name", op: shared.OpLike},
	abstractions.FilterStrike:    {column: "strike", op: shared.OpLike},
	abstractions.FilterStatus:    {column: "status", op: shared.OpEq},
	abstractions.FilterFrom:      {column: "create_time", op: shared.OpGte},
	abstractions.FilterTo:        {column: "create_time", op: shared.OpLte},
}

func (s *SQLStorage) CreateResult(result *api.Result) error {
	if result.CreateTime == nil {
		result.CreateTime = api.NewDateTime(time.Now())
	}
	query, args := s.statements.CreateResultAddStatement(result)
	if err := s.executor(nil).QueryRow(query, args...).Scan(&result.ID); err != nil {
		s.logger.Error("Failed to create result", "project_id", result.ProjectID, "error", err.Error())
		return databaseError("create result", result.ProjectID, err)
	}
	s.logger.Info("Created result", "id", result.ID, "project_id", result.ProjectID)
	return nil
}

// GetResult returns nil without an error when the result does not exist.
func (s *SQLStorage) GetResult(id int) (*api.Result, error) {
	return s.getResult(nil, id)
}

func (s *SQLStorage) getResult(txn *sql.Tx, id int) (*api.Result, error) {
	query, args := s.statements.CreateResultGetStatement(id)
	result, err := scanResult(s.executor(txn).QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("Failed to get result", "id", id, "error", err.Error())
		return nil, databaseError("get result", id, err)
	}
	return result, nil
}

func (s *SQLStorage) GetResults(filter abstractions.QueryFilter) (*abstractions.QueryResults[api.Result], error) {
	conditions, err := s.resultConditions(filter.Params)
	if err != nil {
		return nil, err
	}

	e := s.executor(nil)

	countQuery, countArgs := s.statements.CreateResultCountStatement(conditions)
	var total int
	if err := e.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		s.logger.Error("Failed to count results", "error", err.Error())
		return nil, queryError(TABLE_RESULTS, err)
	}

	listQuery, listArgs := s.statements.CreateResultListStatement(conditions, filter.Limit, filter.Offset)
	rows, err := e.Query(listQuery, listArgs...)
	if err != nil {
		s.logger.Error("Failed to list results", "error", err.Error())
		return nil, queryError(TABLE_RESULTS, err)
	}
	defer rows.Close()

	items := make([]api.Result, 0, filter.Limit)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, queryError(TABLE_RESULTS, err)
		}
		items = append(items, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(TABLE_RESULTS, err)
	}

	return &abstractions.QueryResults[api.Result]{
		Items:       items,
		TotalStored: total,
	}, nil
}

// IncrementReceiveMsgCount adds one received sub-result and returns the
// updated result, or nil when the result does not exist.
func (s *SQLStorage) IncrementReceiveMsgCount(id int) (*api.Result, error) {
	var result *api.Result
	err := WithTransaction(s.ctx, s.pool, s.logger, "increment receive count", id, func(txn *sql.Tx) error {
		query, args := s.statements.CreateResultIncrementReceiveStatement(id)
		res, err := s.executor(txn).Exec(query, args...)
		if err != nil {
			return databaseError("increment receive count", id, err)
		}
		if affected, err := res.RowsAffected(); err != nil || affected == 0 {
			return err
		}
		result, err = s.getResult(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FinishResult sets the final status of a running result. It reports false
// when the result was already finished or does not exist.
func (s *SQLStorage) FinishResult(id int, status api.ResultStatus, endTime time.Time) (bool, error) {
	query, args := s.statements.CreateResultFinishStatement(id, status, endTime)
	res, err := s.executor(nil).Exec(query, args...)
	if err != nil {
		s.logger.Error("Failed to finish result", "id", id, "error", err.Error())
		return false, databaseError("finish result", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, databaseError("finish result", id, err)
	}
	return affected > 0, nil
}

func (s *SQLStorage) DeleteResults(ids []int) (int, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	deleted := 0
	err := WithTransaction(s.ctx, s.pool, s.logger, "delete results", ids, func(txn *sql.Tx) error {
		e := s.executor(txn)
		detailsQuery, detailsArgs := s.statements.CreateDetailsDeleteStatement(ids)
		if _, err := e.Exec(detailsQuery, detailsArgs...); err != nil {
			return databaseError("delete result details", ids, err)
		}
		resultsQuery, resultsArgs := s.statements.CreateResultsDeleteStatement(ids)
		res, err := e.Exec(resultsQuery, resultsArgs...)
		if err != nil {
			return databaseError("delete results", ids, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return databaseError("delete results", ids, err)
		}
		deleted = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Deleted results", "ids", fmt.Sprint(ids), "deleted", deleted)
	return deleted, nil
}

func (s *SQLStorage) DeleteResultsBefore(before time.Time) (int, error) {
	deleted := 0
	err := WithTransaction(s.ctx, s.pool, s.logger, "delete results before", before.UTC().Format(api.DateTimeLayout), func(txn *sql.Tx) error {
		e := s.executor(txn)
		detailsQuery, detailsArgs := s.statements.CreateDetailsDeleteBeforeStatement(before)
		if _, err := e.Exec(detailsQuery, detailsArgs...); err != nil {
			return databaseError("delete result details", before, err)
		}
		resultsQuery, resultsArgs := s.statements.CreateResultsDeleteBeforeStatement(before)
		res, err := e.Exec(resultsQuery, resultsArgs...)
		if err != nil {
			return databaseError("delete results", before, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return databaseError("delete results", before, err)
		}
		deleted = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Deleted results created before", "before", before.UTC().Format(api.DateTimeLayout), "deleted", deleted)
	return deleted, nil
}

// resultConditions maps the named filter values onto column conditions in
// the sorted order of the filter names. Empty values are skipped.
func (s *SQLStorage) resultConditions(params map[string]any) ([]shared.Condition, error) {
	keys := slices.Sorted(maps.Keys(params))
	if err := shared.ValidateFilter(keys, slices.Sorted(maps.Keys(resultFilters))); err != nil {
		return nil, err
	}
	conditions := make([]shared.Condition, 0, len(keys))
	for _, key := range keys {
		value := params[key]
		if value == nil || value == "" {
			continue
		}
		filter := resultFilters[key]
		switch v := value.(type) {
		case time.Time:
			value = s.statements.FormatTime(v)
		case *time.Time:
			if v == nil {
				continue
			}
			value = s.statements.FormatTime(*v)
		case api.ResultStatus:
			value = int(v)
		}
		if filter.op == shared.OpLike {
			value = shared.LikeContains(fmt.Sprint(value))
		}
		conditions = append(conditions, shared.Condition{Column: filter.column, Op: filter.op, Value: value})
	}
	return conditions, nil
}

func scanResult(row rowScanner) (*api.Result, error) {
	var result api.Result
	var status int
	var createTime, endTime any
	if err := row.Scan(&result.ID, &result.ProjectID, &result.SuiteID, &result.SuiteName, &result.Strike, &result.SendMsgCount, &result.ReceiveMsgCount, &status, &createTime, &endTime); err != nil {
		return nil, err
	}
	result.Status = api.ResultStatus(status)
	var err error
	if result.CreateTime, err = shared.ScanDateTime(createTime); err != nil {
		return nil, err
	}
	if result.EndTime, err = shared.ScanDateTime(endTime); err != nil {
		return nil, err
	}
	return &result, nil
}
