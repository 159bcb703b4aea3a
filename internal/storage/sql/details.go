package sql

import (
	"time"

	"github.com/results-hub/results-hub/internal/storage/sql/shared"
	"github.com/results-hub/results-hub/pkg/api"
)

func (s *SQLStorage) CreateResultDetail(detail *api.ResultDetail) error {
	if detail.Time == nil {
		detail.Time = api.NewDateTime(time.Now())
	}
	query, args := s.statements.CreateDetailAddStatement(detail)
	if err := s.executor(nil).QueryRow(query, args...).Scan(&detail.ID); err != nil {
		s.logger.Error("Failed to create result detail", "result_id", detail.ResultID, "error", err.Error())
		return databaseError("create result detail", detail.ResultID, err)
	}
	return nil
}

// GetCaseStatuses returns one entry per case of the result, ordered by the
// time of the first detail. The slice is empty when there are no details.
func (s *SQLStorage) GetCaseStatuses(resultID int) ([]api.CaseStatus, error) {
	query, args := s.statements.CreateCaseStatusStatement(resultID)
	rows, err := s.executor(nil).Query(query, args...)
	if err != nil {
		s.logger.Error("Failed to query case statuses", "result_id", resultID, "error", err.Error())
		return nil, queryError(TABLE_RESULT_DETAILS, err)
	}
	defer rows.Close()

	statuses := make([]api.CaseStatus, 0)
	for rows.Next() {
		var caseStatus api.CaseStatus
		var status int
		var startTime, endTime any
		if err := rows.Scan(&caseStatus.CaseID, &caseStatus.CaseName, &status, &startTime, &endTime); err != nil {
			return nil, queryError(TABLE_RESULT_DETAILS, err)
		}
		caseStatus.Status = api.ResultStatus(status)
		if caseStatus.StartTime, err = shared.ScanDateTime(startTime); err != nil {
			return nil, queryError(TABLE_RESULT_DETAILS, err)
		}
		if caseStatus.EndTime, err = shared.ScanDateTime(endTime); err != nil {
			return nil, queryError(TABLE_RESULT_DETAILS, err)
		}
		if caseStatus.StartTime != nil && caseStatus.EndTime != nil {
			caseStatus.TotalTime = caseStatus.EndTime.Sub(caseStatus.StartTime.Time).Milliseconds()
		}
		statuses = append(statuses, caseStatus)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(TABLE_RESULT_DETAILS, err)
	}
	return statuses, nil
}

// GetWorstDetailStatus returns the highest status of the status details of
// the result, or ResultStatusRunning when there are none.
func (s *SQLStorage) GetWorstDetailStatus(resultID int) (api.ResultStatus, error) {
	query, args := s.statements.CreateWorstStatusStatement(resultID)
	var status int
	if err := s.executor(nil).QueryRow(query, args...).Scan(&status); err != nil {
		s.logger.Error("Failed to query worst detail status", "result_id", resultID, "error", err.Error())
		return api.ResultStatusRunning, queryError(TABLE_RESULT_DETAILS, err)
	}
	return api.ResultStatus(status), nil
}
