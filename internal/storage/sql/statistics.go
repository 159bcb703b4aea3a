package sql

import (
	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/pkg/api"
)

// GetStatusCounts counts the results (or the status details for the case and
// device groups) created in the filter range, per group and status.
func (s *SQLStorage) GetStatusCounts(filter abstractions.StatisticsFilter, groupBy abstractions.StatisticsGroup) ([]abstractions.GroupedStatusCount, error) {
	query, args, err := s.statements.CreateStatusCountStatement(filter, groupBy)
	if err != nil {
		return nil, queryError(string(groupBy), err)
	}
	rows, err := s.executor(nil).Query(query, args...)
	if err != nil {
		s.logger.Error("Failed to query status counts", "group", groupBy, "error", err.Error())
		return nil, queryError(string(groupBy), err)
	}
	defer rows.Close()

	counts := make([]abstractions.GroupedStatusCount, 0)
	for rows.Next() {
		var count abstractions.GroupedStatusCount
		var status int
		if err := rows.Scan(&count.Group, &count.GroupID, &status, &count.Count); err != nil {
			return nil, queryError(string(groupBy), err)
		}
		count.Status = api.ResultStatus(status)
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(string(groupBy), err)
	}
	return counts, nil
}
