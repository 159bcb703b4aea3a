package shared

import (
	"fmt"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/pkg/api"
)

// SQLStatementsFactory builds the driver specific statements. Each method
// returns the query and its arguments in bind order.
type SQLStatementsFactory interface {
	GetTablesSchema() string
	Placeholder(index int) string
	// FormatTime converts t to the value stored in time columns
	FormatTime(t time.Time) any

	// results operations
	CreateResultAddStatement(result *api.Result) (string, []any)
	CreateResultGetStatement(id int) (string, []any)
	CreateResultListStatement(conditions []Condition, limit, offset int) (string, []any)
	CreateResultCountStatement(conditions []Condition) (string, []any)
	CreateResultIncrementReceiveStatement(id int) (string, []any)
	CreateResultFinishStatement(id int, status api.ResultStatus, endTime time.Time) (string, []any)
	CreateResultsDeleteStatement(ids []int) (string, []any)
	CreateResultsDeleteBeforeStatement(before time.Time) (string, []any)

	// result details operations
	CreateDetailAddStatement(detail *api.ResultDetail) (string, []any)
	CreateDetailsDeleteStatement(resultIDs []int) (string, []any)
	CreateDetailsDeleteBeforeStatement(before time.Time) (string, []any)
	CreateCaseStatusStatement(resultID int) (string, []any)
	CreateWorstStatusStatement(resultID int) (string, []any)

	// statistics operations
	CreateStatusCountStatement(filter abstractions.StatisticsFilter, groupBy abstractions.StatisticsGroup) (string, []any, error)

	// projects operations
	CreateProjectUpsertStatement(project *api.Project) (string, []any)
	CreateProjectGetStatement(id int) (string, []any)
	CreateProjectListStatement() string
}

// Column lists shared by the drivers, in scan order
const (
	RESULT_COLUMNS  = "id, project_id, suite_id, suite_name, strike, send_msg_count, receive_msg_count, status, create_time, end_time"
	DETAIL_COLUMNS  = "result_id, case_id, case_name, type, status, ud_id, des, log, detail_time"
	PROJECT_COLUMNS = "id, project_name, robot_type, robot_token, robot_secret"
)

// CreateListStatement selects columns from table filtered by conditions,
// newest id first, with optional LIMIT and OFFSET.
func CreateListStatement(table string, columns string, conditions []Condition, limit, offset int, placeholder PlaceholderFunc) (string, []any) {
	where, args := CreateWhereClause(conditions, placeholder, 0)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id DESC", columns, table, where)
	if limit > 0 {
		query += " LIMIT " + placeholder(len(args))
		args = append(args, limit)
	}
	if offset > 0 {
		query += " OFFSET " + placeholder(len(args))
		args = append(args, offset)
	}
	return query + ";", args
}

func CreateCountStatement(table string, conditions []Condition, placeholder PlaceholderFunc) (string, []any) {
	where, args := CreateWhereClause(conditions, placeholder, 0)
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s;", table, where), args
}

func CreateDeleteInStatement(table string, column string, ids []int, placeholder PlaceholderFunc) (string, []any) {
	return fmt.Sprintf("DELETE FROM %s WHERE %s;", table, CreateInList(column, len(ids), placeholder, 0)), IntArgs(ids)
}

// CreateCaseStatusStatement aggregates the details of a result per case. The
// worst status only considers status details.
func CreateCaseStatusStatement(resultID int, placeholder PlaceholderFunc) (string, []any) {
	query := fmt.Sprintf(`SELECT case_id, MAX(case_name), MAX(CASE WHEN type = '%s' THEN status ELSE 0 END), MIN(detail_time), MAX(detail_time)
FROM result_details WHERE result_id = %s GROUP BY case_id ORDER BY MIN(detail_time), case_id;`, api.DetailTypeStatus, placeholder(0))
	return query, []any{resultID}
}

func CreateWorstStatusStatement(resultID int, placeholder PlaceholderFunc) (string, []any) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(status), 0) FROM result_details WHERE result_id = %s AND type = %s;`, placeholder(0), placeholder(1))
	return query, []any{resultID, api.DetailTypeStatus}
}

// CreateStatusCountStatement counts results (or status details for the case
// and device groups) per group and status. The rows are
// (group name, group id, status, count).
func CreateStatusCountStatement(filter abstractions.StatisticsFilter, groupBy abstractions.StatisticsGroup, placeholder PlaceholderFunc, dayExpression func(column string) string, formatTime func(time.Time) any) (string, []any, error) {
	conditions := []Condition{
		{Column: "r.create_time", Op: OpGte, Value: formatTime(filter.From)},
		{Column: "r.create_time", Op: OpLte, Value: formatTime(filter.To)},
	}
	if filter.ProjectID > 0 {
		conditions = append(conditions, Condition{Column: "r.project_id", Op: OpEq, Value: filter.ProjectID})
	}

	var selectColumns, from, groupColumns string
	switch groupBy {
	case abstractions.GroupByDay:
		day := dayExpression("r.create_time")
		selectColumns = day + ", 0, r.status"
		from = "results r"
		groupColumns = day + ", r.status"
	case abstractions.GroupBySuite:
		selectColumns = "r.suite_name, r.suite_id, r.status"
		from = "results r"
		groupColumns = "r.suite_id, r.suite_name, r.status"
	case abstractions.GroupByProject:
		selectColumns = "COALESCE(p.project_name, ''), r.project_id, r.status"
		from = "results r LEFT JOIN projects p ON p.id = r.project_id"
		groupColumns = "r.project_id, p.project_name, r.status"
	case abstractions.GroupByCase:
		selectColumns = "d.case_name, d.case_id, d.status"
		from = "result_details d JOIN results r ON r.id = d.result_id"
		groupColumns = "d.case_id, d.case_name, d.status"
		conditions = append(conditions, Condition{Column: "d.type", Op: OpEq, Value: api.DetailTypeStatus})
	case abstractions.GroupByDevice:
		selectColumns = "d.ud_id, 0, d.status"
		from = "result_details d JOIN results r ON r.id = d.result_id"
		groupColumns = "d.ud_id, d.status"
		conditions = append(conditions, Condition{Column: "d.type", Op: OpEq, Value: api.DetailTypeStatus})
	default:
		return "", nil, fmt.Errorf("unsupported statistics group: %s", groupBy)
	}

	where, args := CreateWhereClause(conditions, placeholder, 0)
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s%s GROUP BY %s ORDER BY 1, 2, 3;", selectColumns, from, where, groupColumns)
	return query, args, nil
}
