package postgres

import (
	"fmt"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/storage/sql/shared"
	"github.com/results-hub/results-hub/pkg/api"
)

const (
	INSERT_RESULT_STATEMENT  = `INSERT INTO results (project_id, suite_id, suite_name, strike, send_msg_count, receive_msg_count, status, create_time, end_time) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;`
	SELECT_RESULT_STATEMENT  = `SELECT ` + shared.RESULT_COLUMNS + ` FROM results WHERE id = $1;`
	INCREMENT_RECEIVE_COUNT  = `UPDATE results SET receive_msg_count = receive_msg_count + 1 WHERE id = $1;`
	FINISH_RESULT_STATEMENT  = `UPDATE results SET status = $1, end_time = $2 WHERE id = $3 AND status = 0;`
	DELETE_RESULTS_BEFORE    = `DELETE FROM results WHERE create_time < $1;`
	INSERT_DETAIL_STATEMENT  = `INSERT INTO result_details (` + shared.DETAIL_COLUMNS + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;`
	DELETE_DETAILS_BEFORE    = `DELETE FROM result_details WHERE result_id IN (SELECT id FROM results WHERE create_time < $1);`
	UPSERT_PROJECT_STATEMENT = `INSERT INTO projects (` + shared.PROJECT_COLUMNS + `) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET project_name = EXCLUDED.project_name, robot_type = EXCLUDED.robot_type, robot_token = EXCLUDED.robot_token, robot_secret = EXCLUDED.robot_secret;`
	SELECT_PROJECT_STATEMENT = `SELECT ` + shared.PROJECT_COLUMNS + ` FROM projects WHERE id = $1;`
	LIST_PROJECTS_STATEMENT  = `SELECT ` + shared.PROJECT_COLUMNS + ` FROM projects ORDER BY id;`

	TABLES_SCHEMA = `
CREATE TABLE IF NOT EXISTS results (
    id SERIAL PRIMARY KEY,
    project_id INTEGER NOT NULL,
    suite_id INTEGER NOT NULL DEFAULT 0,
    suite_name VARCHAR(255) NOT NULL DEFAULT '',
    strike VARCHAR(255) NOT NULL DEFAULT '',
    send_msg_count INTEGER NOT NULL DEFAULT 0,
    receive_msg_count INTEGER NOT NULL DEFAULT 0,
    status INTEGER NOT NULL DEFAULT 0,
    create_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_results_project_id ON results (project_id);
CREATE INDEX IF NOT EXISTS idx_results_create_time ON results (create_time);

CREATE TABLE IF NOT EXISTS result_details (
    id SERIAL PRIMARY KEY,
    result_id INTEGER NOT NULL,
    case_id INTEGER NOT NULL DEFAULT 0,
    case_name VARCHAR(255) NOT NULL DEFAULT '',
    type VARCHAR(32) NOT NULL,
    status INTEGER NOT NULL DEFAULT 0,
    ud_id VARCHAR(255) NOT NULL DEFAULT '',
    des TEXT NOT NULL DEFAULT '',
    log TEXT NOT NULL DEFAULT '',
    detail_time TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_details_result_id ON result_details (result_id);

CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY,
    project_name VARCHAR(255) NOT NULL,
    robot_type VARCHAR(32) NOT NULL DEFAULT '',
    robot_token TEXT NOT NULL DEFAULT '',
    robot_secret TEXT NOT NULL DEFAULT ''
);
`
)

type postgresStatementsFactory struct {
}

func NewStatementsFactory() shared.SQLStatementsFactory {
	return &postgresStatementsFactory{}
}

func (s *postgresStatementsFactory) GetTablesSchema() string {
	return TABLES_SCHEMA
}

// Placeholder returns $1, $2, ... since PostgreSQL placeholders are 1-based
func (s *postgresStatementsFactory) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (s *postgresStatementsFactory) FormatTime(t time.Time) any {
	return t.UTC()
}

func (s *postgresStatementsFactory) formatDateTime(t *api.DateTime) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return s.FormatTime(t.Time)
}

func (s *postgresStatementsFactory) dayExpression(column string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
}

func (s *postgresStatementsFactory) CreateResultAddStatement(result *api.Result) (string, []any) {
	return INSERT_RESULT_STATEMENT, []any{result.ProjectID, result.SuiteID, result.SuiteName, result.Strike, result.SendMsgCount, result.ReceiveMsgCount, int(result.Status), s.formatDateTime(result.CreateTime), s.formatDateTime(result.EndTime)}
}

func (s *postgresStatementsFactory) CreateResultGetStatement(id int) (string, []any) {
	return SELECT_RESULT_STATEMENT, []any{id}
}

func (s *postgresStatementsFactory) CreateResultListStatement(conditions []shared.Condition, limit, offset int) (string, []any) {
	return shared.CreateListStatement("results", shared.RESULT_COLUMNS, conditions, limit, offset, s.Placeholder)
}

func (s *postgresStatementsFactory) CreateResultCountStatement(conditions []shared.Condition) (string, []any) {
	return shared.CreateCountStatement("results", conditions, s.Placeholder)
}

func (s *postgresStatementsFactory) CreateResultIncrementReceiveStatement(id int) (string, []any) {
	return INCREMENT_RECEIVE_COUNT, []any{id}
}

func (s *postgresStatementsFactory) CreateResultFinishStatement(id int, status api.ResultStatus, endTime time.Time) (string, []any) {
	return FINISH_RESULT_STATEMENT, []any{int(status), s.FormatTime(endTime), id}
}

func (s *postgresStatementsFactory) CreateResultsDeleteStatement(ids []int) (string, []any) {
	return shared.CreateDeleteInStatement("results", "id", ids, s.Placeholder)
}

func (s *postgresStatementsFactory) CreateResultsDeleteBeforeStatement(before time.Time) (string, []any) {
	return DELETE_RESULTS_BEFORE, []any{s.FormatTime(before)}
}

func (s *postgresStatementsFactory) CreateDetailAddStatement(detail *api.ResultDetail) (string, []any) {
	return INSERT_DETAIL_STATEMENT, []any{detail.ResultID, detail.CaseID, detail.CaseName, detail.Type, int(detail.Status), detail.UdID, detail.Des, detail.Log, s.formatDateTime(detail.Time)}
}

func (s *postgresStatementsFactory) CreateDetailsDeleteStatement(resultIDs []int) (string, []any) {
	return shared.CreateDeleteInStatement("result_details", "result_id", resultIDs, s.Placeholder)
}

func (s *postgresStatementsFactory) CreateDetailsDeleteBeforeStatement(before time.Time) (string, []any) {
	return DELETE_DETAILS_BEFORE, []any{s.FormatTime(before)}
}

func (s *postgresStatementsFactory) CreateCaseStatusStatement(resultID int) (string, []any) {
	return shared.CreateCaseStatusStatement(resultID, s.Placeholder)
}

func (s *postgresStatementsFactory) CreateWorstStatusStatement(resultID int) (string, []any) {
	return shared.CreateWorstStatusStatement(resultID, s.Placeholder)
}

func (s *postgresStatementsFactory) CreateStatusCountStatement(filter abstractions.StatisticsFilter, groupBy abstractions.StatisticsGroup) (string, []any, error) {
	return shared.CreateStatusCountStatement(filter, groupBy, s.Placeholder, s.dayExpression, s.FormatTime)
}

func (s *postgresStatementsFactory) CreateProjectUpsertStatement(project *api.Project) (string, []any) {
	return UPSERT_PROJECT_STATEMENT, []any{project.ID, project.ProjectName, project.RobotType, project.RobotToken, project.RobotSecret}
}

func (s *postgresStatementsFactory) CreateProjectGetStatement(id int) (string, []any) {
	return SELECT_PROJECT_STATEMENT, []any{id}
}

func (s *postgresStatementsFactory) CreateProjectListStatement() string {
	return LIST_PROJECTS_STATEMENT
}
