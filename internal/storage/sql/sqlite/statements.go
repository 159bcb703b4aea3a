package sqlite

import (
	"fmt"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/storage/sql/shared"
	"github.com/results-hub/results-hub/pkg/api"
)

const (
	INSERT_RESULT_STATEMENT  = `INSERT INTO results (project_id, suite_id, suite_name, strike, send_msg_count, receive_msg_count, status, create_time, end_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id;`
	SELECT_RESULT_STATEMENT  = `SELECT ` + shared.RESULT_COLUMNS + ` FROM results WHERE id = ?;`
	INCREMENT_RECEIVE_COUNT  = `UPDATE results SET receive_msg_count = receive_msg_count + 1 WHERE id = ?;`
	FINISH_RESULT_STATEMENT  = `UPDATE results SET status = ?, end_time = ? WHERE id = ? AND status = 0;`
	DELETE_RESULTS_BEFORE    = `DELETE FROM results WHERE create_time < ?;`
	INSERT_DETAIL_STATEMENT  = `INSERT INTO result_details (` + shared.DETAIL_COLUMNS + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id;`
	DELETE_DETAILS_BEFORE    = `DELETE FROM result_details WHERE result_id IN (SELECT id FROM results WHERE create_time < ?);`
	UPSERT_PROJECT_STATEMENT = `INSERT INTO projects (` + shared.PROJECT_COLUMNS + `) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET project_name = excluded.project_name, robot_type = excluded.robot_type, robot_token = excluded.robot_token, robot_secret = excluded.robot_secret;`
	SELECT_PROJECT_STATEMENT = `SELECT ` + shared.PROJECT_COLUMNS + ` FROM projects WHERE id = ?;`
	LIST_PROJECTS_STATEMENT  = `SELECT ` + shared.PROJECT_COLUMNS + ` FROM projects ORDER BY id;`

	// times are stored as text in DateTimeLayout so that they compare lexically
	TABLES_SCHEMA = `
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    suite_id INTEGER NOT NULL DEFAULT 0,
    suite_name TEXT NOT NULL DEFAULT '',
    strike TEXT NOT NULL DEFAULT '',
    send_msg_count INTEGER NOT NULL DEFAULT 0,
    receive_msg_count INTEGER NOT NULL DEFAULT 0,
    status INTEGER NOT NULL DEFAULT 0,
    create_time TEXT NOT NULL,
    end_time TEXT
);

CREATE INDEX IF NOT EXISTS idx_results_project_id ON results (project_id);
CREATE INDEX IF NOT EXISTS idx_results_create_time ON results (create_time);

CREATE TABLE IF NOT EXISTS result_details (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    result_id INTEGER NOT NULL,
    case_id INTEGER NOT NULL DEFAULT 0,
    case_name TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    status INTEGER NOT NULL DEFAULT 0,
    ud_id TEXT NOT NULL DEFAULT '',
    des TEXT NOT NULL DEFAULT '',
    log TEXT NOT NULL DEFAULT '',
    detail_time TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_details_result_id ON result_details (result_id);

CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY,
    project_name TEXT NOT NULL,
    robot_type TEXT NOT NULL DEFAULT '',
    robot_token TEXT NOT NULL DEFAULT '',
    robot_secret TEXT NOT NULL DEFAULT ''
);
`
)

type sqliteStatementsFactory struct {
}

func NewStatementsFactory() shared.SQLStatementsFactory {
	return &sqliteStatementsFactory{}
}

func (s *sqliteStatementsFactory) GetTablesSchema() string {
	return TABLES_SCHEMA
}

func (s *sqliteStatementsFactory) Placeholder(_ int) string {
	return "?"
}

func (s *sqliteStatementsFactory) FormatTime(t time.Time) any {
	return t.UTC().Format(api.DateTimeLayout)
}

func (s *sqliteStatementsFactory) formatDateTime(t *api.DateTime) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return s.FormatTime(t.Time)
}

func (s *sqliteStatementsFactory) dayExpression(column string) string {
	return fmt.Sprintf("substr(%s, 1, 10)", column)
}

func (s *sqliteStatementsFactory) CreateResultAddStatement(result *api.Result) (string, []any) {
	return INSERT_RESULT_STATEMENT, []any{result.ProjectID, result.SuiteID, result.SuiteName, result.Strike, result.SendMsgCount, result.ReceiveMsgCount, int(result.Status), s.formatDateTime(result.CreateTime), s.formatDateTime(result.EndTime)}
}

func (s *sqliteStatementsFactory) CreateResultGetStatement(id int) (string, []any) {
	return SELECT_RESULT_STATEMENT, []any{id}
}

func (s *sqliteStatementsFactory) CreateResultListStatement(conditions []shared.Condition, limit, offset int) (string, []any) {
	return shared.CreateListStatement("results", shared.RESULT_COLUMNS, conditions, limit, offset, s.Placeholder)
}

func (s *sqliteStatementsFactory) CreateResultCountStatement(conditions []shared.Condition) (string, []any) {
	return shared.CreateCountStatement("results", conditions, s.Placeholder)
}

func (s *sqliteStatementsFactory) CreateResultIncrementReceiveStatement(id int) (string, []any) {
	return INCREMENT_RECEIVE_COUNT, []any{id}
}

func (s *sqliteStatementsFactory) CreateResultFinishStatement(id int, status api.ResultStatus, endTime time.Time) (string, []any) {
	return FINISH_RESULT_STATEMENT, []any{int(status), s.FormatTime(endTime), id}
}

func (s *sqliteStatementsFactory) CreateResultsDeleteStatement(ids []int) (string, []any) {
	return shared.CreateDeleteInStatement("results", "id", ids, s.Placeholder)
}

func (s *sqliteStatementsFactory) CreateResultsDeleteBeforeStatement(before time.Time) (string, []any) {
	return DELETE_RESULTS_BEFORE, []any{s.FormatTime(before)}
}

func (s *sqliteStatementsFactory) CreateDetailAddStatement(detail *api.ResultDetail) (string, []any) {
	return INSERT_DETAIL_STATEMENT, []any{detail.ResultID, detail.CaseID, detail.CaseName, detail.Type, int(detail.Status), detail.UdID, detail.Des, detail.Log, s.formatDateTime(detail.Time)}
}

func (s *sqliteStatementsFactory) CreateDetailsDeleteStatement(resultIDs []int) (string, []any) {
	return shared.CreateDeleteInStatement("result_details", "result_id", resultIDs, s.Placeholder)
}

func (s *sqliteStatementsFactory) CreateDetailsDeleteBeforeStatement(before time.Time) (string, []any) {
	return DELETE_DETAILS_BEFORE, []any{s.FormatTime(before)}
}

func (s *sqliteStatementsFactory) CreateCaseStatusStatement(resultID int) (string, []any) {
	return shared.CreateCaseStatusStatement(resultID, s.Placeholder)
}

func (s *sqliteStatementsFactory) CreateWorstStatusStatement(resultID int) (string, []any) {
	return shared.CreateWorstStatusStatement(resultID, s.Placeholder)
}

func (s *sqliteStatementsFactory) CreateStatusCountStatement(filter abstractions.StatisticsFilter, groupBy abstractions.StatisticsGroup) (string, []any, error) {
	return shared.CreateStatusCountStatement(filter, groupBy, s.Placeholder, s.dayExpression, s.FormatTime)
}

func (s *sqliteStatementsFactory) CreateProjectUpsertStatement(project *api.Project) (string, []any) {
	return UPSERT_PROJECT_STATEMENT, []any{project.ID, project.ProjectName, project.RobotType, project.RobotToken, project.RobotSecret}
}

func (s *sqliteStatementsFactory) CreateProjectGetStatement(id int) (string, []any) {
	return SELECT_PROJECT_STATEMENT, []any{id}
}

func (s *sqliteStatementsFactory) CreateProjectListStatement() string {
	return LIST_PROJECTS_STATEMENT
}
