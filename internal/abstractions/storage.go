package abstractions

import (
	"context"
	"log/slog"
	"time"

	"github.com/results-hub/results-hub/pkg/api"
)

type QueryResults[T any] struct {
	Items       []T
	TotalStored int
	Errors      []string
}

// QueryFilter carries the paging window and the named filter values of a list query.
// Unset values are the empty string or nil and are ignored by the storage.
type QueryFilter struct {
	Limit  int
	Offset int
	Params map[string]any
}

// The filter names accepted by GetResults
const (
	FilterProjectID = "project_id"
	FilterSuiteName = "suite_name"
	FilterStrike    = "strike"
	FilterStatus    = "status"
	FilterFrom      = "from"
	FilterTo        = "to"
)

// StatisticsGroup names the dimension that status counts are grouped by.
type StatisticsGroup string

const (
	GroupByDay     StatisticsGroup = "day"
	GroupBySuite   StatisticsGroup = "suite"
	GroupByProject StatisticsGroup = "project"
	GroupByCase    StatisticsGroup = "case"
	GroupByDevice  StatisticsGroup = "device"
)

// StatisticsFilter restricts status counts to the results of a project created
// in [From, To]. A zero ProjectID selects every project.
type StatisticsFilter struct {
	ProjectID int
	From      time.Time
	To        time.Time
}

type GroupedStatusCount struct {
	Group   string
	GroupID int
	Status  api.ResultStatus
	Count   int
}

type ServiceError interface {
	error
	ShouldRollback() bool
}

type Storage interface {
	WithLogger(logger *slog.Logger) Storage
	WithContext(ctx context.Context) Storage

	Ping(timeout time.Duration) error
	GetDriverName() string
	GetConnectionURL() string

	// Result operations
	CreateResult(result *api.Result) error
	GetResult(id int) (*api.Result, error)
	GetResults(filter QueryFilter) (*QueryResults[api.Result], error)
	IncrementReceiveMsgCount(id int) (*api.Result, error)
	FinishResult(id int, status api.ResultStatus, endTime time.Time) (bool, error)
	// DeleteResults deletes the results and their details in one transaction
	// and returns the number of results deleted
	DeleteResults(ids []int) (int, error)
	DeleteResultsBefore(before time.Time) (int, error)

	// Result detail operations
	CreateResultDetail(detail *api.ResultDetail) error
	GetCaseStatuses(resultID int) ([]api.CaseStatus, error)
	GetWorstDetailStatus(resultID int) (api.ResultStatus, error)

	// Statistics
	GetStatusCounts(filter StatisticsFilter, groupBy StatisticsGroup) ([]GroupedStatusCount, error)

	// Project operations
	SaveProject(project *api.Project) error
	GetProject(id int) (*api.Project, error)
	GetProjects() ([]api.Project, error)

	// Close the storage connection
	Close() error
}

// This interface must be decoupled from the service HTTP layer.
// Do not pass ExecutionContext, Request or Response wrappers either.
