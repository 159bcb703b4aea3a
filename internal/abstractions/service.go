package abstractions

import (
	"context"
	"log/slog"
	"time"

	"github.com/results-hub/results-hub/pkg/api"
)

// ResultsService owns the results of test suite runs. The not-found outcomes
// are returned as nil or false values and never as errors.
type ResultsService interface {
	WithLogger(logger *slog.Logger) ResultsService
	WithContext(ctx context.Context) ResultsService

	FindByProjectID(query *api.QueryParam) (*api.Page[api.Result], error)
	FindByID(id int) (*api.Result, error)
	Delete(id int) (bool, error)
	BatchesDelete(ids []int) (bool, error)
	Clean(day int) (int, error)
	SubResultCount(id int) error
	FindCaseStatus(id int) ([]api.CaseStatus, error)
	Chart(query *api.ChartQuery) (*api.ChartData, error)
	SendDayReport() error
	SendWeekReport() error
}

// Task is a unit of background work with its own context.
type Task func(ctx context.Context) error

// TaskSubmitter runs tasks asynchronously. Submit never blocks; it reports
// whether the task was accepted.
type TaskSubmitter interface {
	Submit(name string, task Task) bool
}

// Reporter builds the report messages and delivers them to the robots of
// the projects.
type Reporter interface {
	// SendPeriodReport sends one summary per project of the results created in [from, to]
	SendPeriodReport(ctx context.Context, kind string, from time.Time, to time.Time) error
	SendFinishedReport(ctx context.Context, result *api.Result) error
}
