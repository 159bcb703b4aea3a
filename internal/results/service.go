package results

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/constants"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/pkg/api"
)

type Service struct {
	storage   abstractions.Storage
	validate  *validator.Validate
	submitter abstractions.TaskSubmitter
	reporter  abstractions.Reporter
	logger    *slog.Logger
	ctx       context.Context
	now       func() time.Time
}

func NewService(storage abstractions.Storage, validate *validator.Validate, submitter abstractions.TaskSubmitter, reporter abstractions.Reporter, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		validate:  validate,
		submitter: submitter,
		reporter:  reporter,
		logger:    logger,
		ctx:       context.Background(),
		now:       time.Now,
	}
}

func (s *Service) copy() *Service {
	c := *s
	return &c
}

func (s *Service) WithLogger(logger *slog.Logger) abstractions.ResultsService {
	c := s.copy()
	c.logger = logger
	c.storage = s.storage.WithLogger(logger)
	return c
}

func (s *Service) WithContext(ctx context.Context) abstractions.ResultsService {
	c := s.copy()
	c.ctx = ctx
	c.storage = s.storage.WithContext(ctx)
	return c
}

func (s *Service) validateStruct(v any) error {
	if s.validate == nil {
		return nil
	}
	if err := s.validate.Struct(v); err != nil {
		return serviceerrors.NewServiceError(messages.RequestValidationFailed, "Error", err.Error())
	}
	return nil
}

func (s *Service) FindByProjectID(query *api.QueryParam) (*api.Page[api.Result], error) {
	if err := s.validateStruct(query); err != nil {
		return nil, err
	}

	params := map[string]any{
		abstractions.FilterProjectID: query.ProjectID,
		abstractions.FilterSuiteName: query.SuiteName,
		abstractions.FilterStrike:    query.Strike,
	}
	if query.Status != nil {
		params[abstractions.FilterStatus] = *query.Status
	}
	if from := query.From(); from != nil {
		params[abstractions.FilterFrom] = *from
	}
	if to := query.To(); to != nil {
		params[abstractions.FilterTo] = *to
	}

	results, err := s.storage.GetResults(abstractions.QueryFilter{
		Limit:  query.PageSize,
		Offset: (query.Page - 1) * query.PageSize,
		Params: params,
	})
	if err != nil {
		return nil, err
	}
	return api.NewPage(results.Items, query.Page, query.PageSize, results.TotalStored), nil
}

func (s *Service) FindByID(id int) (*api.Result, error) {
	return s.storage.GetResult(id)
}

func (s *Service) Delete(id int) (bool, error) {
	deleted, err := s.storage.DeleteResults([]int{id})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// BatchesDelete deletes every listed result in one transaction. It reports
// false when none of a non-empty list of ids existed.
func (s *Service) BatchesDelete(ids []int) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	deleted, err := s.storage.DeleteResults(ids)
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// Clean deletes the results created more than day days ago.
func (s *Service) Clean(day int) (int, error) {
	if day <= 0 {
		s.logger.Info("Skipping clean, no retention given", "day", day)
		return 0, nil
	}
	before := s.now().UTC().AddDate(0, 0, -day)
	return s.storage.DeleteResultsBefore(before)
}

// SubResultCount records one received sub-result. The result that receives
// its last sub-result is finished with the worst status of its details and
// a finished report is submitted.
func (s *Service) SubResultCount(id int) error {
	result, err := s.storage.IncrementReceiveMsgCount(id)
	if err != nil {
		return err
	}
	if result == nil {
		s.logger.Warn("Sub-result received for a missing result", "id", id)
		return nil
	}
	if !result.IsFinished() {
		return nil
	}

	status, err := s.storage.GetWorstDetailStatus(id)
	if err != nil {
		return err
	}
	if status == api.ResultStatusRunning {
		status = api.ResultStatusPass
	}
	endTime := s.now().UTC()
	finished, err := s.storage.FinishResult(id, status, endTime)
	if err != nil {
		return err
	}
	if !finished {
		return nil
	}

	result.Status = status
	result.EndTime = api.NewDateTime(endTime)
	s.logger.Info("Result finished", "id", id, "status", status.String())
	s.submit(constants.REPORT_FINISHED, func(ctx context.Context) error {
		return s.reporter.SendFinishedReport(ctx, result)
	})
	return nil
}

// FindCaseStatus returns nil when the result does not exist.
func (s *Service) FindCaseStatus(id int) ([]api.CaseStatus, error) {
	result, err := s.storage.GetResult(id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return s.storage.GetCaseStatuses(id)
}

func (s *Service) SendDayReport() error {
	to := s.now().UTC()
	return s.sendPeriodReport(constants.REPORT_DAY, to.AddDate(0, 0, -1), to)
}

func (s *Service) SendWeekReport() error {
	to := s.now().UTC()
	return s.sendPeriodReport(constants.REPORT_WEEK, to.AddDate(0, 0, -7), to)
}

func (s *Service) sendPeriodReport(kind string, from time.Time, to time.Time) error {
	s.logger.Info("Submitting report", "kind", kind, "from", from.Format(api.DateTimeLayout), "to", to.Format(api.DateTimeLayout))
	s.submit(kind, func(ctx context.Context) error {
		return s.reporter.SendPeriodReport(ctx, kind, from, to)
	})
	return nil
}

// submit hands the task to the dispatcher. A rejected task is logged and
// never reported to the caller.
func (s *Service) submit(kind string, task abstractions.Task) {
	if s.submitter == nil || s.reporter == nil {
		s.logger.Warn("Reports are not configured, dropping report", "kind", kind)
		return
	}
	if !s.submitter.Submit(kind, task) {
		err := serviceerrors.NewServiceError(messages.ReportDispatchFailed, "Type", kind, "Error", "the report queue is full or closed")
		s.logger.Warn("Dropping report", "kind", kind, "error", err.Error())
	}
}
