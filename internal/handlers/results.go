package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/constants"
	"github.com/results-hub/results-hub/internal/executioncontext"
	"github.com/results-hub/results-hub/internal/http_wrappers"
	"github.com/results-hub/results-hub/internal/logging"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serialization"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/pkg/api"
)

const component = "results"

func (h *Handlers) resultsService(ctx *executioncontext.ExecutionContext) abstractions.ResultsService {
	return h.service.WithLogger(ctx.Logger).WithContext(ctx.Ctx)
}

// HandleListResults handles GET /results/list
func (h *Handlers) HandleListResults(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	query, err := listQuery(r)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}

	var page *api.Page[api.Result]
	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		page, err = h.resultsService(ctx.WithContext(spanCtx)).FindByProjectID(query)
		return err
	}, component, "find-by-project-id", "project.id", strconv.Itoa(query.ProjectID))
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	w.WriteResp(api.SearchOK, page)
}

func listQuery(r http_wrappers.RequestWrapper) (*api.QueryParam, error) {
	projectID, err := GetParam(r, constants.QUERY_PARAMETER_PROJECT_ID, false, 0)
	if err != nil {
		return nil, err
	}
	page, err := GetParam(r, constants.QUERY_PARAMETER_PAGE, false, 0)
	if err != nil {
		return nil, err
	}
	pageSize, err := GetParam(r, constants.QUERY_PARAMETER_PAGE_SIZE, false, 0)
	if err != nil {
		return nil, err
	}
	suiteName, err := GetParam(r, constants.QUERY_PARAMETER_SUITE_NAME, true, "")
	if err != nil {
		return nil, err
	}
	strike, err := GetParam(r, constants.QUERY_PARAMETER_STRIKE, true, "")
	if err != nil {
		return nil, err
	}
	status, err := GetOptionalIntParam(r, constants.QUERY_PARAMETER_STATUS)
	if err != nil {
		return nil, err
	}
	startTime, err := GetDateTimeParam(r, constants.QUERY_PARAMETER_START_TIME, true)
	if err != nil {
		return nil, err
	}
	endTime, err := GetDateTimeParam(r, constants.QUERY_PARAMETER_END_TIME, true)
	if err != nil {
		return nil, err
	}

	query := &api.QueryParam{
		ProjectID: projectID,
		Page:      page,
		PageSize:  pageSize,
		SuiteName: suiteName,
		Strike:    strike,
		Status:    status,
	}
	if startTime != nil || endTime != nil {
		query.StartTime = []*time.Time{startTime, endTime}
	}
	return query, nil
}

// HandleGetResult handles GET /results
func (h *Handlers) HandleGetResult(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	id, err := GetParam(r, constants.QUERY_PARAMETER_ID, false, 0)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}

	var result *api.Result
	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		result, err = h.resultsService(ctx.WithContext(spanCtx)).FindByID(id)
		return err
	}, component, "find-by-id", "result.id", strconv.Itoa(id))
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	if result == nil {
		w.WriteResp(api.IDNotFound, nil)
		return
	}
	w.WriteResp(api.SearchOK, result)
}

// HandleDeleteResult handles DELETE /results
func (h *Handlers) HandleDeleteResult(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	id, err := GetParam(r, constants.QUERY_PARAMETER_ID, false, 0)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}

	var deleted bool
	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		deleted, err = h.resultsService(ctx.WithContext(spanCtx)).Delete(id)
		return err
	}, component, "delete", "result.id", strconv.Itoa(id))
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	if !deleted {
		w.WriteResp(api.IDNotFound, nil)
		return
	}
	w.WriteResp(api.DeleteOK, nil)
}

// HandleBatchesDelete handles POST /results/batchesDelete
func (h *Handlers) HandleBatchesDelete(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	body, err := r.BodyAsBytes()
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	request := &api.BatchesDelete{}
	if err := serialization.Unmarshal(h.validate, ctx, body, request); err != nil {
		w.Error(err, ctx.RequestID)
		return
	}

	var deleted bool
	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		deleted, err = h.resultsService(ctx.WithContext(spanCtx)).BatchesDelete(request.IDs)
		return err
	}, component, "batches-delete", "result.count", strconv.Itoa(len(request.IDs)))
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	if !deleted {
		w.WriteResp(api.IDNotFound, nil)
		return
	}
	w.WriteResp(api.DeleteOK, nil)
}

// HandleClean handles GET /results/clean
func (h *Handlers) HandleClean(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	day, err := GetParam(r, constants.QUERY_PARAMETER_DAY, false, 0)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}

	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		deleted, err := h.resultsService(ctx.WithContext(spanCtx)).Clean(day)
		if err == nil {
			ctx.Logger.Info("Cleaned results", "day", day, "deleted", deleted)
		}
		return err
	}, component, "clean", "day", strconv.Itoa(day))
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	w.WriteResp(api.ResultClean, nil)
}

// HandleSubResultCount handles GET /results/subResultCount
func (h *Handlers) HandleSubResultCount(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	id, err := GetParam(r, constants.QUERY_PARAMETER_ID, false, 0)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}

	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		return h.resultsService(ctx.WithContext(spanCtx)).SubResultCount(id)
	}, component, "sub-result-count", "result.id", strconv.Itoa(id))
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	w.WriteResp(api.HandleOK, nil)
}

// HandleFindCaseStatus handles GET /results/findCaseStatus
func (h *Handlers) HandleFindCaseStatus(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	id, err := GetParam(r, constants.QUERY_PARAMETER_ID, false, 0)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}

	var statuses []api.CaseStatus
	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		statuses, err = h.resultsService(ctx.WithContext(spanCtx)).FindCaseStatus(id)
		return err
	}, component, "find-case-status", "result.id", strconv.Itoa(id))
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	if statuses == nil {
		w.WriteResp(api.IDNotFound, nil)
		return
	}
	w.WriteResp(api.SearchOK, statuses)
}

// HandleChart handles GET /results/chart. A testCase chart wider than
// MAX_TEST_CASE_CHART_DAYS whole days is refused before any aggregation,
// as is any chart wider than MAX_CHART_DAYS.
func (h *Handlers) HandleChart(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	query, err := chartQuery(r)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	if query.CountType == api.CountTypeTestCase && query.Days() > constants.MAX_TEST_CASE_CHART_DAYS {
		w.WriteResp(api.TestCountFail, nil)
		return
	}
	if days := query.Days(); days > constants.MAX_CHART_DAYS {
		w.Error(serviceerrors.NewServiceError(messages.ChartRangeTooWide, "Days", days, "MaxDays", constants.MAX_CHART_DAYS), ctx.RequestID)
		return
	}

	var data *api.ChartData
	err = h.withSpan(ctx, func(spanCtx context.Context) error {
		data, err = h.resultsService(ctx.WithContext(spanCtx)).Chart(query)
		return err
	}, component, "chart", "project.id", strconv.Itoa(query.ProjectID), "count.type", query.CountType)
	if err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	w.WriteResp(api.SearchOK, data)
}

func chartQuery(r http_wrappers.RequestWrapper) (*api.ChartQuery, error) {
	projectID, err := GetParam(r, constants.QUERY_PARAMETER_PROJECT_ID, false, 0)
	if err != nil {
		return nil, err
	}
	startTime, err := GetDateTimeParam(r, constants.QUERY_PARAMETER_START_TIME, false)
	if err != nil {
		return nil, err
	}
	endTime, err := GetDateTimeParam(r, constants.QUERY_PARAMETER_END_TIME, false)
	if err != nil {
		return nil, err
	}
	countType, err := GetParam(r, constants.QUERY_PARAMETER_COUNT_TYPE, false, "")
	if err != nil {
		return nil, err
	}
	return &api.ChartQuery{
		ProjectID: projectID,
		StartTime: *startTime,
		EndTime:   *endTime,
		CountType: countType,
	}, nil
}

// HandleSendDayReport handles GET /results/sendDayReport
func (h *Handlers) HandleSendDayReport(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	if err := h.resultsService(ctx).SendDayReport(); err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	w.WriteResp(api.HandleOK, nil)
}

// HandleSendWeekReport handles GET /results/sendWeekReport
func (h *Handlers) HandleSendWeekReport(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	if err := h.resultsService(ctx).SendWeekReport(); err != nil {
		w.Error(err, ctx.RequestID)
		return
	}
	w.WriteResp(api.HandleOK, nil)
}
