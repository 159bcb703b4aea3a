package results

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/constants"
	"github.com/results-hub/results-hub/internal/logging"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/internal/storage"
	"github.com/results-hub/results-hub/internal/validation"
	"github.com/results-hub/results-hub/pkg/api"
)

// inlineSubmitter runs every task synchronously and records its name.
type inlineSubmitter struct {
	mu     sync.Mutex
	names  []string
	reject bool
}

func (s *inlineSubmitter) Submit(name string, task abstractions.Task) bool {
	if s.reject {
		return false
	}
	s.mu.Lock()
	s.names = append(s.names, name)
	s.mu.Unlock()
	_ = task(context.Background())
	return true
}

type periodReport struct {
	kind string
	from time.Time
	to   time.Time
}

type recordingReporter struct {
	periods  []periodReport
	finished []*api.Result
}

func (r *recordingReporter) SendPeriodReport(_ context.Context, kind string, from time.Time, to time.Time) error {
	r.periods = append(r.periods, periodReport{kind: kind, from: from, to: to})
	return nil
}

func (r *recordingReporter) SendFinishedReport(_ context.Context, result *api.Result) error {
	r.finished = append(r.finished, result)
	return nil
}

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, abstractions.Storage, *inlineSubmitter, *recordingReporter) {
	t.Helper()
	logger := logging.FallbackLogger()
	databaseConfig := map[string]any{
		"driver": "sqlite",
		"url":    fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	store, err := storage.NewStorage(&databaseConfig, false, logger)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	validate, err := validation.NewValidator()
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	submitter := &inlineSubmitter{}
	reporter := &recordingReporter{}
	service := NewService(store, validate, submitter, reporter, logger)
	service.now = func() time.Time { return fixedNow }
	return service, store, submitter, reporter
}

func at(s string) *api.DateTime {
	t, err := api.ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return api.NewDateTime(t)
}

func createResult(t *testing.T, store abstractions.Storage, result *api.Result) *api.Result {
	t.Helper()
	if err := store.CreateResult(result); err != nil {
		t.Fatalf("Failed to create result: %v", err)
	}
	return result
}

func createDetail(t *testing.T, store abstractions.Storage, detail *api.ResultDetail) {
	t.Helper()
	if err := store.CreateResultDetail(detail); err != nil {
		t.Fatalf("Failed to create result detail: %v", err)
	}
}

func TestFindByProjectID(t *testing.T) {
	service, store, _, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		createResult(t, store, &api.Result{ProjectID: 1, SuiteName: fmt.Sprintf("suite-%d", i), Strike: "alice", CreateTime: at(fmt.Sprintf("2024-01-0%d 10:00:00", i+1))})
	}
	createResult(t, store, &api.Result{ProjectID: 2, SuiteName: "other", CreateTime: at("2024-01-01 10:00:00")})

	t.Run("pages are numbered from 1", func(t *testing.T) {
		page, err := service.FindByProjectID(&api.QueryParam{ProjectID: 1, Page: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("FindByProjectID failed: %v", err)
		}
		if page.TotalElements != 5 || page.TotalPages != 3 || page.Number != 2 {
			t.Fatalf("Unexpected page metadata %+v", page)
		}
		if len(page.Content) != 2 || page.Content[0].SuiteName != "suite-2" {
			t.Fatalf("Unexpected page content %+v", page.Content)
		}
	})

	t.Run("a page whose offset overflows is rejected", func(t *testing.T) {
		page := math.MaxInt / 10
		page += 2
		if _, err := service.FindByProjectID(&api.QueryParam{ProjectID: 1, Page: page, PageSize: 10}); err == nil {
			t.Fatalf("Expected page %d to be rejected", page)
		}
	})

	t.Run("filters by suite name and time range", func(t *testing.T) {
		from := at("2024-01-02 00:00:00").Time
		to := at("2024-01-03 23:59:59").Time
		page, err := service.FindByProjectID(&api.QueryParam{ProjectID: 1, Page: 1, PageSize: 10, StartTime: []*time.Time{&from, &to}})
		if err != nil {
			t.Fatalf("FindByProjectID failed: %v", err)
		}
		if page.TotalElements != 2 {
			t.Fatalf("Expected 2 results in range, got %d", page.TotalElements)
		}

		page, err = service.FindByProjectID(&api.QueryParam{ProjectID: 1, Page: 1, PageSize: 10, SuiteName: "suite-4"})
		if err != nil {
			t.Fatalf("FindByProjectID failed: %v", err)
		}
		if page.TotalElements != 1 {
			t.Fatalf("Expected 1 result for suite-4, got %d", page.TotalElements)
		}
	})

	t.Run("a page past the end is empty", func(t *testing.T) {
		page, err := service.FindByProjectID(&api.QueryParam{ProjectID: 1, Page: 9, PageSize: 10})
		if err != nil {
			t.Fatalf("FindByProjectID failed: %v", err)
		}
		if page.Content == nil || len(page.Content) != 0 || page.TotalElements != 5 {
			t.Fatalf("Expected an empty page with the total, got %+v", page)
		}
	})

	t.Run("invalid paging is rejected", func(t *testing.T) {
		if _, err := service.FindByProjectID(&api.QueryParam{ProjectID: 1, Page: 0, PageSize: 10}); err == nil {
			t.Fatalf("Expected a validation error for page 0")
		}
		if _, err := service.FindByProjectID(&api.QueryParam{ProjectID: 0, Page: 1, PageSize: 10}); err == nil {
			t.Fatalf("Expected a validation error for project 0")
		}
	})
}

func TestDelete(t *testing.T) {
	service, store, _, _ := newTestService(t)
	first := createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "a"})
	second := createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "b"})
	third := createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "c"})
	createDetail(t, store, &api.ResultDetail{ResultID: first.ID, CaseID: 1, CaseName: "login", Type: api.DetailTypeStatus, Status: api.ResultStatusPass})

	t.Run("Delete removes an existing result", func(t *testing.T) {
		deleted, err := service.Delete(first.ID)
		if err != nil || !deleted {
			t.Fatalf("Expected the result to be deleted, got %v %v", deleted, err)
		}
		result, err := service.FindByID(first.ID)
		if err != nil || result != nil {
			t.Fatalf("Expected the result to be gone, got %+v %v", result, err)
		}
	})

	t.Run("Delete of a missing result reports false", func(t *testing.T) {
		deleted, err := service.Delete(999999)
		if err != nil || deleted {
			t.Fatalf("Expected false without an error, got %v %v", deleted, err)
		}
	})

	t.Run("BatchesDelete of an empty list succeeds", func(t *testing.T) {
		deleted, err := service.BatchesDelete(nil)
		if err != nil || !deleted {
			t.Fatalf("Expected true without an error, got %v %v", deleted, err)
		}
	})

	t.Run("BatchesDelete removes every listed result", func(t *testing.T) {
		deleted, err := service.BatchesDelete([]int{second.ID, third.ID, third.ID})
		if err != nil || !deleted {
			t.Fatalf("Expected the results to be deleted, got %v %v", deleted, err)
		}
		deleted, err = service.BatchesDelete([]int{second.ID})
		if err != nil || deleted {
			t.Fatalf("Expected false for already deleted ids, got %v %v", deleted, err)
		}
	})
}

func TestClean(t *testing.T) {
	service, store, _, _ := newTestService(t)
	createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "old", CreateTime: at("2023-12-01 10:00:00")})
	createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "recent", CreateTime: at("2024-01-09 10:00:00")})

	t.Run("zero days is a no-op", func(t *testing.T) {
		deleted, err := service.Clean(0)
		if err != nil || deleted != 0 {
			t.Fatalf("Expected nothing deleted, got %d %v", deleted, err)
		}
	})

	t.Run("deletes results older than the retention", func(t *testing.T) {
		deleted, err := service.Clean(30)
		if err != nil {
			t.Fatalf("Clean failed: %v", err)
		}
		if deleted != 1 {
			t.Fatalf("Expected 1 result deleted, got %d", deleted)
		}
		page, err := service.FindByProjectID(&api.QueryParam{ProjectID: 1, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("FindByProjectID failed: %v", err)
		}
		if page.TotalElements != 1 || page.Content[0].SuiteName != "recent" {
			t.Fatalf("Expected only the recent result, got %+v", page.Content)
		}
	})
}

func TestSubResultCount(t *testing.T) {
	t.Run("the last sub-result finishes the result", func(t *testing.T) {
		service, store, submitter, reporter := newTestService(t)
		result := createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "smoke", SendMsgCount: 2})
		createDetail(t, store, &api.ResultDetail{ResultID: result.ID, CaseID: 1, Type: api.DetailTypeStatus, Status: api.ResultStatusPass})
		createDetail(t, store, &api.ResultDetail{ResultID: result.ID, CaseID: 2, Type: api.DetailTypeStatus, Status: api.ResultStatusWarn})

		if err := service.SubResultCount(result.ID); err != nil {
			t.Fatalf("SubResultCount failed: %v", err)
		}
		stored, _ := service.FindByID(result.ID)
		if stored.Status != api.ResultStatusRunning || stored.ReceiveMsgCount != 1 {
			t.Fatalf("Expected a running result with 1 received, got %+v", stored)
		}

		if err := service.SubResultCount(result.ID); err != nil {
			t.Fatalf("SubResultCount failed: %v", err)
		}
		stored, _ = service.FindByID(result.ID)
		if stored.Status != api.ResultStatusWarn {
			t.Fatalf("Expected status warn, got %s", stored.Status)
		}
		if stored.EndTime == nil || !stored.EndTime.Time.Equal(fixedNow) {
			t.Fatalf("Expected end time %v, got %v", fixedNow, stored.EndTime)
		}
		if len(submitter.names) != 1 || submitter.names[0] != constants.REPORT_FINISHED {
			t.Fatalf("Expected one finished report, got %v", submitter.names)
		}
		if len(reporter.finished) != 1 || reporter.finished[0].ID != result.ID {
			t.Fatalf("Expected the finished report for %d, got %+v", result.ID, reporter.finished)
		}

		// further sub-results never finish the result twice
		if err := service.SubResultCount(result.ID); err != nil {
			t.Fatalf("SubResultCount failed: %v", err)
		}
		if len(reporter.finished) != 1 {
			t.Fatalf("Expected a single finished report, got %d", len(reporter.finished))
		}
	})

	t.Run("a result without status details passes", func(t *testing.T) {
		service, store, _, _ := newTestService(t)
		result := createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "smoke", SendMsgCount: 1})
		createDetail(t, store, &api.ResultDetail{ResultID: result.ID, Type: api.DetailTypeLog, Log: "started"})
		if err := service.SubResultCount(result.ID); err != nil {
			t.Fatalf("SubResultCount failed: %v", err)
		}
		stored, _ := service.FindByID(result.ID)
		if stored.Status != api.ResultStatusPass {
			t.Fatalf("Expected status pass, got %s", stored.Status)
		}
	})

	t.Run("a missing result is ignored", func(t *testing.T) {
		service, _, submitter, _ := newTestService(t)
		if err := service.SubResultCount(424242); err != nil {
			t.Fatalf("Expected no error for a missing result, got %v", err)
		}
		if len(submitter.names) != 0 {
			t.Fatalf("Expected no report, got %v", submitter.names)
		}
	})

	t.Run("a full queue does not fail the request", func(t *testing.T) {
		service, store, submitter, reporter := newTestService(t)
		submitter.reject = true
		result := createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "smoke", SendMsgCount: 1})
		if err := service.SubResultCount(result.ID); err != nil {
			t.Fatalf("SubResultCount failed: %v", err)
		}
		if len(reporter.finished) != 0 {
			t.Fatalf("Expected the report to be dropped")
		}
	})
}

func TestFindCaseStatus(t *testing.T) {
	service, store, _, _ := newTestService(t)
	result := createResult(t, store, &api.Result{ProjectID: 1, SuiteName: "smoke"})
	createDetail(t, store, &api.ResultDetail{ResultID: result.ID, CaseID: 1, CaseName: "login", Type: api.DetailTypeStatus, Status: api.ResultStatusPass, Time: at("2024-01-02 10:00:00")})
	createDetail(t, store, &api.ResultDetail{ResultID: result.ID, CaseID: 1, CaseName: "login", Type: api.DetailTypeStatus, Status: api.ResultStatusFail, Time: at("2024-01-02 10:00:05")})

	statuses, err := service.FindCaseStatus(result.ID)
	if err != nil {
		t.Fatalf("FindCaseStatus failed: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("Expected one case, got %d", len(statuses))
	}
	if statuses[0].Status != api.ResultStatusFail || statuses[0].TotalTime != 5000 {
		t.Fatalf("Unexpected case status %+v", statuses[0])
	}

	statuses, err = service.FindCaseStatus(999999)
	if err != nil || statuses != nil {
		t.Fatalf("Expected nil for a missing result, got %+v %v", statuses, err)
	}
}

func TestChart(t *testing.T) {
	service, store, _, _ := newTestService(t)
	createResult(t, store, &api.Result{ProjectID: 1, SuiteID: 1, SuiteName: "smoke", Status: api.ResultStatusPass, CreateTime: at("2024-01-01 10:00:00")})
	createResult(t, store, &api.Result{ProjectID: 1, SuiteID: 1, SuiteName: "smoke", Status: api.ResultStatusFail, CreateTime: at("2024-01-01 11:00:00")})
	createResult(t, store, &api.Result{ProjectID: 1, SuiteID: 2, SuiteName: "nightly", Status: api.ResultStatusPass, CreateTime: at("2024-01-02 10:00:00")})
	running := createResult(t, store, &api.Result{ProjectID: 1, SuiteID: 2, SuiteName: "nightly", CreateTime: at("2024-01-03 10:00:00")})
	createResult(t, store, &api.Result{ProjectID: 2, SuiteID: 3, SuiteName: "elsewhere", Status: api.ResultStatusFail, CreateTime: at("2024-01-02 10:00:00")})
	createDetail(t, store, &api.ResultDetail{ResultID: running.ID, CaseID: 7, CaseName: "login", UdID: "device-1", Type: api.DetailTypeStatus, Status: api.ResultStatusFail})

	t.Run("testSuit", func(t *testing.T) {
		data, err := service.Chart(&api.ChartQuery{
			ProjectID: 1,
			StartTime: at("2024-01-01 00:00:00").Time,
			EndTime:   at("2024-01-03 23:59:59").Time,
			CountType: api.CountTypeTestSuit,
		})
		if err != nil {
			t.Fatalf("Chart failed: %v", err)
		}
		if strings.Join(data.Dates, ",") != "2024-01-01,2024-01-02,2024-01-03" {
			t.Fatalf("Unexpected dates %v", data.Dates)
		}
		if data.Pass[0].Rate != 50 || data.Pass[1].Rate != 100 || data.Pass[2].Rate != 0 {
			t.Fatalf("Unexpected pass rates %+v", data.Pass)
		}
		if data.Pass[2].Total != 0 {
			t.Fatalf("Running results must not count towards the pass rate, got %+v", data.Pass[2])
		}
		counts := map[api.ResultStatus]int{}
		for _, status := range data.Status {
			counts[status.Status] = status.Count
		}
		if counts[api.ResultStatusPass] != 2 || counts[api.ResultStatusFail] != 1 || counts[api.ResultStatusRunning] != 1 {
			t.Fatalf("Unexpected status totals %+v", data.Status)
		}
		if len(data.Suites) != 2 || data.Suites[0].Name != "smoke" || data.Suites[0].Fail != 1 {
			t.Fatalf("Unexpected suites %+v", data.Suites)
		}
		if data.Cases != nil || data.Devices != nil {
			t.Fatalf("testSuit charts carry no case or device counts")
		}
	})

	t.Run("testCase", func(t *testing.T) {
		data, err := service.Chart(&api.ChartQuery{
			ProjectID: 1,
			StartTime: at("2024-01-01 00:00:00").Time,
			EndTime:   at("2024-01-03 23:59:59").Time,
			CountType: api.CountTypeTestCase,
		})
		if err != nil {
			t.Fatalf("Chart failed: %v", err)
		}
		if len(data.Cases) != 1 || data.Cases[0].Name != "login" || data.Cases[0].Fail != 1 {
			t.Fatalf("Unexpected cases %+v", data.Cases)
		}
		if len(data.Devices) != 1 || data.Devices[0].Name != "device-1" {
			t.Fatalf("Unexpected devices %+v", data.Devices)
		}
	})

	t.Run("a range wider than a year is rejected", func(t *testing.T) {
		_, err := service.Chart(&api.ChartQuery{
			ProjectID: 1,
			StartTime: time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC),
			EndTime:   time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
			CountType: api.CountTypeTestSuit,
		})
		var se *serviceerrors.ServiceError
		if !errors.As(err, &se) || se.MessageCode() != messages.ChartRangeTooWide {
			t.Fatalf("Expected a chart range error, got %v", err)
		}
	})

	t.Run("a whole year is accepted", func(t *testing.T) {
		data, err := service.Chart(&api.ChartQuery{
			ProjectID: 1,
			StartTime: at("2024-01-01 00:00:00").Time,
			EndTime:   at("2024-12-31 23:59:59").Time,
			CountType: api.CountTypeTestSuit,
		})
		if err != nil {
			t.Fatalf("Chart failed: %v", err)
		}
		if len(data.Dates) != 366 || len(data.Pass) != 366 {
			t.Fatalf("Expected 366 dates, got %d", len(data.Dates))
		}
	})

	t.Run("an inverted range is rejected", func(t *testing.T) {
		_, err := service.Chart(&api.ChartQuery{
			ProjectID: 1,
			StartTime: at("2024-01-03 00:00:00").Time,
			EndTime:   at("2024-01-01 00:00:00").Time,
			CountType: api.CountTypeTestSuit,
		})
		if err == nil {
			t.Fatalf("Expected a validation error")
		}
	})
}

func TestReports(t *testing.T) {
	service, _, submitter, reporter := newTestService(t)

	if err := service.SendDayReport(); err != nil {
		t.Fatalf("SendDayReport failed: %v", err)
	}
	if err := service.SendWeekReport(); err != nil {
		t.Fatalf("SendWeekReport failed: %v", err)
	}
	if strings.Join(submitter.names, ",") != "day,week" {
		t.Fatalf("Unexpected submitted reports %v", submitter.names)
	}
	if !reporter.periods[0].from.Equal(fixedNow.AddDate(0, 0, -1)) || !reporter.periods[0].to.Equal(fixedNow) {
		t.Fatalf("Unexpected day report window %+v", reporter.periods[0])
	}
	if !reporter.periods[1].from.Equal(fixedNow.AddDate(0, 0, -7)) {
		t.Fatalf("Unexpected week report window %+v", reporter.periods[1])
	}

	t.Run("reports are dropped without a reporter", func(t *testing.T) {
		bare := NewService(service.storage, nil, nil, nil, logging.FallbackLogger())
		if err := bare.SendDayReport(); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})
}
