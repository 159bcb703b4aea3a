package constants

const (
	// API paths
	PATH_RESULTS                  = "/results"
	PATH_RESULTS_LIST             = "/results/list"
	PATH_RESULTS_BATCHES_DELETE   = "/results/batchesDelete"
	PATH_RESULTS_CLEAN            = "/results/clean"
	PATH_RESULTS_SUB_RESULT_COUNT = "/results/subResultCount"
	PATH_RESULTS_FIND_CASE_STATUS = "/results/findCaseStatus"
	PATH_RESULTS_CHART            = "/results/chart"
	PATH_RESULTS_SEND_DAY_REPORT  = "/results/sendDayReport"
	PATH_RESULTS_SEND_WEEK_REPORT = "/results/sendWeekReport"
	PATH_HEALTH                   = "/api/v1/health"
	PATH_METRICS                  = "/metrics"

	// Query parameters
	QUERY_PARAMETER_ID         = "id"
	QUERY_PARAMETER_PROJECT_ID = "projectId"
	QUERY_PARAMETER_PAGE       = "page"
	QUERY_PARAMETER_PAGE_SIZE  = "pageSize"
	QUERY_PARAMETER_SUITE_NAME = "suiteName"
	QUERY_PARAMETER_STRIKE     = "strike"
	QUERY_PARAMETER_STATUS     = "status"
	QUERY_PARAMETER_START_TIME = "startTime"
	QUERY_PARAMETER_END_TIME   = "endTime"
	QUERY_PARAMETER_COUNT_TYPE = "countType"
	QUERY_PARAMETER_DAY        = "day"

	// Headers
	HEADER_REQUEST_ID = "X-Request-Id"

	// The widest range, in days, allowed for a testCase chart
	MAX_TEST_CASE_CHART_DAYS = 7
	// The widest range, in days, allowed for any chart
	MAX_CHART_DAYS = 366

	// Report kinds
	REPORT_DAY      = "day"
	REPORT_WEEK     = "week"
	REPORT_FINISHED = "finished"
)
