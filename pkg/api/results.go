package api

import "time"

// ResultStatus is the outcome of a test suite run or of one of its cases.
// Higher values are worse, so the status of a run is the maximum of its details.
type ResultStatus int

const (
	ResultStatusRunning ResultStatus = 0
	ResultStatusPass    ResultStatus = 1
	ResultStatusWarn    ResultStatus = 2
	ResultStatusFail    ResultStatus = 3
)

func (s ResultStatus) String() string {
	switch s {
	case ResultStatusRunning:
		return "running"
	case ResultStatusPass:
		return "pass"
	case ResultStatusWarn:
		return "warn"
	case ResultStatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Detail types
const (
	DetailTypeStatus = "status"
	DetailTypeStep   = "step"
	DetailTypeLog    = "log"
)

// Chart count types
const (
	CountTypeTestSuit = "testSuit"
	CountTypeTestCase = "testCase"
)

// Result is the persisted outcome of one test suite execution.
type Result struct {
	ID              int          `json:"id"`
	ProjectID       int          `json:"projectId" validate:"gt=0"`
	SuiteID         int          `json:"suiteId"`
	SuiteName       string       `json:"suiteName" validate:"required"`
	Strike          string       `json:"strike"`
	SendMsgCount    int          `json:"sendMsgCount" validate:"gte=0"`
	ReceiveMsgCount int          `json:"receiveMsgCount" validate:"gte=0"`
	Status          ResultStatus `json:"status" validate:"gte=0,lte=3"`
	CreateTime      *DateTime    `json:"createTime,omitempty"`
	EndTime         *DateTime    `json:"endTime,omitempty"`
}

// IsFinished reports whether every expected sub-result has been received.
func (r *Result) IsFinished() bool {
	return r.SendMsgCount > 0 && r.ReceiveMsgCount >= r.SendMsgCount
}

// ResultDetail is a sub-result of a Result, reported per case, step or log line.
type ResultDetail struct {
	ID       int          `json:"id"`
	ResultID int          `json:"resultId" validate:"gt=0"`
	CaseID   int          `json:"caseId"`
	CaseName string       `json:"caseName"`
	Type     string       `json:"type" validate:"oneof=status step log"`
	Status   ResultStatus `json:"status" validate:"gte=0,lte=3"`
	UdID     string       `json:"udId"`
	Des      string       `json:"des"`
	Log      string       `json:"log"`
	Time     *DateTime    `json:"time,omitempty"`
}

// CaseStatus is the per-case view of a Result returned by findCaseStatus.
type CaseStatus struct {
	CaseID    int          `json:"caseId"`
	CaseName  string       `json:"caseName"`
	Status    ResultStatus `json:"status"`
	StartTime *DateTime    `json:"startTime,omitempty"`
	EndTime   *DateTime    `json:"endTime,omitempty"`
	TotalTime int64        `json:"totalTime"`
}

// QueryParam is the request-scoped filter used to list the results of a project.
type QueryParam struct {
	ProjectID int    `json:"projectId" validate:"gt=0"`
	Page      int    `json:"page" validate:"gt=0,lte=2147483647"`
	PageSize  int    `json:"pageSize" validate:"gt=0,lte=1000"`
	SuiteName string `json:"suiteName,omitempty"`
	Strike    string `json:"strike,omitempty"`
	Status    *int   `json:"status,omitempty" validate:"omitempty,gte=0,lte=3"`
	// StartTime holds the lower and upper bound on the create time, either may be nil
	StartTime []*time.Time `json:"startTime,omitempty" validate:"max=2"`
}

// From returns the lower bound on the create time, if any.
func (q *QueryParam) From() *time.Time {
	if len(q.StartTime) > 0 {
		return q.StartTime[0]
	}
	return nil
}

// To returns the upper bound on the create time, if any.
func (q *QueryParam) To() *time.Time {
	if len(q.StartTime) > 1 {
		return q.StartTime[1]
	}
	return nil
}

// BatchesDelete is the body of POST /results/batchesDelete.
type BatchesDelete struct {
	IDs []int `json:"ids" validate:"dive,gt=0"`
}
