package api

import "time"

// ChartQuery selects the statistics shown on the project home page.
type ChartQuery struct {
	ProjectID int       `json:"projectId" validate:"gt=0"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtefield=StartTime"`
	CountType string    `json:"countType" validate:"oneof=testSuit testCase"`
}

// Days returns the number of whole days between the start and end time.
func (c *ChartQuery) Days() int {
	return DaysBetween(c.StartTime, c.EndTime)
}

// DaysBetween truncates the distance between two instants to whole days.
func DaysBetween(start time.Time, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}

// StatusCount is the number of results or details with a given status.
type StatusCount struct {
	Status ResultStatus `json:"status"`
	Count  int          `json:"count"`
}

// PassRate is the pass rate of the finished results created on a single day.
type PassRate struct {
	Date   string  `json:"date"`
	Total  int     `json:"total"`
	Passed int     `json:"passed"`
	Rate   float64 `json:"rate"`
}

// GroupStatusCount is a per group (suite, case or device) breakdown of statuses.
type GroupStatusCount struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Pass  int    `json:"pass"`
	Warn  int    `json:"warn"`
	Fail  int    `json:"fail"`
	Total int    `json:"total"`
}

// ChartData is the aggregated statistics returned by GET /results/chart.
type ChartData struct {
	CountType string             `json:"countType"`
	Dates     []string           `json:"date"`
	Pass      []PassRate         `json:"pass"`
	Status    []StatusCount      `json:"status"`
	Suites    []GroupStatusCount `json:"suite,omitempty"`
	Cases     []GroupStatusCount `json:"case,omitempty"`
	Devices   []GroupStatusCount `json:"device,omitempty"`
}
