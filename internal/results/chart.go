package results

import (
	"math"
	"sort"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/constants"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/pkg/api"
)

// Chart aggregates the results of a project created between the start and
// end time of the query.
func (s *Service) Chart(query *api.ChartQuery) (*api.ChartData, error) {
	if err := s.validateStruct(query); err != nil {
		return nil, err
	}
	if days := query.Days(); days > constants.MAX_CHART_DAYS {
		return nil, serviceerrors.NewServiceError(messages.ChartRangeTooWide, "Days", days, "MaxDays", constants.MAX_CHART_DAYS)
	}

	filter := abstractions.StatisticsFilter{
		ProjectID: query.ProjectID,
		From:      query.StartTime.UTC(),
		To:        query.EndTime.UTC(),
	}

	dayCounts, err := s.storage.GetStatusCounts(filter, abstractions.GroupByDay)
	if err != nil {
		return nil, err
	}

	dates := chartDates(filter.From, filter.To)
	data := &api.ChartData{
		CountType: query.CountType,
		Dates:     dates,
		Pass:      passRates(dates, dayCounts),
		Status:    statusTotals(dayCounts),
	}

	switch query.CountType {
	case api.CountTypeTestCase:
		cases, err := s.storage.GetStatusCounts(filter, abstractions.GroupByCase)
		if err != nil {
			return nil, err
		}
		devices, err := s.storage.GetStatusCounts(filter, abstractions.GroupByDevice)
		if err != nil {
			return nil, err
		}
		data.Cases = groupCounts(cases)
		data.Devices = groupCounts(devices)
	default:
		suites, err := s.storage.GetStatusCounts(filter, abstractions.GroupBySuite)
		if err != nil {
			return nil, err
		}
		data.Suites = groupCounts(suites)
	}

	return data, nil
}

// chartDates lists every calendar day from the day of from to the day of to.
func chartDates(from time.Time, to time.Time) []string {
	dates := make([]string, 0)
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(to) {
		dates = append(dates, day.Format(api.DateLayout))
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// passRates computes the share, in percent, of the finished results of each
// day that passed. Running results are not counted.
func passRates(dates []string, counts []abstractions.GroupedStatusCount) []api.PassRate {
	byDate := make(map[string]*api.PassRate, len(dates))
	rates := make([]api.PassRate, len(dates))
	for i, date := range dates {
		rates[i].Date = date
		byDate[date] = &rates[i]
	}
	for _, count := range counts {
		rate, ok := byDate[count.Group]
		if !ok || count.Status == api.ResultStatusRunning {
			continue
		}
		rate.Total += count.Count
		if count.Status == api.ResultStatusPass {
			rate.Passed += count.Count
		}
	}
	for i := range rates {
		if rates[i].Total > 0 {
			rates[i].Rate = math.Round(float64(rates[i].Passed)*10000/float64(rates[i].Total)) / 100
		}
	}
	return rates
}

func statusTotals(counts []abstractions.GroupedStatusCount) []api.StatusCount {
	totals := map[api.ResultStatus]int{}
	for _, count := range counts {
		totals[count.Status] += count.Count
	}
	statuses := []api.ResultStatus{api.ResultStatusRunning, api.ResultStatusPass, api.ResultStatusWarn, api.ResultStatusFail}
	result := make([]api.StatusCount, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, api.StatusCount{Status: status, Count: totals[status]})
	}
	return result
}

// groupCounts folds the per status rows into one entry per group, the
// groups with the most failures first.
func groupCounts(counts []abstractions.GroupedStatusCount) []api.GroupStatusCount {
	type key struct {
		id   int
		name string
	}
	index := map[key]int{}
	groups := make([]api.GroupStatusCount, 0)
	for _, count := range counts {
		k := key{id: count.GroupID, name: count.Group}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, api.GroupStatusCount{ID: count.GroupID, Name: count.Group})
		}
		group := &groups[i]
		switch count.Status {
		case api.ResultStatusPass:
			group.Pass += count.Count
		case api.ResultStatusWarn:
			group.Warn += count.Count
		case api.ResultStatusFail:
			group.Fail += count.Count
		}
		group.Total += count.Count
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Fail != groups[j].Fail {
			return groups[i].Fail > groups[j].Fail
		}
		return groups[i].Total > groups[j].Total
	})
	return groups
}
