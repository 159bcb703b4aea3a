package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/constants"
	"github.com/results-hub/results-hub/pkg/api"
	"golang.org/x/sync/errgroup"
)

// the number of projects notified at the same time
const maxParallelNotifications = 4

// Reporter builds the report messages from the stored results and hands
// them to the notifier of each project.
type Reporter struct {
	storage   abstractions.Storage
	notifiers *Notifiers
	baseURL   string
	logger    *slog.Logger
}

func NewReporter(storage abstractions.Storage, notifiers *Notifiers, baseURL string, logger *slog.Logger) *Reporter {
	return &Reporter{
		storage:   storage,
		notifiers: notifiers,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger.With("component", "reporter"),
	}
}

// SendPeriodReport sends one summary per project with a robot. Projects
// without results in the period are skipped. Delivery failures are joined,
// a failing project does not stop the others.
func (r *Reporter) SendPeriodReport(ctx context.Context, kind string, from time.Time, to time.Time) error {
	store := r.storage.WithContext(ctx)
	projects, err := store.GetProjects()
	if err != nil {
		return err
	}
	counts, err := store.GetStatusCounts(abstractions.StatisticsFilter{From: from, To: to}, abstractions.GroupByProject)
	if err != nil {
		return err
	}
	byProject := map[int]map[api.ResultStatus]int{}
	for _, count := range counts {
		if byProject[count.GroupID] == nil {
			byProject[count.GroupID] = map[api.ResultStatus]int{}
		}
		byProject[count.GroupID][count.Status] += count.Count
	}

	errs := make([]error, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelNotifications)
	for i := range projects {
		project := &projects[i]
		statuses, ok := byProject[project.ID]
		if !ok || !project.HasRobot() {
			continue
		}
		g.Go(func() error {
			errs[i] = r.notify(gctx, project, periodMessage(kind, project, statuses, from, to, r.projectLink(project.ID)))
			return nil
		})
	}
	_ = g.Wait()
	r.logger.Info("Period report sent", "kind", kind, "projects", len(byProject))
	return errors.Join(errs...)
}

// SendFinishedReport notifies the project of a finished result.
func (r *Reporter) SendFinishedReport(ctx context.Context, result *api.Result) error {
	project, err := r.storage.WithContext(ctx).GetProject(result.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		r.logger.Info("No project for the finished result", "id", result.ID, "project_id", result.ProjectID)
		return nil
	}
	return r.notify(ctx, project, finishedMessage(project, result, r.resultLink(result)))
}

func (r *Reporter) notify(ctx context.Context, project *api.Project, message *Message) error {
	notifier, err := r.notifiers.For(project)
	if err != nil {
		return err
	}
	if err := notifier.Notify(ctx, project, message); err != nil {
		r.logger.Error("Failed to deliver report", "project_id", project.ID, "robot_type", project.RobotType, "error", err.Error())
		return fmt.Errorf("project %d: %w", project.ID, err)
	}
	return nil
}

func (r *Reporter) projectLink(projectID int) string {
	if r.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/Home/%d", r.baseURL, projectID)
}

func (r *Reporter) resultLink(result *api.Result) string {
	if r.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/Home/%d/ResultDetail/%d", r.baseURL, result.ProjectID, result.ID)
}

func periodMessage(kind string, project *api.Project, statuses map[api.ResultStatus]int, from time.Time, to time.Time, link string) *Message {
	title := "Daily report"
	if kind == constants.REPORT_WEEK {
		title = "Weekly report"
	}
	finished := statuses[api.ResultStatusPass] + statuses[api.ResultStatusWarn] + statuses[api.ResultStatusFail]
	rate := 0.0
	if finished > 0 {
		rate = float64(statuses[api.ResultStatusPass]) * 100 / float64(finished)
	}
	status := api.ResultStatusPass
	switch {
	case statuses[api.ResultStatusFail] > 0:
		status = api.ResultStatusFail
	case statuses[api.ResultStatusWarn] > 0:
		status = api.ResultStatusWarn
	}
	return &Message{
		Title:  fmt.Sprintf("%s: %s", title, project.ProjectName),
		Text:   fmt.Sprintf("%s to %s", from.UTC().Format(api.DateTimeLayout), to.UTC().Format(api.DateTimeLayout)),
		Status: status.String(),
		Link:   link,
		Fields: []Field{
			{Name: "pass", Value: strconv.Itoa(statuses[api.ResultStatusPass])},
			{Name: "warn", Value: strconv.Itoa(statuses[api.ResultStatusWarn])},
			{Name: "fail", Value: strconv.Itoa(statuses[api.ResultStatusFail])},
			{Name: "running", Value: strconv.Itoa(statuses[api.ResultStatusRunning])},
			{Name: "pass rate", Value: fmt.Sprintf("%.2f%%", rate)},
		},
	}
}

func finishedMessage(project *api.Project, result *api.Result, link string) *Message {
	fields := []Field{
		{Name: "suite", Value: result.SuiteName},
		{Name: "status", Value: result.Status.String()},
	}
	if result.Strike != "" {
		fields = append(fields, Field{Name: "strike", Value: result.Strike})
	}
	if result.CreateTime != nil && result.EndTime != nil {
		fields = append(fields, Field{Name: "duration", Value: result.EndTime.Sub(result.CreateTime.Time).Round(time.Second).String()})
	}
	return &Message{
		Title:  fmt.Sprintf("%s: %s finished", project.ProjectName, result.SuiteName),
		Text:   fmt.Sprintf("Result %d finished with status %s", result.ID, result.Status.String()),
		Status: result.Status.String(),
		Link:   link,
		Fields: fields,
	}
}
