package reports

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/config"
	"github.com/robfig/cron/v3"
)

// Scheduler triggers the day and week reports and the retention clean up.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	jobs   map[string]cron.EntryID
}

// NewScheduler registers a job for every non-empty cron expression of conf.
// An invalid expression fails.
func NewScheduler(conf *config.ReportsConfig, service abstractions.ResultsService, logger *slog.Logger) (*Scheduler, error) {
	logger = logger.With("component", "scheduler")
	cronLogger := slogCronLogger{logger: logger}
	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		logger: logger,
		jobs:   map[string]cron.EntryID{},
	}
	if conf == nil {
		return s, nil
	}

	jobs := []struct {
		name string
		spec string
		run  func(abstractions.ResultsService) error
	}{
		{"day-report", conf.DayCron, func(svc abstractions.ResultsService) error { return svc.SendDayReport() }},
		{"week-report", conf.WeekCron, func(svc abstractions.ResultsService) error { return svc.SendWeekReport() }},
		{"clean", conf.CleanCron, func(svc abstractions.ResultsService) error {
			deleted, err := svc.Clean(conf.KeepDays)
			if err == nil {
				logger.Info("Cleaned results", "keep_days", conf.KeepDays, "deleted", deleted)
			}
			return err
		}},
	}
	for _, job := range jobs {
		if job.spec == "" || (job.name == "clean" && conf.KeepDays <= 0) {
			continue
		}
		jobLogger := logger.With("job", job.name)
		id, err := s.cron.AddFunc(job.spec, func() {
			svc := service.WithLogger(jobLogger).WithContext(context.Background())
			if err := job.run(svc); err != nil {
				jobLogger.Error("Scheduled job failed", "error", err.Error())
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q for %s: %w", job.spec, job.name, err)
		}
		s.jobs[job.name] = id
	}
	return s, nil
}

// Jobs returns the sorted names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	return slices.Sorted(maps.Keys(s.jobs))
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler", "jobs", s.Jobs())
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err.Error())...)
}
