package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/results-hub/results-hub/cmd/results_hub/server"
	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/config"
	"github.com/results-hub/results-hub/internal/logging"
	"github.com/results-hub/results-hub/internal/otel"
	"github.com/results-hub/results-hub/internal/reports"
	"github.com/results-hub/results-hub/internal/results"
	"github.com/results-hub/results-hub/internal/storage"
	"github.com/results-hub/results-hub/internal/validation"
	"github.com/results-hub/results-hub/pkg/api"
	flag "github.com/spf13/pflag"
)

var (
	// Version can be set during the compilation
	Version string = "0.0.1"
	// Build is set during the compilation
	Build string
	// BuildDate is set during the compilation
	BuildDate string
)

type Args struct {
	ConfigDir string
}

func args() Args {
	dir := flag.String("configdir", "", "Directory to search for configuration files.")
	flag.Parse()
	configDir := *dir
	if configDir == "" {
		configDir = os.Getenv("RESULTS_HUB_CONFIG_DIR")
	}
	return Args{ConfigDir: configDir}
}

func main() {
	args := args()

	logger, logShutdown, err := logging.NewLogger()
	if err != nil {
		// we do this as no point trying to continue
		startUpFailed(nil, err, "Failed to create service logger", logging.FallbackLogger())
	}

	serviceConfig, err := config.LoadConfig(logger, Version, Build, BuildDate, args.ConfigDir)
	if err != nil {
		startUpFailed(nil, err, "Failed to create service config", logger)
	}

	validate, err := validation.NewValidator()
	if err != nil {
		startUpFailed(serviceConfig, err, "Failed to create validator", logger)
	}

	store, err := storage.NewStorage(serviceConfig.Database, serviceConfig.IsOTELEnabled(), logger)
	if err != nil {
		startUpFailed(serviceConfig, err, "Failed to create storage", logger)
	}

	projects, err := config.LoadProjectConfigs(logger, args.ConfigDir)
	if err != nil {
		startUpFailed(serviceConfig, err, "Failed to load project configs", logger)
	}
	if err := syncProjects(store, projects); err != nil {
		startUpFailed(serviceConfig, err, "Failed to store project configs", logger)
	}

	otelShutdown, err := otel.SetupOTEL(context.Background(), serviceConfig.OTEL, serviceConfig.Service.Version, logger)
	if err != nil {
		startUpFailed(serviceConfig, err, "Failed to setup OTEL", logger)
	}

	// report delivery
	reportsConfig := serviceConfig.Reports
	if reportsConfig == nil {
		reportsConfig = &config.ReportsConfig{}
	}
	dispatcher := reports.NewDispatcher(reportsConfig, logger)
	httpClient := reports.NewHTTPClient(reportsConfig.Webhook)
	notifiers := reports.NewNotifiers(reports.NewLogNotifier(logger)).
		Register(api.RobotTypeSlack, reports.NewSlackNotifier(httpClient)).
		Register(api.RobotTypeWebhook, reports.NewWebhookNotifier(httpClient))
	reporter := reports.NewReporter(store, notifiers, reportsConfig.BaseURL, logger)

	service := results.NewService(store, validate, dispatcher, reporter, logger)

	var scheduler *reports.Scheduler
	if serviceConfig.IsReportsEnabled() {
		scheduler, err = reports.NewScheduler(reportsConfig, service, logger)
		if err != nil {
			startUpFailed(serviceConfig, err, "Failed to create scheduler", logger)
		}
		scheduler.Start()
	}

	srv, err := server.NewServer(logger, serviceConfig, store, validate, service)
	if err != nil {
		startUpFailed(serviceConfig, err, "Failed to create server", logger)
	}

	logger.Info("Server starting",
		"server_port", srv.GetPort(),
		"version", serviceConfig.Service.Version,
		"build", serviceConfig.Service.Build,
		"build_date", serviceConfig.Service.BuildDate,
		"database", store.GetDriverName(),
		"projects", len(projects),
		"reports", serviceConfig.IsReportsEnabled(),
		"otel", serviceConfig.IsOTELEnabled(),
		"prometheus", serviceConfig.IsPrometheusEnabled(),
	)

	go func() {
		if err := srv.Start(); err != nil {
			if errors.Is(err, &server.ServerClosedError{}) {
				logger.Info("Server closed gracefully")
				return
			}
			startUpFailed(serviceConfig, err, "Server failed to start", logger)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	waitForShutdown := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), waitForShutdown)
	defer cancel()

	logger.Info("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err.Error(), "timeout", waitForShutdown)
	}

	if scheduler != nil {
		logger.Info("Shutting down scheduler...")
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Error("Failed to stop scheduler", "error", err.Error())
		}
	}

	// queued reports still need the storage
	logger.Info("Draining report queue...")
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to drain report queue", "error", err.Error())
	}

	logger.Info("Shutting down storage...")
	if err := store.Close(); err != nil {
		logger.Error("Failed to close storage", "error", err.Error())
	}

	if otelShutdown != nil {
		logger.Info("Shutting down OTEL...")
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown OTEL", "error", err.Error())
		}
	}

	logger.Info("Server shutdown complete")
	_ = logShutdown() // ignore the error
}

// syncProjects stores the project files so that reports can join on them.
func syncProjects(store abstractions.Storage, projects map[int]api.Project) error {
	for _, project := range projects {
		if err := store.SaveProject(&project); err != nil {
			return err
		}
	}
	return nil
}

func startUpFailed(conf *config.Config, err error, msg string, logger *slog.Logger) {
	termErr := server.SetTerminationMessage(server.GetTerminationFile(conf, logger), fmt.Sprintf("%s: %s", msg, err.Error()), logger)
	if termErr != nil {
		logger.Error("Failed to set termination message", "message", msg, "error", termErr.Error())
		log.Println(termErr.Error())
	}
	log.Fatal(err)
}
