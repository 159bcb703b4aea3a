package server

import (
	"log/slog"
	"os"

	"github.com/results-hub/results-hub/internal/config"
)

const defaultTerminationFile = "/dev/termination-log"

// GetTerminationFile returns the file that receives the start up failure
// message. It falls back to the Kubernetes default.
func GetTerminationFile(conf *config.Config, logger *slog.Logger) string {
	if conf != nil && conf.Service != nil && conf.Service.TerminationFile != "" {
		return conf.Service.TerminationFile
	}
	logger.Warn("No termination file configured", "default", defaultTerminationFile)
	return defaultTerminationFile
}

func SetTerminationMessage(file string, message string, logger *slog.Logger) error {
	if file == "" {
		return nil
	}
	if err := os.WriteFile(file, []byte(message), 0644); err != nil {
		return err
	}
	logger.Info("Termination message written", "file", file)
	return nil
}
