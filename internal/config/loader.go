package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// CONFIG_PATH names a config file that is merged over the bundled config
	ENV_CONFIG_PATH = "CONFIG_PATH"

	configName     = "config"
	optionalSecret = ":optional"
	redactedValue  = "[redacted]"
)

// the lookup paths used when no config directory is given
var defaultConfigDirs = []string{"config", "../config", "../../config", "/etc/results-hub"}

// environment variables that override single config keys
var envBindings = map[string]string{
	"service.port":       "PORT",
	"database.driver":    "DATABASE_DRIVER",
	"database.url":       "DATABASE_URL",
	"reports.enabled":    "REPORTS_ENABLED",
	"prometheus.enabled": "PROMETHEUS_ENABLED",
	"otel.enabled":       "OTEL_ENABLED",
}

// fields that are redacted when the config is logged
var redactedFields = []string{"database.url", "database.password", "secrets.dir"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.port", 8080)
	v.SetDefault("service.read_timeout", 30*time.Second)
	v.SetDefault("service.write_timeout", 60*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file::memory:?mode=memory&cache=shared")
	v.SetDefault("reports.day_cron", "0 10 * * *")
	v.SetDefault("reports.week_cron", "0 10 * * 1")
	v.SetDefault("reports.clean_cron", "0 2 * * *")
	v.SetDefault("reports.workers", 2)
	v.SetDefault("reports.queue_size", 16)
	v.SetDefault("reports.task_timeout", 2*time.Minute)
	v.SetDefault("reports.webhook.timeout", 10*time.Second)
	v.SetDefault("reports.webhook.max_retries", 3)
	v.SetDefault("reports.webhook.base_delay", 200*time.Millisecond)
	v.SetDefault("reports.webhook.max_delay", 5*time.Second)
}

// LoadConfig reads config.yaml from configDir (or the default lookup paths),
// merges the file named by CONFIG_PATH over it, applies the secrets mappings
// and the environment overrides.
func LoadConfig(logger *slog.Logger, version string, build string, buildDate string, configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	for _, dir := range configDirs(configDir) {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.Warn("No config file found, using the default config", "dirs", strings.Join(configDirs(configDir), ","))
	} else {
		logger.Info("Loaded config file", "file", v.ConfigFileUsed())
	}

	secrets := &SecretsConfig{}
	if err := v.UnmarshalKey("secrets", secrets); err != nil {
		return nil, fmt.Errorf("failed to decode secrets config: %w", err)
	}

	if path := os.Getenv(ENV_CONFIG_PATH); path != "" {
		overlay := viper.New()
		overlay.SetConfigFile(path)
		if err := overlay.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s config %s: %w", ENV_CONFIG_PATH, path, err)
		}
		if err := v.MergeConfigMap(overlay.AllSettings()); err != nil {
			return nil, fmt.Errorf("failed to merge %s config %s: %w", ENV_CONFIG_PATH, path, err)
		}
		// the overlay replaces the secret mappings instead of merging them
		if overlay.IsSet("secrets") {
			secrets = &SecretsConfig{}
			if err := overlay.UnmarshalKey("secrets", secrets); err != nil {
				return nil, fmt.Errorf("failed to decode secrets config: %w", err)
			}
		}
		logger.Info("Merged config file", "file", path)
	}

	if err := applySecrets(v, secrets); err != nil {
		return nil, err
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s to %s: %w", env, key, err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	conf.Secrets = secrets
	if conf.Service == nil {
		conf.Service = &ServiceConfig{}
	}
	conf.Service.Version = version
	conf.Service.Build = build
	conf.Service.BuildDate = buildDate

	if conf.Service.WatchConfig && v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Warn("Config file changed, restart the service to apply the changes", "file", e.Name, "op", e.Op.String())
		})
		v.WatchConfig()
	}

	logger.Info("Service config", "config", RedactedJSON(conf, redactedFields))

	return conf, nil
}

func configDirs(configDir string) []string {
	if configDir != "" {
		return []string{configDir}
	}
	return defaultConfigDirs
}

func applySecrets(v *viper.Viper, secrets *SecretsConfig) error {
	if secrets == nil || len(secrets.Mappings) == 0 {
		return nil
	}
	for name, key := range secrets.Mappings {
		optional := strings.HasSuffix(name, optionalSecret)
		fileName := strings.TrimSuffix(name, optionalSecret)
		content, err := os.ReadFile(filepath.Join(secrets.Dir, fileName))
		if err != nil {
			if optional && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read secret %s for %s: %w", fileName, key, err)
		}
		v.Set(key, strings.TrimSpace(string(content)))
	}
	return nil
}
