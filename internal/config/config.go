package config

import "time"

type Config struct {
	Service    *ServiceConfig    `mapstructure:"service" json:"service,omitempty"`
	Database   *map[string]any   `mapstructure:"database" json:"database,omitempty"`
	OTEL       *OTELConfig       `mapstructure:"otel,omitempty" json:"otel,omitempty"`
	Prometheus *PrometheusConfig `mapstructure:"prometheus,omitempty" json:"prometheus,omitempty"`
	Reports    *ReportsConfig    `mapstructure:"reports,omitempty" json:"reports,omitempty"`
	Secrets    *SecretsConfig    `mapstructure:"secrets,omitempty" json:"secrets,omitempty"`
}

type ServiceConfig struct {
	Version         string        `mapstructure:"-" json:"version"`
	Build           string        `mapstructure:"-" json:"build"`
	BuildDate       string        `mapstructure:"-" json:"build_date"`
	Port            int           `mapstructure:"port" json:"port"`
	ReadyFile       string        `mapstructure:"ready_file" json:"ready_file,omitempty"`
	TerminationFile string        `mapstructure:"termination_file" json:"termination_file,omitempty"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout,omitempty"`
	WatchConfig     bool          `mapstructure:"watch_config" json:"watch_config,omitempty"`
	LocalMode       bool          `mapstructure:"local_mode" json:"local_mode,omitempty"`
}

type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// ReportsConfig controls the scheduled jobs and the delivery of reports.
// An empty cron expression disables the corresponding job.
type ReportsConfig struct {
	Enabled     bool          `mapstructure:"enabled" json:"enabled"`
	DayCron     string        `mapstructure:"day_cron" json:"day_cron,omitempty"`
	WeekCron    string        `mapstructure:"week_cron" json:"week_cron,omitempty"`
	CleanCron   string        `mapstructure:"clean_cron" json:"clean_cron,omitempty"`
	KeepDays    int           `mapstructure:"keep_days" json:"keep_days,omitempty"`
	Workers     int           `mapstructure:"workers" json:"workers,omitempty"`
	QueueSize   int           `mapstructure:"queue_size" json:"queue_size,omitempty"`
	TaskTimeout time.Duration `mapstructure:"task_timeout" json:"task_timeout,omitempty"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url,omitempty"`
	Webhook     WebhookConfig `mapstructure:"webhook" json:"webhook"`
}

type WebhookConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout,omitempty"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries,omitempty"`
	BaseDelay  time.Duration `mapstructure:"base_delay" json:"base_delay,omitempty"`
	MaxDelay   time.Duration `mapstructure:"max_delay" json:"max_delay,omitempty"`
}

// SecretsConfig maps files in Dir to configuration keys. A file name with
// the ":optional" suffix is skipped when the file does not exist.
type SecretsConfig struct {
	Dir      string            `mapstructure:"dir" json:"dir,omitempty"`
	Mappings map[string]string `mapstructure:"mappings" json:"mappings,omitempty"`
}

func (c *Config) IsOTELEnabled() bool {
	return (c != nil) && (c.OTEL != nil) && c.OTEL.Enabled
}

func (c *Config) IsPrometheusEnabled() bool {
	return (c != nil) && (c.Prometheus != nil) && c.Prometheus.Enabled
}

func (c *Config) IsReportsEnabled() bool {
	return (c != nil) && (c.Reports != nil) && c.Reports.Enabled
}
