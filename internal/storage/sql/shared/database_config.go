package shared

import (
	"net/url"
	"strings"
	"time"
)

type SQLDatabaseConfig struct {
	Driver          string         `mapstructure:"driver"`
	URL             string         `mapstructure:"url"`
	User            string         `mapstructure:"user,omitempty"`
	Password        string         `mapstructure:"password,omitempty"`
	ConnMaxLifetime *time.Duration `mapstructure:"conn_max_lifetime,omitempty"`
	MaxIdleConns    *int           `mapstructure:"max_idle_conns,omitempty"`
	MaxOpenConns    *int           `mapstructure:"max_open_conns,omitempty"`
}

func (s *SQLDatabaseConfig) GetDriverName() string {
	return s.Driver
}

// GetDataSourceName returns the URL with the separately configured user and
// password applied when the URL does not carry credentials.
func (s *SQLDatabaseConfig) GetDataSourceName() string {
	if s.Password == "" || !strings.Contains(s.URL, "://") {
		return s.URL
	}
	parsed, err := url.Parse(s.URL)
	if err != nil {
		return s.URL
	}
	if parsed.User != nil {
		if _, ok := parsed.User.Password(); ok {
			return s.URL
		}
	}
	user := s.User
	if user == "" && parsed.User != nil {
		user = parsed.User.Username()
	}
	parsed.User = url.UserPassword(user, s.Password)
	return parsed.String()
}

// GetConnectionURL returns the URL without the password.
func (s *SQLDatabaseConfig) GetConnectionURL() string {
	parsed, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	if parsed.User != nil {
		parsed.User = url.User(parsed.User.Username())
	}
	return parsed.String()
}

func (s *SQLDatabaseConfig) GetDatabaseName() string {
	parsed, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	if parsed.Opaque != "" {
		// sqlite file:name?query URLs
		return parsed.Opaque
	}
	return strings.TrimPrefix(parsed.Path, "/")
}
