package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/Jeffail/gabs/v2"
)

// RedactedJSON renders v as JSON with the given dotted field paths redacted.
// URLs that carry a password keep the user and host, other values are
// replaced. Paths that do not exist are ignored.
func RedactedJSON(v any, fields []string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	if len(fields) == 0 {
		return string(data)
	}
	container, err := gabs.ParseJSON(data)
	if err != nil {
		return string(data)
	}
	for _, field := range fields {
		if !container.ExistsP(field) {
			continue
		}
		value := container.Path(field).Data()
		if _, err := container.SetP(redact(value), field); err != nil {
			return "{}"
		}
	}
	return container.String()
}

func redact(value any) any {
	s, ok := value.(string)
	if !ok {
		return redactedValue
	}
	if s == "" {
		return s
	}
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.User(u.User.Username())
			return u.String()
		}
		return s
	}
	return redactedValue
}

// RedactedFields returns the config paths hidden when the config is logged.
func RedactedFields() []string {
	return slices.Clone(redactedFields)
}
