package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/results-hub/results-hub/internal/http_wrappers"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/pkg/api"
)

func GetParam[T string | int | bool](r http_wrappers.RequestWrapper, name string, optional bool, defaultValue T) (T, error) {
	values := r.Query(name)
	if (len(values) == 0) || (values[0] == "") {
		if !optional {
			return defaultValue, serviceerrors.NewServiceError(messages.QueryParameterRequired, "ParameterName", name)
		}
		return defaultValue, nil
	}
	switch any(defaultValue).(type) {
	case string:
		return any(values[0]).(T), nil
	case int:
		v, err := strconv.Atoi(values[0])
		if err != nil {
			return defaultValue, serviceerrors.NewServiceError(messages.QueryParameterInvalid, "ParameterName", name, "Type", "integer", "Value", values[0])
		}
		return any(v).(T), nil
	case bool:
		v, err := strconv.ParseBool(values[0])
		if err != nil {
			return defaultValue, serviceerrors.NewServiceError(messages.QueryParameterInvalid, "ParameterName", name, "Type", "boolean", "Value", values[0])
		}
		return any(v).(T), nil
	default:
		// should never get here
		return any(fmt.Sprintf("%v", values[0])).(T), nil
	}
}

// GetOptionalIntParam returns nil when the parameter is absent.
func GetOptionalIntParam(r http_wrappers.RequestWrapper, name string) (*int, error) {
	values := r.Query(name)
	if (len(values) == 0) || (values[0] == "") {
		return nil, nil
	}
	v, err := GetParam(r, name, false, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetDateTimeParam parses a yyyy-MM-dd HH:mm:ss parameter as UTC. An absent
// optional parameter is returned as nil.
func GetDateTimeParam(r http_wrappers.RequestWrapper, name string, optional bool) (*time.Time, error) {
	value, err := GetParam(r, name, optional, "")
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}
	t, err := api.ParseDateTime(value)
	if err != nil {
		return nil, serviceerrors.NewServiceError(messages.QueryParameterInvalid, "ParameterName", name, "Type", "date time (yyyy-MM-dd HH:mm:ss)", "Value", value)
	}
	return &t, nil
}
