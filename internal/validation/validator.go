package validation

import (
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/results-hub/results-hub/pkg/api"
)

func NewValidator() (*validator.Validate, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	register(validate)
	registerCustomValidators(validate)
	return validate, nil
}

func register(instance *validator.Validate) {
	// register function to get tag name from json tags
	instance.RegisterTagNameFunc(
		func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		},
	)
}

func registerCustomValidators(instance *validator.Validate) {
	instance.RegisterStructValidation(queryParamTimeRange, api.QueryParam{})
}

// queryParamTimeRange rejects a create time range whose lower bound is after its upper bound.
func queryParamTimeRange(sl validator.StructLevel) {
	query := sl.Current().Interface().(api.QueryParam)
	from, to := query.From(), query.To()
	if from != nil && to != nil && from.After(*to) {
		sl.ReportError(query.StartTime, "StartTime", "startTime", "timerange", "")
	}
}
