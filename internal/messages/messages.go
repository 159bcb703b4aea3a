package messages

import (
	"fmt"
	"net/http"
	"strings"
)

// MessageCode identifies an error message, the HTTP status it maps to and
// the message template. Template parameters are written as {{.Name}}.
type MessageCode struct {
	code       string
	statusCode int
	template   string
}

func (m *MessageCode) GetCode() string {
	return m.code
}

func (m *MessageCode) GetStatusCode() int {
	return m.statusCode
}

func createMessageCode(code string, statusCode int, template string) *MessageCode {
	return &MessageCode{
		code:       code,
		statusCode: statusCode,
		template:   template,
	}
}

var (
	// 400
	BadRequest              = createMessageCode("bad_request", http.StatusBadRequest, "The request is invalid: {{.Error}}")
	QueryParameterRequired  = createMessageCode("query_parameter_required", http.StatusBadRequest, "The query parameter {{.ParameterName}} is required.")
	QueryParameterInvalid   = createMessageCode("query_parameter_invalid", http.StatusBadRequest, "The query parameter {{.ParameterName}} must be a valid {{.Type}}, got '{{.Value}}'.")
	QueryBadParameter       = createMessageCode("query_bad_parameter", http.StatusBadRequest, "The query parameter {{.ParameterName}} is not supported, allowed parameters are {{.AllowedParameters}}.")
	InvalidJSONRequest      = createMessageCode("invalid_json_request", http.StatusBadRequest, "The request body is not valid JSON: {{.Error}}")
	RequestValidationFailed = createMessageCode("request_validation_failed", http.StatusBadRequest, "The request failed validation: {{.Error}}")
	ChartRangeTooWide       = createMessageCode("chart_range_too_wide", http.StatusBadRequest, "The chart range of {{.Days}} days is wider than the maximum of {{.MaxDays}} days.")

	// 404
	ResourceNotFound = createMessageCode("resource_not_found", http.StatusNotFound, "The {{.Type}} resource {{.ResourceId}} was not found.")

	// 500
	InternalServerError     = createMessageCode("internal_server_error", http.StatusInternalServerError, "An internal server error occurred: {{.Error}}")
	DatabaseOperationFailed = createMessageCode("database_operation_failed", http.StatusInternalServerError, "The database operation {{.Type}} failed for {{.ResourceId}}: {{.Error}}")
	QueryFailed             = createMessageCode("query_failed", http.StatusInternalServerError, "The query for {{.Type}} failed: {{.Error}}")
	ConfigurationFailed     = createMessageCode("configuration_failed", http.StatusInternalServerError, "The service configuration is invalid: {{.Error}}")
	UnsupportedDriver       = createMessageCode("unsupported_driver", http.StatusInternalServerError, "The database driver {{.Driver}} is not supported.")
	ReportDispatchFailed    = createMessageCode("report_dispatch_failed", http.StatusInternalServerError, "The {{.Type}} report could not be dispatched: {{.Error}}")

	// 503
	ServiceUnavailable = createMessageCode("service_unavailable", http.StatusServiceUnavailable, "The service is unavailable: {{.Error}}")
)

// GetErrorMessage renders the template of the message code with the given
// name/value pairs. Parameters without a value are rendered as empty strings.
func GetErrorMessage(code *MessageCode, params ...any) string {
	msg := code.template
	for i := 0; i < len(params); i += 2 {
		name := fmt.Sprintf("%v", params[i])
		value := ""
		if i+1 < len(params) {
			value = fmt.Sprintf("%v", params[i+1])
		}
		msg = strings.ReplaceAll(msg, "{{."+name+"}}", value)
	}
	return msg
}
