package http_wrappers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/results-hub/results-hub/internal/constants"
	"github.com/results-hub/results-hub/internal/executioncontext"
	"github.com/results-hub/results-hub/internal/logging"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/pkg/api"
)

type ResponseWrapper interface {
	// WriteResp writes an envelope outcome, these are always HTTP 200
	WriteResp(resp api.RespEnum, data any)
	WriteJSON(v any, code int)
	Error(err error, requestID string)
}

type responseWrapper struct {
	w   http.ResponseWriter
	ctx *executioncontext.ExecutionContext
}

func NewResponseWrapper(w http.ResponseWriter, ctx *executioncontext.ExecutionContext) ResponseWrapper {
	return &responseWrapper{w: w, ctx: ctx}
}

func (r *responseWrapper) WriteResp(resp api.RespEnum, data any) {
	r.WriteJSON(api.NewRespModel(resp, data), http.StatusOK)
}

func (r *responseWrapper) WriteJSON(v any, code int) {
	r.w.Header().Set("Content-Type", "application/json")
	r.w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(r.w).Encode(v); err != nil {
			r.ctx.Logger.Error("Failed to encode response", "error", err.Error())
			return
		}
	}
	logging.LogRequestSuccess(r.ctx, code, v)
}

func (r *responseWrapper) Error(err error, requestID string) {
	resp, code := ErrorOutcome(err)
	messageCode := ""
	var se *serviceerrors.ServiceError
	if errors.As(err, &se) {
		messageCode = se.MessageCode().GetCode()
	}
	logging.LogRequestFailed(r.ctx, code, messageCode, err.Error())
	body, _ := json.Marshal(api.RespModel{
		Code:    resp.Code(),
		Message: resp.Message() + ": " + err.Error(),
	})
	r.w.Header().Set("Content-Type", "application/json")
	r.w.Header().Set(constants.HEADER_REQUEST_ID, requestID)
	r.w.WriteHeader(code)
	_, _ = r.w.Write(body)
}

// ErrorOutcome maps an error to the envelope outcome and the HTTP status code.
func ErrorOutcome(err error) (api.RespEnum, int) {
	var se *serviceerrors.ServiceError
	if !errors.As(err, &se) {
		return api.Error, http.StatusInternalServerError
	}
	status := se.MessageCode().GetStatusCode()
	switch {
	case status == http.StatusNotFound:
		return api.IDNotFound, status
	case status >= 400 && status < 500:
		return api.ParamsError, status
	default:
		return api.Error, status
	}
}
