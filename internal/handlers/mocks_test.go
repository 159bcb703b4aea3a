package handlers_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/results-hub/results-hub/internal/http_wrappers"
	"github.com/results-hub/results-hub/pkg/api"
)

type MockRequest struct {
	method  string
	headers map[string]string
	query   url.Values
	body    []byte
}

func createMockRequest(method string, uri string) *MockRequest {
	parsed, _ := url.Parse(uri)
	return &MockRequest{
		method:  method,
		headers: map[string]string{},
		query:   parsed.Query(),
	}
}

func (r *MockRequest) Method() string               { return r.method }
func (r *MockRequest) Header(key string) string     { return r.headers[key] }
func (r *MockRequest) Query(key string) []string    { return r.query[key] }
func (r *MockRequest) BodyAsBytes() ([]byte, error) { return r.body, nil }
func (r *MockRequest) withBody(body string) *MockRequest {
	r.body = []byte(body)
	return r
}

// MockResponseWrapper records the response in an httptest recorder.
type MockResponseWrapper struct {
	recorder *httptest.ResponseRecorder
}

func (w MockResponseWrapper) WriteResp(resp api.RespEnum, data any) {
	w.WriteJSON(api.NewRespModel(resp, data), http.StatusOK)
}

func (w MockResponseWrapper) WriteJSON(v any, code int) {
	w.recorder.Header().Set("Content-Type", "application/json")
	w.recorder.WriteHeader(code)
	_ = json.NewEncoder(w.recorder).Encode(v)
}

func (w MockResponseWrapper) Error(err error, requestID string) {
	resp, code := http_wrappers.ErrorOutcome(err)
	w.recorder.Header().Set("Content-Type", "application/json")
	w.recorder.WriteHeader(code)
	_ = json.NewEncoder(w.recorder).Encode(api.RespModel{Code: resp.Code(), Message: resp.Message() + ": " + err.Error()})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode the response %q: %v", recorder.Body.String(), err)
	}
	return env
}
