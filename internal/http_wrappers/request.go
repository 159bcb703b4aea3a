package http_wrappers

import (
	"io"
	"net/http"

	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
)

// RequestWrapper hides the net/http request from the handlers so that they
// can be driven by tests without a server.
type RequestWrapper interface {
	Method() string
	Header(key string) string
	Query(key string) []string
	BodyAsBytes() ([]byte, error)
}

// the maximum size of a request body
const maxBodySize = 1 << 20

type requestWrapper struct {
	r *http.Request
}

func NewRequestWrapper(r *http.Request) RequestWrapper {
	return &requestWrapper{r: r}
}

func (w *requestWrapper) Method() string {
	return w.r.Method
}

func (w *requestWrapper) Header(key string) string {
	return w.r.Header.Get(key)
}

func (w *requestWrapper) Query(key string) []string {
	return w.r.URL.Query()[key]
}

func (w *requestWrapper) BodyAsBytes() ([]byte, error) {
	if w.r.Body == nil {
		return nil, serviceerrors.NewServiceError(messages.BadRequest, "Error", "the request body is empty")
	}
	defer w.r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(w.r.Body, maxBodySize))
	if err != nil {
		return nil, serviceerrors.NewServiceError(messages.BadRequest, "Error", err.Error())
	}
	return body, nil
}
