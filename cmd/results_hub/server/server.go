package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/config"
	"github.com/results-hub/results-hub/internal/constants"
	"github.com/results-hub/results-hub/internal/executioncontext"
	"github.com/results-hub/results-hub/internal/handlers"
	"github.com/results-hub/results-hub/internal/http_wrappers"
	"github.com/results-hub/results-hub/internal/otel"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultPort = 8080

type Server struct {
	httpServer    *http.Server
	port          int
	logger        *slog.Logger
	serviceConfig *config.Config
	handlers      *handlers.Handlers
}

// ServerClosedError is returned by Start after a graceful shutdown.
type ServerClosedError struct{}

func (e *ServerClosedError) Error() string {
	return "server closed"
}

func (e *ServerClosedError) Is(target error) bool {
	_, ok := target.(*ServerClosedError)
	return ok
}

type handlerFunc func(*executioncontext.ExecutionContext, http_wrappers.RequestWrapper, http_wrappers.ResponseWrapper)

type route struct {
	method  string
	path    string
	handler handlerFunc
}

// NewServer creates the server and registers the routes.
func NewServer(logger *slog.Logger,
	serviceConfig *config.Config,
	storage abstractions.Storage,
	validate *validator.Validate,
	service abstractions.ResultsService) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for the server")
	}
	if serviceConfig == nil || serviceConfig.Service == nil {
		return nil, fmt.Errorf("service config is required for the server")
	}
	if service == nil {
		return nil, fmt.Errorf("results service is required for the server")
	}

	port := serviceConfig.Service.Port
	if port == 0 {
		port = defaultPort
	}

	s := &Server{
		port:          port,
		logger:        logger,
		serviceConfig: serviceConfig,
		handlers:      handlers.New(storage, service, validate, serviceConfig),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  serviceConfig.Service.ReadTimeout,
		WriteTimeout: serviceConfig.Service.WriteTimeout,
	}
	return s, nil
}

func (s *Server) GetPort() int {
	return s.port
}

func (s *Server) routes() []route {
	h := s.handlers
	return []route{
		{http.MethodGet, constants.PATH_RESULTS_LIST, h.HandleListResults},
		{http.MethodGet, constants.PATH_RESULTS, h.HandleGetResult},
		{http.MethodDelete, constants.PATH_RESULTS, h.HandleDeleteResult},
		{http.MethodPost, constants.PATH_RESULTS_BATCHES_DELETE, h.HandleBatchesDelete},
		{http.MethodGet, constants.PATH_RESULTS_CLEAN, h.HandleClean},
		{http.MethodGet, constants.PATH_RESULTS_SUB_RESULT_COUNT, h.HandleSubResultCount},
		{http.MethodGet, constants.PATH_RESULTS_FIND_CASE_STATUS, h.HandleFindCaseStatus},
		{http.MethodGet, constants.PATH_RESULTS_CHART, h.HandleChart},
		{http.MethodGet, constants.PATH_RESULTS_SEND_DAY_REPORT, h.HandleSendDayReport},
		{http.MethodGet, constants.PATH_RESULTS_SEND_WEEK_REPORT, h.HandleSendWeekReport},
		{http.MethodGet, constants.PATH_HEALTH, h.HandleHealth},
	}
}

// Handler builds the HTTP handler with the routes and the middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	paths := []string{}
	for _, r := range s.routes() {
		mux.HandleFunc(r.method+" "+r.path, s.handle(r.handler))
		paths = append(paths, r.path)
	}
	if s.serviceConfig.IsPrometheusEnabled() {
		mux.Handle(http.MethodGet+" "+constants.PATH_METRICS, promhttp.Handler())
		paths = append(paths, constants.PATH_METRICS)
	}

	handler := Middleware(mux, s.serviceConfig.IsPrometheusEnabled(), s.logger, paths...)
	if s.serviceConfig.IsOTELEnabled() {
		handler = otelhttp.NewHandler(handler, otel.ServiceName)
	}
	return handler
}

// handle adapts a handler to net/http with a request scoped execution context.
func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constants.HEADER_REQUEST_ID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		logger := s.logger.With(
			"request_id", requestID,
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"remote_addr", r.RemoteAddr,
		)
		w.Header().Set(constants.HEADER_REQUEST_ID, requestID)

		ctx := executioncontext.NewExecutionContext(r.Context(), requestID, logger)
		fn(ctx, http_wrappers.NewRequestWrapper(r), http_wrappers.NewResponseWrapper(w, ctx))
	}
}

// Start serves until Shutdown is called, it then returns a ServerClosedError.
// Start returns immediately when Shutdown was called first.
func (s *Server) Start() error {
	if err := s.setReady(); err != nil {
		return err
	}

	s.logger.Info("Server listening", "port", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.clearReady()
			return &ServerClosedError{}
		}
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.clearReady()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setReady() error {
	readyFile := s.serviceConfig.Service.ReadyFile
	if readyFile == "" {
		return nil
	}
	if err := os.WriteFile(readyFile, []byte(time.Now().UTC().Format(time.RFC3339)), 0644); err != nil {
		return fmt.Errorf("failed to write the ready file %s: %w", readyFile, err)
	}
	return nil
}

func (s *Server) clearReady() {
	readyFile := s.serviceConfig.Service.ReadyFile
	if readyFile == "" {
		return
	}
	if err := os.Remove(readyFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove the ready file", "file", readyFile, "error", err.Error())
	}
}
