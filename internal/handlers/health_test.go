package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/config"
	"github.com/results-hub/results-hub/internal/handlers"
	"github.com/results-hub/results-hub/pkg/api"
)

type fakeStorage struct {
	abstractions.Storage
	pingErr error
}

func (f *fakeStorage) WithLogger(_ *slog.Logger) abstractions.Storage { return f }
func (f *fakeStorage) WithContext(_ context.Context) abstractions.Storage {
	return f
}
func (f *fakeStorage) Ping(_ time.Duration) error { return f.pingErr }
func (f *fakeStorage) GetDriverName() string      { return "sqlite" }
func (f *fakeStorage) GetConnectionURL() string   { return "file::memory:" }

func TestHandleHealth(t *testing.T) {
	serviceConfig := &config.Config{Service: &config.ServiceConfig{Version: "1.2.3"}}

	t.Run("reports the storage", func(t *testing.T) {
		h := handlers.New(&fakeStorage{}, newFakeService(), nil, serviceConfig)
		recorder := invoke(h.HandleHealth, createMockRequest("GET", "/api/v1/health"))
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", recorder.Code)
		}
		var health handlers.HealthResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &health); err != nil {
			t.Fatalf("Failed to decode the health response: %v", err)
		}
		if health.Status != handlers.STATUS_HEALTHY || health.Version != "1.2.3" || health.Storage == nil || health.Storage.Driver != "sqlite" {
			t.Fatalf("Unexpected health response %+v", health)
		}
	})

	t.Run("an unreachable database is unavailable", func(t *testing.T) {
		h := handlers.New(&fakeStorage{pingErr: errors.New("connection refused")}, newFakeService(), nil, serviceConfig)
		recorder := invoke(h.HandleHealth, createMockRequest("GET", "/api/v1/health"))
		expectEnvelope(t, recorder, http.StatusServiceUnavailable, api.Error)
	})
}
