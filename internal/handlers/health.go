package handlers

import (
	"net/http"
	"time"

	"github.com/results-hub/results-hub/internal/executioncontext"
	"github.com/results-hub/results-hub/internal/http_wrappers"
	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
)

const (
	STATUS_HEALTHY = "healthy"

	healthPingTimeout = 2 * time.Second
)

type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version,omitempty"`
	Storage   *StorageInfo `json:"storage,omitempty"`
}

type StorageInfo struct {
	Driver string `json:"driver"`
	URL    string `json:"url,omitempty"`
}

// HandleHealth handles GET /api/v1/health. The storage is pinged and an
// unreachable database makes the service unavailable.
func (h *Handlers) HandleHealth(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	healthInfo := HealthResponse{
		Status:    STATUS_HEALTHY,
		Timestamp: time.Now().UTC(),
	}
	if h.serviceConfig != nil && h.serviceConfig.Service != nil {
		healthInfo.Version = h.serviceConfig.Service.Version
	}
	if h.storage != nil {
		if err := h.storage.Ping(healthPingTimeout); err != nil {
			w.Error(serviceerrors.NewServiceError(messages.ServiceUnavailable, "Error", err.Error()), ctx.RequestID)
			return
		}
		healthInfo.Storage = &StorageInfo{
			Driver: h.storage.GetDriverName(),
			URL:    h.storage.GetConnectionURL(),
		}
	}
	w.WriteJSON(healthInfo, http.StatusOK)
}
