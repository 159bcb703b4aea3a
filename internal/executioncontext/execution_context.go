package executioncontext

import (
	"context"
	"log/slog"
	"time"
)

// ExecutionContext contains execution context for API operations. Handlers
// receive an ExecutionContext instead of a raw http.Request.
//
// The ExecutionContext contains:
//   - Logger: A request-scoped logger with enriched fields (request_id, method, uri, etc.)
//   - RequestID: the id echoed back in the X-Request-Id header
//   - StartedAt: used for the request duration
type ExecutionContext struct {
	Ctx       context.Context
	RequestID string
	Logger    *slog.Logger
	StartedAt time.Time
}

// This struct contains per request context information
func NewExecutionContext(
	ctx context.Context,
	requestID string,
	logger *slog.Logger,
) *ExecutionContext {
	return &ExecutionContext{
		Ctx:       ctx,
		RequestID: requestID,
		Logger:    logger,
		StartedAt: time.Now(),
	}
}

func (e *ExecutionContext) WithContext(ctx context.Context) *ExecutionContext {
	return &ExecutionContext{
		Ctx:       ctx,
		RequestID: e.RequestID,
		Logger:    e.Logger,
		StartedAt: e.StartedAt,
	}
}
