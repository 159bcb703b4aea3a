package serviceerrors

import (
	"errors"

	"github.com/results-hub/results-hub/internal/messages"
)

type ServiceError struct {
	messageCode *messages.MessageCode
	params      []any
	rollback    bool
}

func NewServiceError(messageCode *messages.MessageCode, params ...any) *ServiceError {
	return &ServiceError{
		messageCode: messageCode,
		params:      params,
	}
}

func (e *ServiceError) Error() string {
	return messages.GetErrorMessage(e.messageCode, e.params...)
}

func (e *ServiceError) MessageCode() *messages.MessageCode {
	return e.messageCode
}

func (e *ServiceError) ShouldRollback() bool {
	return e.rollback
}

// WithRollback marks the error so that an enclosing transaction is rolled back.
// Errors that are not service errors are wrapped as internal server errors.
func WithRollback(err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return &ServiceError{
			messageCode: se.messageCode,
			params:      se.params,
			rollback:    true,
		}
	}
	return &ServiceError{
		messageCode: messages.InternalServerError,
		params:      []any{"Error", err.Error()},
		rollback:    true,
	}
}
