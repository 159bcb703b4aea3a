package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/config"
)

type Handlers struct {
	storage       abstractions.Storage
	service       abstractions.ResultsService
	validate      *validator.Validate
	serviceConfig *config.Config
}

func New(storage abstractions.Storage, service abstractions.ResultsService, validate *validator.Validate, serviceConfig *config.Config) *Handlers {
	return &Handlers{
		storage:       storage,
		service:       service,
		validate:      validate,
		serviceConfig: serviceConfig,
	}
}
