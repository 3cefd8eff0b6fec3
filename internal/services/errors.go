// internal/services/errors.go
package services

import (
	"errors"

	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrImageRequired      = errors.New("image is required")
	ErrInsufficientStock  = repository.ErrInsufficientStock
	ErrInvalidStatus      = models.ErrUnknownOrderStatus
	ErrInvalidTransition  = models.ErrInvalidTransition
	ErrInvalidCredentials = errors.New("invalid email or password")
)
