// internal/services/user_service.go
package services

import (
	"context"

	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{users: store.Users}
}

// ListUsers returns name, email and signup time, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return s.users.ListSummaries(ctx)
}
