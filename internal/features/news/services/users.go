package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

// UserService manages reader accounts and backs the identity resolver.
type UserService struct {
	store  store.Store
	logger *core.Logger
}

// NewUserService creates a new user service.
func NewUserService(s store.Store, logger *core.Logger) *UserService {
	return &UserService{store: s, logger: logger}
}

// ResolveUser looks up a user by ID.
func (u *UserService) ResolveUser(ctx context.Context, id string) (*models.User, error) {
	user, err := u.store.UserByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, core.NewNotFoundError(fmt.Sprintf("user %s not found", id), err)
		}
		return nil, core.NewStorageError("failed to load user", err)
	}
	return user, nil
}

// CreateUser registers a new reader with a zeroed unread counter.
func (u *UserService) CreateUser(ctx context.Context, name string) (*models.User, error) {
	if name == "" {
		return nil, core.NewValidationError("user name is required", nil)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := u.store.UpsertUser(ctx, user); err != nil {
		return nil, core.NewStorageError("failed to store user", err)
	}

	u.logger.Info("Created user", "id", user.ID, "name", user.Name)
	return user, nil
}
