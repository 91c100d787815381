package mocks

import (
	"context"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/stretchr/testify/mock"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository is a mock type for the UserRepository type.
type UserRepository struct {
	mock.Mock
}

// CreateUser provides a mock function with given fields: ctx, user.
func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	ret := m.Called(ctx, user)
	if fn, ok := ret.Get(0).(func(context.Context, *models.User) error); ok {
		return fn(ctx, user)
	}
	return ret.Error(0)
}

// GetUserByID provides a mock function with given fields: ctx, id.
func (m *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ret := m.Called(ctx, id)
	return userOrNil(ret.Get(0)), ret.Error(1)
}

// GetUserByUsername provides a mock function with given fields: ctx, username.
func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ret := m.Called(ctx, username)
	return userOrNil(ret.Get(0)), ret.Error(1)
}

// GetUserByEmail provides a mock function with given fields: ctx, email.
func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ret := m.Called(ctx, email)
	return userOrNil(ret.Get(0)), ret.Error(1)
}

// ListUsers provides a mock function with given fields: ctx, offset, limit.
func (m *UserRepository) ListUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	ret := m.Called(ctx, offset, limit)
	users, _ := ret.Get(0).([]models.User)
	return users, ret.Error(1)
}

// CountUsers provides a mock function with given fields: ctx.
func (m *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

func userOrNil(v interface{}) *models.User {
	user, _ := v.(*models.User)
	return user
}
