package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdox72/ITZone/internal/mocks"
	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSeeder(users *mocks.UserRepository, items *mocks.ItemRepository) *services.Seeder {
	logger, _ := test.NewNullLogger()
	auth := services.NewAuthService(users, &recordingIssuer{}, 30*time.Minute, logger)
	itemSvc := services.NewItemService(items, &mocks.UnitOfWork{Items: items}, logger)
	return services.NewSeeder(users, auth, itemSvc, logger)
}

func TestSeeder_Seed(t *testing.T) {
	t.Run("Пустая база", func(t *testing.T) {
		users := new(mocks.UserRepository)
		items := new(mocks.ItemRepository)
		nextID := int64(0)

		users.On("CountUsers", mock.Anything).Return(int64(0), nil).Once()
		users.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrUserNotFound).Twice()
		users.On("GetUserByUsername", mock.Anything, mock.Anything).Return(nil, repository.ErrUserNotFound).Twice()
		users.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
			Return(func(_ context.Context, u *models.User) error {
				nextID++
				u.ID = nextID
				return nil
			}).Twice()

		var owners []int64
		items.On("CreateItem", mock.Anything, mock.AnythingOfType("*models.Item")).
			Return(func(_ context.Context, it *models.Item) error {
				owners = append(owners, it.OwnerID)
				return nil
			}).Twice()

		seeded, err := newSeeder(users, items).Seed(context.Background())
		require.NoError(t, err)
		assert.True(t, seeded)
		assert.Equal(t, []int64{1, 2}, owners)
		users.AssertCalled(t, "GetUserByUsername", mock.Anything, "admin")
		users.AssertCalled(t, "GetUserByUsername", mock.Anything, "testuser")
		users.AssertExpectations(t)
		items.AssertExpectations(t)
	})

	t.Run("Данные уже есть", func(t *testing.T) {
		users := new(mocks.UserRepository)
		users.On("CountUsers", mock.Anything).Return(int64(3), nil).Once()

		seeded, err := newSeeder(users, new(mocks.ItemRepository)).Seed(context.Background())
		require.NoError(t, err)
		assert.False(t, seeded)
		users.AssertExpectations(t)
	})

	t.Run("Ошибка подсчета", func(t *testing.T) {
		users := new(mocks.UserRepository)
		users.On("CountUsers", mock.Anything).Return(int64(0), errors.New("db down")).Once()

		_, err := newSeeder(users, new(mocks.ItemRepository)).Seed(context.Background())
		require.Error(t, err)
	})
}
