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

func TestSessionService_Resolve(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tokens := newTestTokenService(t, clock)
	logger, _ := test.NewNullLogger()

	issue := func(subject string) string {
		token, err := tokens.Issue(subject, 30*time.Minute)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name          string
		token         string
		mockSetup     func(repo *mocks.UserRepository)
		expectedUser  string
		expectedError error
	}{
		{
			name:  "Активный пользователь",
			token: issue("alice"),
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{ID: 1, Username: "alice", IsActive: true}, nil).Once()
			},
			expectedUser: "alice",
		},
		{
			name:  "Отключенный пользователь",
			token: issue("carol"),
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByUsername", mock.Anything, "carol").
					Return(&models.User{ID: 3, Username: "carol", IsActive: false}, nil).Once()
			},
			expectedError: services.ErrAccountDisabled,
		},
		{
			name:  "Пользователь удален после выпуска токена",
			token: issue("ghost"),
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound).Once()
			},
			expectedError: services.ErrUnauthorized,
		},
		{
			name:          "Невалидный токен",
			token:         "garbage",
			mockSetup:     func(_ *mocks.UserRepository) {},
			expectedError: services.ErrInvalidToken,
		},
		{
			name:  "Ошибка репозитория",
			token: issue("alice"),
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, errors.New("db down")).Once()
			},
			expectedError: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			tt.mockSetup(repo)

			user, err := services.NewSessionService(tokens, repo, logger).Resolve(context.Background(), tt.token)

			switch {
			case tt.expectedError == nil:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user.Username)
			case errors.Is(tt.expectedError, services.ErrAccountDisabled),
				errors.Is(tt.expectedError, services.ErrUnauthorized),
				errors.Is(tt.expectedError, services.ErrInvalidToken):
				require.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSessionService_Resolve_ExpiredToken(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tokens := newTestTokenService(t, clock)
	logger, _ := test.NewNullLogger()
	repo := new(mocks.UserRepository)

	token, err := tokens.Issue("alice", 30*time.Minute)
	require.NoError(t, err)
	clock.now = clock.now.Add(31 * time.Minute)

	_, err = services.NewSessionService(tokens, repo, logger).Resolve(context.Background(), token)
	require.ErrorIs(t, err, services.ErrInvalidToken)
	repo.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
}
