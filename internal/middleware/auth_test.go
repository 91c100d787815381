package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdox72/ITZone/internal/middleware"
	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver возвращает пользователя для известного токена.
type stubResolver struct {
	users map[string]*models.User
	err   error
}

func (s *stubResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, services.ErrInvalidToken
}

func TestGetUserFromContext(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}

	tests := []struct {
		name       string
		ctx        context.Context
		expectedOK bool
	}{
		{name: "Контекст с пользователем", ctx: context.WithValue(context.Background(), middleware.UserKey, user), expectedOK: true},
		{name: "Пустой контекст", ctx: context.Background()},
		{name: "Значение неверного типа", ctx: context.WithValue(context.Background(), middleware.UserKey, "alice")},
		{name: "Nil пользователь", ctx: context.WithValue(context.Background(), middleware.UserKey, (*models.User)(nil))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := middleware.GetUserFromContext(tt.ctx)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, user, got)
			}
		})
	}
}

func TestAuthenticator(t *testing.T) {
	logger, _ := test.NewNullLogger()
	alice := &models.User{ID: 1, Username: "alice", IsActive: true}

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		require.True(t, ok, "пользователь должен быть в контексте")
		_, _ = io.WriteString(w, user.Username)
	})

	tests := []struct {
		name           string
		header         string
		resolver       *stubResolver
		expectedStatus int
		expectedBody   string
		expectedDetail string
	}{
		{
			name:           "Валидный токен",
			header:         "Bearer good",
			resolver:       &stubResolver{users: map[string]*models.User{"good": alice}},
			expectedStatus: http.StatusOK,
			expectedBody:   "alice",
		},
		{
			name:           "Схема в нижнем регистре",
			header:         "bearer good",
			resolver:       &stubResolver{users: map[string]*models.User{"good": alice}},
			expectedStatus: http.StatusOK,
			expectedBody:   "alice",
		},
		{
			name:           "Нет заголовка",
			resolver:       &stubResolver{},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Not authenticated",
		},
		{
			name:           "Неверная схема",
			header:         "Basic dXNlcjpwYXNz",
			resolver:       &stubResolver{},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Not authenticated",
		},
		{
			name:           "Пустой токен",
			header:         "Bearer ",
			resolver:       &stubResolver{},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Not authenticated",
		},
		{
			name:           "Невалидный токен",
			header:         "Bearer bad",
			resolver:       &stubResolver{users: map[string]*models.User{}},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Could not validate credentials",
		},
		{
			name:           "Отключенный пользователь",
			header:         "Bearer any",
			resolver:       &stubResolver{err: services.ErrAccountDisabled},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Inactive user",
		},
		{
			name:           "Пользователь удален",
			header:         "Bearer any",
			resolver:       &stubResolver{err: services.ErrUnauthorized},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Could not validate credentials",
		},
		{
			name:           "Внутренняя ошибка",
			header:         "Bearer any",
			resolver:       &stubResolver{err: errors.New("db down")},
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.Authenticator(tt.resolver, logger)(nextHandler)
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
			}
			if tt.expectedDetail != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedDetail, body["detail"])
			} else {
				assert.Equal(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}
