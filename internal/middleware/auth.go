package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/sirupsen/logrus"
)

// Тип для ключа контекста.
type contextKey string

// Ключ для хранения текущего пользователя в контексте.
const UserKey contextKey = "user"

// SessionResolver сопоставляет токен с пользователем.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Authenticator проверяет заголовок Authorization: Bearer <token>
// и кладет активного пользователя в контекст запроса.
func Authenticator(resolver SessionResolver, log logrus.FieldLogger) func(http.Handler) http.Handler {
	log = log.WithField("component", "AuthMiddleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				log.Debug("Заголовок Authorization отсутствует или имеет неверный формат")
				Unauthorized(w, "Not authenticated")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrAccountDisabled):
					Unauthorized(w, "Inactive user")
				case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrUnauthorized):
					Unauthorized(w, "Could not validate credentials")
				default:
					log.Errorf("Ошибка проверки сессии: %v", err)
					WriteDetail(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserFromContext извлекает пользователя из контекста запроса.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// Unauthorized пишет 401 с заголовком WWW-Authenticate: Bearer.
func Unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteDetail(w, http.StatusUnauthorized, detail)
}

// WriteDetail пишет ошибку в формате {"detail": "..."}.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
