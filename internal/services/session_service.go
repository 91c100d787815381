package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/sirupsen/logrus"
)

// TokenVerifier проверяет токен и возвращает его субъект.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SessionService сопоставляет токен доступа с активным пользователем.
type SessionService struct {
	tokens   TokenVerifier
	userRepo repository.UserRepository
	log      logrus.FieldLogger
}

// NewSessionService создает SessionService.
func NewSessionService(tokens TokenVerifier, userRepo repository.UserRepository, log logrus.FieldLogger) *SessionService {
	return &SessionService{
		tokens:   tokens,
		userRepo: userRepo,
		log:      log.WithField("component", "SessionService"),
	}
}

// Resolve проверяет токен, находит пользователя по субъекту и убеждается, что он активен.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Infof("Токен ссылается на несуществующего пользователя: %s", username)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("ошибка поиска пользователя сессии: %w", err)
	}

	if !user.IsActive {
		s.log.Infof("Отклонен токен отключенного пользователя: %s", username)
		return nil, ErrAccountDisabled
	}

	return user, nil
}

// Ошибки сессии.
var (
	ErrUnauthorized = errors.New("не удалось подтвердить учетные данные")
)
