package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer выпускает токены доступа.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// validate безопасен для конкурентного использования и кэширует разбор тэгов.
var validate = validator.New(validator.WithRequiredStructEnabled())

// AuthService хранит учетные записи и выдает токены доступа.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	tokenTTL time.Duration
	log      logrus.FieldLogger
	// dummyHash сравнивается с паролем, когда пользователь не найден,
	// чтобы время ответа не выдавало существование имени.
	dummyHash []byte
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
// tokenTTL передается в TokenIssuer без изменений.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	tokenTTL time.Duration,
	log logrus.FieldLogger,
) *AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("itzone-dummy-password"), bcrypt.DefaultCost)
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		log:       log.WithField("component", "AuthService"),
		dummyHash: dummy,
	}
}

// Register регистрирует нового активного пользователя.
// Занятость email проверяется раньше занятости имени.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if err := validateRegistration(models.RegisterRequest{Email: email, Username: username, Password: password}); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, email); err == nil {
		s.log.Infof("Попытка регистрации с занятым email: %s", email)
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		s.log.Errorf("Ошибка репозитория при проверке email '%s': %v", email, err)
		return nil, fmt.Errorf("ошибка проверки email: %w", err)
	}

	if _, err := s.userRepo.GetUserByUsername(ctx, username); err == nil {
		s.log.Infof("Попытка регистрации с занятым именем: %s", username)
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		s.log.Errorf("Ошибка репозитория при проверке имени '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка проверки имени пользователя: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Errorf("Ошибка хеширования пароля для '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	// Ограничения уникальности в БД закрывают гонку между проверкой и вставкой.
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrDuplicateEmail
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrDuplicateUsername
		}
		s.log.Errorf("Непредвиденная ошибка репозитория при регистрации '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	s.log.Infof("Пользователь '%s' успешно зарегистрирован (ID: %d)", username, user.ID)
	return user, nil
}

// validateRegistration проверяет тэги RegisterRequest.
// Некорректный email дополнительно оборачивает ErrInvalidEmail.
func validateRegistration(req models.RegisterRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() == "Email" && fe.Tag() == "email" {
				return fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidEmail)
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// Authenticate проверяет имя пользователя и пароль.
// Для неизвестного пользователя и неверного пароля возвращается одна и та же ошибка.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.log.Infof("Попытка входа несуществующего пользователя: %s", username)
			return nil, ErrInvalidCredentials
		}
		s.log.Errorf("Ошибка репозитория при поиске '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Infof("Неверный пароль для пользователя: %s", username)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login аутентифицирует пользователя и возвращает токен доступа.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		s.log.Infof("Попытка входа отключенного пользователя: %s", username)
		return "", ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user.Username, s.tokenTTL)
	if err != nil {
		s.log.Errorf("Ошибка генерации JWT для '%s': %v", username, err)
		return "", fmt.Errorf("ошибка генерации токена: %w", err)
	}

	s.log.Infof("Пользователь '%s' успешно аутентифицирован", username)
	return token, nil
}

// GetByID возвращает пользователя по ID или (nil, nil), если его нет.
func (s *AuthService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.lookup(s.userRepo.GetUserByID(ctx, id))
}

// GetByUsername возвращает пользователя по имени или (nil, nil), если его нет.
func (s *AuthService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.lookup(s.userRepo.GetUserByUsername(ctx, username))
}

func (s *AuthService) lookup(user *models.User, err error) (*models.User, error) {
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	return user, nil
}

// ListUsers возвращает страницу пользователей.
func (s *AuthService) ListUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	offset, limit = NormalizePage(offset, limit)
	users, err := s.userRepo.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	return users, nil
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrDuplicateEmail     = errors.New("email уже зарегистрирован")
	ErrDuplicateUsername  = errors.New("имя пользователя уже занято")
	ErrAccountDisabled    = errors.New("учетная запись отключена")
	ErrInvalidInput       = errors.New("некорректные входные данные")
	ErrInvalidEmail       = errors.New("некорректный email")
)
