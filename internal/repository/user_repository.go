package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const userColumns = `id, email, username, password_hash, is_active, created_at, updated_at`

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// postgresUserRepository реализует UserRepository для PostgreSQL.
type postgresUserRepository struct {
	db  *sqlx.DB
	log logrus.FieldLogger
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB, log logrus.FieldLogger) UserRepository {
	return &postgresUserRepository{db: db, log: log.WithField("component", "UserRepo")}
}

// CreateUser создает нового пользователя в базе данных.
// Заполняет ID и CreatedAt переданной структуры.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, username, password_hash, is_active) VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, user.Email, user.Username, user.PasswordHash, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			switch pgErr.Constraint {
			case usersEmailConstraint:
				r.log.Infof("Ошибка создания пользователя: email '%s' уже занят", user.Email)
				return ErrEmailTaken
			case usersUsernameConstraint:
				r.log.Infof("Ошибка создания пользователя: имя '%s' уже занято", user.Username)
				return ErrUsernameTaken
			}
		}
		r.log.Errorf("Непредвиденная ошибка при создании пользователя '%s': %v", user.Username, err)
		return fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	r.log.Infof("Пользователь '%s' успешно создан с ID %d", user.Username, user.ID)
	return nil
}

// GetUserByID находит пользователя по ID.
func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

// GetUserByUsername находит пользователя по его имени.
func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

// GetUserByEmail находит пользователя по email.
func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *postgresUserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugf("Пользователь '%v' не найден", arg)
			return nil, ErrUserNotFound
		}
		r.log.Errorf("Ошибка при поиске пользователя '%v': %v", arg, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	return &user, nil
}

// ListUsers возвращает страницу пользователей, упорядоченных по ID.
func (r *postgresUserRepository) ListUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`

	users := make([]models.User, 0, limit)
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		r.log.Errorf("Ошибка при получении списка пользователей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка пользователей: %w", err)
	}
	return users, nil
}

// CountUsers возвращает общее количество пользователей.
func (r *postgresUserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("ошибка выполнения запроса на подсчет пользователей: %w", err)
	}
	return count, nil
}

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound  = errors.New("пользователь не найден")
	ErrEmailTaken    = errors.New("email уже зарегистрирован")
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
)
