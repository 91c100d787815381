package services

import (
	"context"
	"fmt"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/sirupsen/logrus"
)

type seedUser struct {
	email, username, password string
	item                      models.ItemInput
}

func describe(s string) *string { return &s }

var seedUsers = []seedUser{
	{
		email: "admin@example.com", username: "admin", password: "adminpassword",
		item: models.ItemInput{Title: "Sample Item 1", Description: describe("This is a description for sample item 1")},
	},
	{
		email: "user@example.com", username: "testuser", password: "userpassword",
		item: models.ItemInput{Title: "Sample Item 2", Description: describe("This is a description for sample item 2")},
	},
}

// Seeder наполняет пустую базу демонстрационными данными.
type Seeder struct {
	userRepo repository.UserRepository
	auth     *AuthService
	items    *ItemService
	log      logrus.FieldLogger
}

// NewSeeder создает Seeder.
func NewSeeder(userRepo repository.UserRepository, auth *AuthService, items *ItemService, log logrus.FieldLogger) *Seeder {
	return &Seeder{userRepo: userRepo, auth: auth, items: items, log: log.WithField("component", "Seeder")}
}

// Seed создает пользователей admin и testuser с одним item у каждого,
// если в базе еще нет ни одного пользователя. Возвращает false, если данные уже есть.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	count, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}
	if count > 0 {
		s.log.Info("База уже содержит данные, начальное заполнение пропущено")
		return false, nil
	}

	for _, su := range seedUsers {
		user, err := s.auth.Register(ctx, su.email, su.username, su.password)
		if err != nil {
			return false, fmt.Errorf("ошибка создания пользователя %s: %w", su.username, err)
		}
		if _, err = s.items.Create(ctx, user, su.item); err != nil {
			return false, fmt.Errorf("ошибка создания item для %s: %w", su.username, err)
		}
	}

	s.log.Infof("Создано демонстрационных пользователей: %d", len(seedUsers))
	return true, nil
}
