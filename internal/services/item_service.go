package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/sirupsen/logrus"
)

// ItemService реализует CRUD над items.
// Изменять и удалять item может только его владелец.
type ItemService struct {
	items repository.ItemRepository
	uow   repository.UnitOfWork
	log   logrus.FieldLogger
}

// NewItemService создает ItemService.
func NewItemService(items repository.ItemRepository, uow repository.UnitOfWork, log logrus.FieldLogger) *ItemService {
	return &ItemService{
		items: items,
		uow:   uow,
		log:   log.WithField("component", "ItemService"),
	}
}

// Create создает item, принадлежащий owner.
func (s *ItemService) Create(ctx context.Context, owner *models.User, in models.ItemInput) (*models.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	item := &models.Item{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     owner.ID,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("ошибка создания item: %w", err)
	}
	return item, nil
}

// List возвращает страницу всех items без фильтра по владельцу.
func (s *ItemService) List(ctx context.Context, offset, limit int) ([]models.Item, error) {
	offset, limit = NormalizePage(offset, limit)
	items, err := s.items.ListItems(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка items: %w", err)
	}
	return items, nil
}

// ListOwned возвращает items пользователя owner.
func (s *ItemService) ListOwned(ctx context.Context, owner *models.User) ([]models.Item, error) {
	items, err := s.items.ListItemsByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения items владельца: %w", err)
	}
	return items, nil
}

// Get возвращает item по ID.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.items.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("ошибка получения item: %w", err)
	}
	return item, nil
}

// Update меняет title и description item от имени caller.
// owner_id не меняется никогда.
func (s *ItemService) Update(ctx context.Context, id int64, caller *models.User, in models.ItemInput) (*models.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	var updated *models.Item
	err := s.uow.Do(ctx, func(ctx context.Context, items repository.ItemRepository) error {
		item, err := s.lockOwned(ctx, items, id, caller)
		if err != nil {
			return err
		}

		item.Title = in.Title
		item.Description = in.Description
		if err = items.UpdateItem(ctx, item); err != nil {
			return translateItemErr(err)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Item %d обновлен пользователем %d", id, caller.ID)
	return updated, nil
}

// Delete удаляет item от имени caller.
func (s *ItemService) Delete(ctx context.Context, id int64, caller *models.User) error {
	err := s.uow.Do(ctx, func(ctx context.Context, items repository.ItemRepository) error {
		if _, err := s.lockOwned(ctx, items, id, caller); err != nil {
			return err
		}
		return translateItemErr(items.DeleteItem(ctx, id))
	})
	if err != nil {
		return err
	}

	s.log.Infof("Item %d удален пользователем %d", id, caller.ID)
	return nil
}

// lockOwned блокирует строку item и проверяет, что caller ее владелец.
func (s *ItemService) lockOwned(
	ctx context.Context,
	items repository.ItemRepository,
	id int64,
	caller *models.User,
) (*models.Item, error) {
	item, err := items.LockItemByID(ctx, id)
	if err != nil {
		return nil, translateItemErr(err)
	}
	if item.OwnerID != caller.ID {
		s.log.Infof("Пользователь %d пытался изменить чужой item %d", caller.ID, id)
		return nil, ErrForbidden
	}
	return item, nil
}

func translateItemErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrItemNotFound) {
		return ErrItemNotFound
	}
	return fmt.Errorf("ошибка изменения item: %w", err)
}

func validateItemInput(in models.ItemInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title обязателен", ErrInvalidInput)
	}
	return nil
}

// Ошибки сервиса items.
var (
	ErrItemNotFound = errors.New("item не найден")
	ErrForbidden    = errors.New("недостаточно прав")
)
