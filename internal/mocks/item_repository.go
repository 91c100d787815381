package mocks

import (
	"context"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/stretchr/testify/mock"
)

var _ repository.ItemRepository = (*ItemRepository)(nil)

// ItemRepository is a mock type for the ItemRepository type.
type ItemRepository struct {
	mock.Mock
}

// CreateItem provides a mock function with given fields: ctx, item.
func (m *ItemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	ret := m.Called(ctx, item)
	if fn, ok := ret.Get(0).(func(context.Context, *models.Item) error); ok {
		return fn(ctx, item)
	}
	return ret.Error(0)
}

// ListItems provides a mock function with given fields: ctx, offset, limit.
func (m *ItemRepository) ListItems(ctx context.Context, offset, limit int) ([]models.Item, error) {
	ret := m.Called(ctx, offset, limit)
	items, _ := ret.Get(0).([]models.Item)
	return items, ret.Error(1)
}

// ListItemsByOwner provides a mock function with given fields: ctx, ownerID.
func (m *ItemRepository) ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error) {
	ret := m.Called(ctx, ownerID)
	items, _ := ret.Get(0).([]models.Item)
	return items, ret.Error(1)
}

// GetItemByID provides a mock function with given fields: ctx, id.
func (m *ItemRepository) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	ret := m.Called(ctx, id)
	item, _ := ret.Get(0).(*models.Item)
	return item, ret.Error(1)
}

// LockItemByID provides a mock function with given fields: ctx, id.
func (m *ItemRepository) LockItemByID(ctx context.Context, id int64) (*models.Item, error) {
	ret := m.Called(ctx, id)
	item, _ := ret.Get(0).(*models.Item)
	return item, ret.Error(1)
}

// UpdateItem provides a mock function with given fields: ctx, item.
func (m *ItemRepository) UpdateItem(ctx context.Context, item *models.Item) error {
	ret := m.Called(ctx, item)
	if fn, ok := ret.Get(0).(func(context.Context, *models.Item) error); ok {
		return fn(ctx, item)
	}
	return ret.Error(0)
}

// DeleteItem provides a mock function with given fields: ctx, id.
func (m *ItemRepository) DeleteItem(ctx context.Context, id int64) error {
	ret := m.Called(ctx, id)
	return ret.Error(0)
}
