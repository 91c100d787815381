package mocks

import (
	"context"

	"github.com/Abdox72/ITZone/internal/repository"
)

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork передает в fn заданный репозиторий и запоминает исход.
// Committed становится true, если fn вернула nil.
type UnitOfWork struct {
	Items     repository.ItemRepository
	Calls     int
	Committed bool
}

// Do вызывает fn с репозиторием Items.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, items repository.ItemRepository) error) error {
	u.Calls++
	err := fn(ctx, u.Items)
	u.Committed = err == nil
	return err
}
