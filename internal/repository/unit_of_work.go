package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// UnitOfWork выполняет fn в одной транзакции.
// Транзакция фиксируется, если fn вернула nil, и откатывается при ошибке или панике.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, items ItemRepository) error) error
}

type postgresUnitOfWork struct {
	db  *sqlx.DB
	log logrus.FieldLogger
}

// NewPostgresUnitOfWork создает UnitOfWork поверх пула соединений.
func NewPostgresUnitOfWork(db *sqlx.DB, log logrus.FieldLogger) UnitOfWork {
	return &postgresUnitOfWork{db: db, log: log}
}

// Do открывает транзакцию и передает в fn репозиторий, привязанный к ней.
func (u *postgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, items ItemRepository) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				u.log.WithField("component", "UnitOfWork").Warnf("Ошибка отката транзакции: %v", rbErr)
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("ошибка фиксации транзакции: %w", commitErr)
		}
	}()

	err = fn(ctx, NewPostgresItemRepository(tx, u.log))
	return err
}
