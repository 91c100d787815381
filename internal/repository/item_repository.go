package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const itemColumns = `id, title, description, owner_id, created_at, updated_at`

// ItemRepository определяет методы для работы с записями items.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	ListItems(ctx context.Context, offset, limit int) ([]models.Item, error)
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error)
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	// LockItemByID читает запись с блокировкой строки (SELECT ... FOR UPDATE).
	// Имеет смысл только внутри UnitOfWork.
	LockItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// postgresItemRepository реализует ItemRepository для PostgreSQL.
// Работает как поверх *sqlx.DB, так и поверх *sqlx.Tx.
type postgresItemRepository struct {
	db  sqlx.ExtContext
	log logrus.FieldLogger
}

// NewPostgresItemRepository создает новый экземпляр репозитория items.
func NewPostgresItemRepository(db sqlx.ExtContext, log logrus.FieldLogger) ItemRepository {
	return &postgresItemRepository{db: db, log: log.WithField("component", "ItemRepo")}
}

// CreateItem создает запись и заполняет ID и CreatedAt.
func (r *postgresItemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (title, description, owner_id) VALUES ($1, $2, $3) RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, item.Title, item.Description, item.OwnerID).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		r.log.Errorf("Ошибка при создании item для владельца %d: %v", item.OwnerID, err)
		return fmt.Errorf("ошибка выполнения запроса на создание item: %w", err)
	}

	r.log.Infof("Item (ID: %d) создан владельцем %d", item.ID, item.OwnerID)
	return nil
}

// ListItems возвращает страницу всех items без фильтра по владельцу.
func (r *postgresItemRepository) ListItems(ctx context.Context, offset, limit int) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY id LIMIT $1 OFFSET $2`

	items := make([]models.Item, 0, limit)
	if err := sqlx.SelectContext(ctx, r.db, &items, query, limit, offset); err != nil {
		r.log.Errorf("Ошибка при получении списка items (limit=%d, offset=%d): %v", limit, offset, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка items: %w", err)
	}
	return items, nil
}

// ListItemsByOwner возвращает все items указанного владельца.
func (r *postgresItemRepository) ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id=$1 ORDER BY id`

	items := make([]models.Item, 0)
	if err := sqlx.SelectContext(ctx, r.db, &items, query, ownerID); err != nil {
		r.log.Errorf("Ошибка при получении items владельца %d: %v", ownerID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение items владельца: %w", err)
	}
	return items, nil
}

// GetItemByID находит item по ID.
func (r *postgresItemRepository) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1`, id)
}

// LockItemByID находит item по ID и блокирует строку до конца транзакции.
func (r *postgresItemRepository) LockItemByID(ctx context.Context, id int64) (*models.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1 FOR UPDATE`, id)
}

func (r *postgresItemRepository) getOne(ctx context.Context, query string, id int64) (*models.Item, error) {
	var item models.Item

	err := sqlx.GetContext(ctx, r.db, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugf("Item с ID %d не найден", id)
			return nil, ErrItemNotFound
		}
		r.log.Errorf("Ошибка при поиске item %d: %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение item: %w", err)
	}
	return &item, nil
}

// UpdateItem обновляет title и description. owner_id не изменяется.
// Заполняет UpdatedAt переданной структуры.
func (r *postgresItemRepository) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET title=$1, description=$2, updated_at=now() WHERE id=$3 RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, item.Title, item.Description, item.ID).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		r.log.Errorf("Ошибка при обновлении item %d: %v", item.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление item: %w", err)
	}

	r.log.Infof("Item (ID: %d) обновлен", item.ID)
	return nil
}

// DeleteItem удаляет item по ID.
func (r *postgresItemRepository) DeleteItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		r.log.Errorf("Ошибка при удалении item %d: %v", id, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества удаленных строк: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}

	r.log.Infof("Item (ID: %d) удален", id)
	return nil
}

// Кастомная ошибка репозитория.
var (
	ErrItemNotFound = errors.New("item не найден")
)
