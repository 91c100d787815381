package models

import "time"

// Item представляет ресурс, принадлежащий пользователю.
// OwnerID задается при создании и больше не меняется.
type Item struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	OwnerID     int64      `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at"`
}

// ItemInput содержит изменяемые клиентом поля (POST /items/, PUT /items/{id}).
type ItemInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}
