package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdox72/ITZone/internal/middleware"
	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/sirupsen/logrus"
)

// ItemService определяет операции над items, нужные обработчикам.
type ItemService interface {
	Create(ctx context.Context, owner *models.User, in models.ItemInput) (*models.Item, error)
	List(ctx context.Context, offset, limit int) ([]models.Item, error)
	ListOwned(ctx context.Context, owner *models.User) ([]models.Item, error)
	Get(ctx context.Context, id int64) (*models.Item, error)
	Update(ctx context.Context, id int64, caller *models.User, in models.ItemInput) (*models.Item, error)
	Delete(ctx context.Context, id int64, caller *models.User) error
}

// ItemHandler обрабатывает запросы /items.
type ItemHandler struct {
	service ItemService
	log     logrus.FieldLogger
}

// NewItemHandler создает ItemHandler.
func NewItemHandler(s ItemService, log logrus.FieldLogger) *ItemHandler {
	return &ItemHandler{service: s, log: log.WithField("component", "ItemHandler")}
}

// Create обрабатывает POST /items/.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, detailNotAuthenticated)
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	item, err := h.service.Create(r.Context(), user, in)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item, h.log)
}

// List обрабатывает GET /items/?skip=&limit=.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, detailInvalidPage)
		return
	}

	items, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	h.writeItems(w, items)
}

// ListOwned обрабатывает GET /items/my-items.
func (h *ItemHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, detailNotAuthenticated)
		return
	}

	items, err := h.service.ListOwned(r.Context(), user)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	h.writeItems(w, items)
}

// Get обрабатывает GET /items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item, h.log)
}

// Update обрабатывает PUT /items/{id}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, detailNotAuthenticated)
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	item, err := h.service.Update(r.Context(), id, user, in)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item, h.log)
}

// Delete обрабатывает DELETE /items/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, detailNotAuthenticated)
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, user); err != nil {
		h.writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) decodeInput(w http.ResponseWriter, r *http.Request) (models.ItemInput, bool) {
	var in models.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.log.Debugf("Ошибка декодирования item: %v", err)
		writeError(w, http.StatusBadRequest, detailInvalidBody)
		return in, false
	}
	return in, true
}

func (h *ItemHandler) writeItems(w http.ResponseWriter, items []models.Item) {
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, http.StatusOK, items, h.log)
}

func (h *ItemHandler) writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not enough permissions")
	case isInvalidInput(err):
		writeError(w, http.StatusBadRequest, "Title is required")
	default:
		h.log.Errorf("Ошибка обработки item: %v", err)
		writeError(w, http.StatusInternalServerError, detailInternal)
	}
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item id")
		return 0, false
	}
	return id, true
}
