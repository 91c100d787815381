package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Abdox72/ITZone/internal/middleware"
	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/sirupsen/logrus"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, error)
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией и пользователями.
type AuthHandler struct {
	service AuthService
	log     logrus.FieldLogger
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{service: s, log: log.WithField("component", "AuthHandler")}
}

// Token обрабатывает POST /auth/token (форма username, password).
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, detailInvalidBody)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			middleware.Unauthorized(w, "Incorrect username or password")
		case errors.Is(err, services.ErrAccountDisabled):
			middleware.Unauthorized(w, "Inactive user")
		default:
			h.log.Errorf("Ошибка входа пользователя '%s': %v", username, err)
			writeError(w, http.StatusInternalServerError, detailInternal)
		}
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"}, h.log)
}

// Register обрабатывает POST /users/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debugf("Ошибка декодирования запроса регистрации: %v", err)
		writeError(w, http.StatusBadRequest, detailInvalidBody)
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email, username and password are required")
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, services.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "Username already taken")
		case errors.Is(err, services.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "Invalid email address")
		case isInvalidInput(err):
			writeError(w, http.StatusBadRequest, "Email, username and password are required")
		default:
			h.log.Errorf("Ошибка регистрации пользователя '%s': %v", req.Username, err)
			writeError(w, http.StatusInternalServerError, detailInternal)
		}
		return
	}

	writeJSON(w, http.StatusCreated, user, h.log)
}

// ListUsers обрабатывает GET /users/?skip=&limit=.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, detailInvalidPage)
		return
	}

	users, err := h.service.ListUsers(r.Context(), offset, limit)
	if err != nil {
		h.log.Errorf("Ошибка получения списка пользователей: %v", err)
		writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users, h.log)
}

// Me обрабатывает GET /users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, detailNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user, h.log)
}

// GetUser обрабатывает GET /users/{id}.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.log.Errorf("Ошибка получения пользователя %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user, h.log)
}
