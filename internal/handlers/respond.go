package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Abdox72/ITZone/internal/middleware"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Тексты ошибок API.
const (
	detailInternal         = "Internal server error"
	detailInvalidBody      = "Invalid request body"
	detailInvalidPage      = "Invalid pagination parameters"
	detailNotAuthenticated = "Not authenticated"
)

// writeJSON кодирует v в тело ответа с заданным статусом.
func writeJSON(w http.ResponseWriter, status int, v any, log logrus.FieldLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Статус уже отправлен клиенту
		log.Errorf("Ошибка кодирования ответа: %v", err)
	}
}

// writeError пишет {"detail": "..."}.
func writeError(w http.ResponseWriter, status int, detail string) {
	middleware.WriteDetail(w, status, detail)
}

// pathID читает положительный int64 из параметра маршрута.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// pageParams читает skip и limit из строки запроса. Отсутствующие значения равны нулю,
// дальше их нормализует services.NormalizePage.
func pageParams(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, errInvalidPage
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, errInvalidPage
		}
	}
	return offset, limit, nil
}

// isInvalidInput сообщает, вызвана ли ошибка некорректными данными клиента.
func isInvalidInput(err error) bool {
	return errors.Is(err, services.ErrInvalidInput)
}

var (
	errInvalidID   = errors.New("некорректный идентификатор")
	errInvalidPage = errors.New("некорректные параметры пагинации")
)
