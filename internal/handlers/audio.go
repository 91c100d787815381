package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Abdox72/ITZone/internal/middleware"
	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// DefaultMaxUploadBytes ограничивает размер тела запроса с записью встречи.
const DefaultMaxUploadBytes int64 = 100 << 20

const uploadField = "file"

// MeetingService определяет операции анализа встреч, нужные обработчикам.
type MeetingService interface {
	AnalyzeMeeting(ctx context.Context, owner *models.User, fileName string, audio io.Reader) (*models.MeetingAnalysis, error)
	GetReport(ctx context.Context, owner *models.User, reportID string) (*models.MeetingReport, error)
}

// MeetingHandler обрабатывает запросы /audio.
type MeetingHandler struct {
	service  MeetingService
	maxBytes int64
	log      logrus.FieldLogger
}

// NewMeetingHandler создает MeetingHandler. maxBytes <= 0 означает DefaultMaxUploadBytes.
func NewMeetingHandler(s MeetingService, maxBytes int64, log logrus.FieldLogger) *MeetingHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &MeetingHandler{service: s, maxBytes: maxBytes, log: log.WithField("component", "MeetingHandler")}
}

// AnalyzeMeeting обрабатывает POST /audio/analyze-meeting/.
// Часть формы file передается в сервис потоком, без буферизации в памяти.
func (h *MeetingHandler) AnalyzeMeeting(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, detailNotAuthenticated)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart/form-data upload")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		if err != nil {
			h.writeUploadError(w, err)
			return
		}
		if part.FormName() != uploadField {
			_ = part.Close()
			continue
		}

		result, err := h.service.AnalyzeMeeting(r.Context(), user, part.FileName(), part)
		_ = part.Close()
		if err != nil {
			h.writeUploadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result, h.log)
		return
	}
}

// GetReport обрабатывает GET /audio/reports/{id}.
func (h *MeetingHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, detailNotAuthenticated)
		return
	}

	report, err := h.service.GetReport(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			writeError(w, http.StatusNotFound, "Report not found")
		case errors.Is(err, services.ErrArchiveDisabled):
			writeError(w, http.StatusNotFound, "Report archive is not configured")
		default:
			h.log.Errorf("Ошибка чтения отчета пользователя %d: %v", user.ID, err)
			writeError(w, http.StatusInternalServerError, detailInternal)
		}
		return
	}
	writeJSON(w, http.StatusOK, report, h.log)
}

func (h *MeetingHandler) writeUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
	case errors.Is(err, services.ErrEmptyUpload):
		writeError(w, http.StatusBadRequest, "Uploaded file is empty")
	default:
		h.log.Errorf("Ошибка обработки записи встречи: %v", err)
		writeError(w, http.StatusInternalServerError, "Error processing audio")
	}
}
