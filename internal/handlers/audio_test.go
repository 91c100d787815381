package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdox72/ITZone/internal/handlers"
	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock MeetingService --- //

type MockMeetingService struct {
	mock.Mock
}

func (m *MockMeetingService) AnalyzeMeeting(
	ctx context.Context,
	owner *models.User,
	fileName string,
	audio io.Reader,
) (*models.MeetingAnalysis, error) {
	// Как и настоящий сервис, вычитываем загрузку полностью.
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}
	args := m.Called(ctx, owner, fileName, string(data))
	result, _ := args.Get(0).(*models.MeetingAnalysis)
	return result, args.Error(1)
}

func (m *MockMeetingService) GetReport(ctx context.Context, owner *models.User, reportID string) (*models.MeetingReport, error) {
	args := m.Called(ctx, owner, reportID)
	report, _ := args.Get(0).(*models.MeetingReport)
	return report, args.Error(1)
}

// --- Helpers --- //

func setupAudioRouter(h *handlers.MeetingHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(withUser(testUser))
	r.Post("/audio/analyze-meeting/", h.AnalyzeMeeting)
	r.Get("/audio/reports/{id}", h.GetReport)
	return r
}

func newMeetingHandler(t *testing.T, maxBytes int64) (*handlers.MeetingHandler, *MockMeetingService) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	svc := new(MockMeetingService)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return handlers.NewMeetingHandler(svc, maxBytes, logger), svc
}

// multipartUpload собирает multipart-тело с полем field.
func multipartUpload(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("comment", "weekly sync"))
	part, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

// --- Tests --- //

func TestMeetingHandler_AnalyzeMeeting(t *testing.T) {
	t.Run("Успешный анализ", func(t *testing.T) {
		h, svc := newMeetingHandler(t, 0)
		svc.On("AnalyzeMeeting", mock.Anything, testUser, "sync.wav", "RIFF-audio").
			Return(&models.MeetingAnalysis{Transcript: "hello", Analysis: "summary"}, nil).Once()

		body, ct := multipartUpload(t, "file", "sync.wav", []byte("RIFF-audio"))
		req := httptest.NewRequest(http.MethodPost, "/audio/analyze-meeting/", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"transcript":"hello","analysis":"summary"}`, rr.Body.String())
	})

	t.Run("Нет поля file", func(t *testing.T) {
		h, _ := newMeetingHandler(t, 0)

		body, ct := multipartUpload(t, "audio", "sync.wav", []byte("RIFF-audio"))
		req := httptest.NewRequest(http.MethodPost, "/audio/analyze-meeting/", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No file uploaded", decodeDetail(t, rr))
	})

	t.Run("Не multipart", func(t *testing.T) {
		h, _ := newMeetingHandler(t, 0)

		req := httptest.NewRequest(http.MethodPost, "/audio/analyze-meeting/", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Пустой файл", func(t *testing.T) {
		h, svc := newMeetingHandler(t, 0)
		svc.On("AnalyzeMeeting", mock.Anything, testUser, "empty.mp3", "").
			Return(nil, services.ErrEmptyUpload).Once()

		body, ct := multipartUpload(t, "file", "empty.mp3", nil)
		req := httptest.NewRequest(http.MethodPost, "/audio/analyze-meeting/", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Uploaded file is empty", decodeDetail(t, rr))
	})

	t.Run("Ошибка шлюза", func(t *testing.T) {
		h, svc := newMeetingHandler(t, 0)
		gatewayErr := fmt.Errorf("%w: %w", services.ErrTranscriptionFailed, errors.New("upstream 502"))
		svc.On("AnalyzeMeeting", mock.Anything, testUser, "sync.wav", "RIFF-audio").
			Return(nil, gatewayErr).Once()

		body, ct := multipartUpload(t, "file", "sync.wav", []byte("RIFF-audio"))
		req := httptest.NewRequest(http.MethodPost, "/audio/analyze-meeting/", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Error processing audio", decodeDetail(t, rr))
	})

	t.Run("Слишком большой файл", func(t *testing.T) {
		h, _ := newMeetingHandler(t, 512)

		body, ct := multipartUpload(t, "file", "sync.wav", bytes.Repeat([]byte("a"), 4096))
		req := httptest.NewRequest(http.MethodPost, "/audio/analyze-meeting/", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})
}

func TestMeetingHandler_GetReport(t *testing.T) {
	const reportID = "0b8f3a8e-8a8a-4d0c-9a4f-7b1f2b6c1d11"

	t.Run("Отчет найден", func(t *testing.T) {
		h, svc := newMeetingHandler(t, 0)
		svc.On("GetReport", mock.Anything, testUser, reportID).Return(&models.MeetingReport{
			ID: reportID, OwnerID: testUser.ID, Transcript: "hello", Analysis: "summary", CreatedAt: time.Now(),
		}, nil).Once()

		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audio/reports/"+reportID, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), reportID)
	})

	t.Run("Отчет не найден", func(t *testing.T) {
		h, svc := newMeetingHandler(t, 0)
		svc.On("GetReport", mock.Anything, testUser, reportID).Return(nil, services.ErrReportNotFound).Once()

		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audio/reports/"+reportID, nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Report not found", decodeDetail(t, rr))
	})

	t.Run("Архив отключен", func(t *testing.T) {
		h, svc := newMeetingHandler(t, 0)
		svc.On("GetReport", mock.Anything, testUser, reportID).Return(nil, services.ErrArchiveDisabled).Once()

		rr := httptest.NewRecorder()
		setupAudioRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audio/reports/"+reportID, nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
