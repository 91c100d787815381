package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// UploadFilePrefix начинает имя каждого временного файла загрузки.
	UploadFilePrefix = "meeting-"
	defaultAudioExt  = ".mp3"
)

// Transcriber превращает аудиофайл в текст.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Analyzer строит анализ встречи по расшифровке.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (string, error)
}

// ReportArchive сохраняет и читает отчеты о встречах.
type ReportArchive interface {
	PutReport(ctx context.Context, report *models.MeetingReport) error
	GetReport(ctx context.Context, ownerID int64, reportID string) (*models.MeetingReport, error)
}

// MeetingService прогоняет запись встречи через расшифровку и анализ.
type MeetingService struct {
	transcriber Transcriber
	analyzer    Analyzer
	archive     ReportArchive // nil, если архив отключен
	uploadDir   string
	now         func() time.Time
	log         logrus.FieldLogger
}

// MeetingOption настраивает MeetingService.
type MeetingOption func(*MeetingService)

// WithReportArchive включает сохранение отчетов.
func WithReportArchive(archive ReportArchive) MeetingOption {
	return func(s *MeetingService) {
		s.archive = archive
	}
}

// WithUploadDir задает каталог для временных файлов. По умолчанию os.TempDir().
func WithUploadDir(dir string) MeetingOption {
	return func(s *MeetingService) {
		if dir != "" {
			s.uploadDir = dir
		}
	}
}

// WithMeetingClock подменяет источник времени для CreatedAt отчетов.
func WithMeetingClock(now func() time.Time) MeetingOption {
	return func(s *MeetingService) {
		s.now = now
	}
}

// NewMeetingService создает MeetingService.
func NewMeetingService(
	transcriber Transcriber,
	analyzer Analyzer,
	log logrus.FieldLogger,
	opts ...MeetingOption,
) *MeetingService {
	s := &MeetingService{
		transcriber: transcriber,
		analyzer:    analyzer,
		uploadDir:   os.TempDir(),
		now:         time.Now,
		log:         log.WithField("component", "MeetingService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeMeeting сохраняет загрузку во временный файл, расшифровывает его
// и анализирует расшифровку. Временный файл удаляется при любом исходе.
func (s *MeetingService) AnalyzeMeeting(
	ctx context.Context,
	owner *models.User,
	fileName string,
	audio io.Reader,
) (*models.MeetingAnalysis, error) {
	path, err := s.saveUpload(fileName, audio)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.log.Warnf("Не удалось удалить временный файл %s: %v", path, rmErr)
		}
	}()

	transcript, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		s.log.Errorf("Ошибка расшифровки записи пользователя %d: %v", owner.ID, err)
		return nil, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	analysis, err := s.analyzer.Analyze(ctx, transcript)
	if err != nil {
		s.log.Errorf("Ошибка анализа расшифровки пользователя %d: %v", owner.ID, err)
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	result := &models.MeetingAnalysis{Transcript: transcript, Analysis: analysis}
	result.ReportID = s.archiveReport(ctx, owner, fileName, result)
	return result, nil
}

// GetReport возвращает ранее сохраненный отчет владельца.
func (s *MeetingService) GetReport(ctx context.Context, owner *models.User, reportID string) (*models.MeetingReport, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	if _, err := uuid.Parse(reportID); err != nil {
		return nil, ErrReportNotFound
	}

	report, err := s.archive.GetReport(ctx, owner.ID, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("ошибка чтения отчета: %w", err)
	}
	return report, nil
}

func (s *MeetingService) saveUpload(fileName string, audio io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = defaultAudioExt
	}

	f, err := os.CreateTemp(s.uploadDir, UploadFilePrefix+"*"+ext)
	if err != nil {
		return "", fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	path := f.Name()

	written, copyErr := io.Copy(f, audio)
	closeErr := f.Close()
	if copyErr == nil && written == 0 {
		copyErr = ErrEmptyUpload
	}
	if err = errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrEmptyUpload) {
			return "", ErrEmptyUpload
		}
		return "", fmt.Errorf("ошибка сохранения загрузки: %w", err)
	}

	return path, nil
}

// archiveReport сохраняет отчет и возвращает его ID. Ошибка архива не прерывает запрос.
func (s *MeetingService) archiveReport(
	ctx context.Context,
	owner *models.User,
	fileName string,
	result *models.MeetingAnalysis,
) string {
	if s.archive == nil {
		return ""
	}

	report := &models.MeetingReport{
		ID:         uuid.NewString(),
		OwnerID:    owner.ID,
		FileName:   filepath.Base(fileName),
		Transcript: result.Transcript,
		Analysis:   result.Analysis,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.archive.PutReport(ctx, report); err != nil {
		s.log.Warnf("Не удалось сохранить отчет для пользователя %d: %v", owner.ID, err)
		return ""
	}
	return report.ID
}

// Ошибки сервиса встреч.
var (
	ErrEmptyUpload         = errors.New("загруженный файл пуст")
	ErrTranscriptionFailed = errors.New("ошибка расшифровки аудио")
	ErrAnalysisFailed      = errors.New("ошибка анализа расшифровки")
	ErrArchiveDisabled     = errors.New("архив отчетов отключен")
	ErrReportNotFound      = errors.New("отчет не найден")
)
