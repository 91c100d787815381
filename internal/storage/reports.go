package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Abdox72/ITZone/internal/models"
)

const reportContentType = "application/json"

// ReportStore хранит отчеты о встречах как JSON-объекты: reports/<owner>/<id>.json.
type ReportStore struct {
	files FileStorage
}

// NewReportStore создает ReportStore поверх FileStorage.
func NewReportStore(files FileStorage) *ReportStore {
	return &ReportStore{files: files}
}

// ReportKey возвращает ключ объекта для отчета.
func ReportKey(ownerID int64, reportID string) string {
	return fmt.Sprintf("reports/%d/%s.json", ownerID, reportID)
}

// PutReport сериализует отчет и сохраняет его в хранилище.
func (s *ReportStore) PutReport(ctx context.Context, report *models.MeetingReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("ошибка сериализации отчета: %w", err)
	}
	return s.files.UploadFile(ctx, ReportKey(report.OwnerID, report.ID), bytes.NewReader(data), int64(len(data)), reportContentType)
}

// GetReport читает отчет владельца по ID.
func (s *ReportStore) GetReport(ctx context.Context, ownerID int64, reportID string) (*models.MeetingReport, error) {
	body, err := s.files.DownloadFile(ctx, ReportKey(ownerID, reportID))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	defer body.Close()

	var report models.MeetingReport
	if err := json.NewDecoder(body).Decode(&report); err != nil {
		return nil, fmt.Errorf("ошибка чтения отчета: %w", err)
	}
	return &report, nil
}

// Ошибки архива отчетов.
var (
	ErrReportNotFound = errors.New("отчет не найден")
)
