package mocks

import (
	"context"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/stretchr/testify/mock"
)

// Transcriber is a mock type for the Transcriber type.
type Transcriber struct {
	mock.Mock
}

// Transcribe provides a mock function with given fields: ctx, audioPath.
func (m *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ret := m.Called(ctx, audioPath)
	if fn, ok := ret.Get(0).(func(context.Context, string) (string, error)); ok {
		return fn(ctx, audioPath)
	}
	return ret.String(0), ret.Error(1)
}

// Analyzer is a mock type for the Analyzer type.
type Analyzer struct {
	mock.Mock
}

// Analyze provides a mock function with given fields: ctx, transcript.
func (m *Analyzer) Analyze(ctx context.Context, transcript string) (string, error) {
	ret := m.Called(ctx, transcript)
	return ret.String(0), ret.Error(1)
}

// ReportArchive is a mock type for the ReportArchive type.
type ReportArchive struct {
	mock.Mock
}

// PutReport provides a mock function with given fields: ctx, report.
func (m *ReportArchive) PutReport(ctx context.Context, report *models.MeetingReport) error {
	ret := m.Called(ctx, report)
	return ret.Error(0)
}

// GetReport provides a mock function with given fields: ctx, ownerID, reportID.
func (m *ReportArchive) GetReport(ctx context.Context, ownerID int64, reportID string) (*models.MeetingReport, error) {
	ret := m.Called(ctx, ownerID, reportID)
	report, _ := ret.Get(0).(*models.MeetingReport)
	return report, ret.Error(1)
}
