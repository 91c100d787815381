package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Abdox72/ITZone/internal/models"
	"github.com/Abdox72/ITZone/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryFiles хранит объекты в памяти.
type memoryFiles struct {
	objects      map[string][]byte
	contentTypes map[string]string
	uploadErr    error
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryFiles) UploadFile(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return nil
}

func (m *memoryFiles) DownloadFile(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "reports/42/abc.json", storage.ReportKey(42, "abc"))
}

func TestReportStore_PutAndGet(t *testing.T) {
	files := newMemoryFiles()
	store := storage.NewReportStore(files)
	report := &models.MeetingReport{
		ID:         "3f1c",
		OwnerID:    7,
		FileName:   "standup.mp3",
		Transcript: "hello",
		Analysis:   "summary",
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.PutReport(context.Background(), report))
	assert.Equal(t, "application/json", files.contentTypes["reports/7/3f1c.json"])
	assert.True(t, strings.Contains(string(files.objects["reports/7/3f1c.json"]), `"transcript":"hello"`))

	got, err := store.GetReport(context.Background(), 7, "3f1c")
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestReportStore_GetReport_NotFound(t *testing.T) {
	store := storage.NewReportStore(newMemoryFiles())

	_, err := store.GetReport(context.Background(), 7, "missing")
	assert.ErrorIs(t, err, storage.ErrReportNotFound)
}

func TestReportStore_GetReport_OtherOwner(t *testing.T) {
	files := newMemoryFiles()
	store := storage.NewReportStore(files)
	require.NoError(t, store.PutReport(context.Background(), &models.MeetingReport{ID: "r1", OwnerID: 1}))

	_, err := store.GetReport(context.Background(), 2, "r1")
	assert.ErrorIs(t, err, storage.ErrReportNotFound)
}

func TestReportStore_PutReport_Error(t *testing.T) {
	files := newMemoryFiles()
	files.uploadErr = errors.New("minio down")
	store := storage.NewReportStore(files)

	err := store.PutReport(context.Background(), &models.MeetingReport{ID: "r1", OwnerID: 1})
	assert.EqualError(t, err, "minio down")
}
