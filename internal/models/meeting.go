package models

import "time"

// MeetingAnalysis представляет ответ POST /audio/analyze-meeting/.
type MeetingAnalysis struct {
	Transcript string `json:"transcript"`
	Analysis   string `json:"analysis"`
	// ReportID заполняется, если отчет сохранен в архив.
	ReportID string `json:"report_id,omitempty"`
}

// MeetingReport это документ, который архивируется в объектное хранилище
// после успешного анализа записи встречи.
type MeetingReport struct {
	ID         string    `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	FileName   string    `json:"file_name"`
	Transcript string    `json:"transcript"`
	Analysis   string    `json:"analysis"`
	CreatedAt  time.Time `json:"created_at"`
}
