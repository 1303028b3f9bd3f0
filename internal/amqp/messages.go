package amqp

import (
	"encoding/json"
	"time"
)

// ReportExportMessage asks the worker to render a stored report to a file.
// It carries only the report ID and target format; the worker fetches the
// payload from the database so the queue never holds stale report content.
type ReportExportMessage struct {
	ReportID    int64     `json:"reportId"`
	User        string    `json:"user"`
	Format      string    `json:"format"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewReportExportMessage creates an export request message.
func NewReportExportMessage(reportID int64, user, format string) *ReportExportMessage {
	return &ReportExportMessage{
		ReportID:    reportID,
		User:        user,
		Format:      format,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportExportMessageFromJSON creates a message from JSON bytes
func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
