package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage/memory"
)

type fakeSheets struct {
	pushed []report.Payload
	err    error
}

func (f *fakeSheets) Push(_ context.Context, p report.Payload) (string, error) {
	f.pushed = append(f.pushed, p)
	return "June Report", f.err
}

func storedReport(t *testing.T, store *memory.Store) core.Report {
	t.Helper()
	payload := report.Payload{
		Title:       "June Income Statement",
		Subtitle:    "June 2024",
		GeneratedAt: time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
		Sections: []report.Section{{
			Type:  report.SectionText,
			Title: "Overview",
			Body:  "Steady month.",
		}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	r, err := store.CreateReport(context.Background(), core.Report{
		User:       "alice",
		Name:       "June Income Statement",
		ReportType: "Income Statement",
		Period:     "June 2024",
		Format:     "csv",
		Payload:    raw,
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestExportProcessorWritesFile(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	proc := NewExportProcessor(store, dir, nil, log.New(log.DefaultConfig()))
	r := storedReport(t, store)

	err := proc.Handle(context.Background(), &amqp.ReportExportMessage{
		ReportID: r.ID, User: "alice", Format: "csv",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got, err := store.GetReport(context.Background(), "alice", r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FilePath == "" {
		t.Fatal("file path not recorded")
	}
	if !strings.HasSuffix(got.FilePath, ".csv") {
		t.Errorf("FilePath = %q, want .csv suffix", got.FilePath)
	}
	data, err := os.ReadFile(got.FilePath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "June Income Statement") {
		t.Error("exported file missing report title")
	}
}

func TestExportProcessorDropsMissingReport(t *testing.T) {
	store := memory.NewStore()
	proc := NewExportProcessor(store, t.TempDir(), nil, log.New(log.DefaultConfig()))

	err := proc.Handle(context.Background(), &amqp.ReportExportMessage{
		ReportID: 999, User: "alice", Format: "csv",
	})
	if err != nil {
		t.Fatalf("missing report should be dropped, got %v", err)
	}
}

func TestExportProcessorDropsUnknownFormat(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	proc := NewExportProcessor(store, dir, nil, log.New(log.DefaultConfig()))
	r := storedReport(t, store)

	err := proc.Handle(context.Background(), &amqp.ReportExportMessage{
		ReportID: r.ID, User: "alice", Format: "docx",
	})
	if err != nil {
		t.Fatalf("unknown format should be dropped, got %v", err)
	}
	got, _ := store.GetReport(context.Background(), "alice", r.ID)
	if got.FilePath != "" {
		t.Errorf("no file should be recorded, got %q", got.FilePath)
	}
}

func TestExportProcessorRequeuesOnWriteFailure(t *testing.T) {
	store := memory.NewStore()
	proc := NewExportProcessor(store, "/nonexistent/export/dir", nil, log.New(log.DefaultConfig()))
	r := storedReport(t, store)

	err := proc.Handle(context.Background(), &amqp.ReportExportMessage{
		ReportID: r.ID, User: "alice", Format: "csv",
	})
	if err == nil {
		t.Fatal("expected error when export dir is unwritable")
	}
}

func TestExportProcessorPushesToSheets(t *testing.T) {
	store := memory.NewStore()
	sheets := &fakeSheets{}
	proc := NewExportProcessor(store, t.TempDir(), sheets, log.New(log.DefaultConfig()))
	r := storedReport(t, store)

	if err := proc.Handle(context.Background(), &amqp.ReportExportMessage{
		ReportID: r.ID, User: "alice", Format: "csv",
	}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sheets.pushed) != 1 {
		t.Fatalf("sheets pushes = %d, want 1", len(sheets.pushed))
	}
	if sheets.pushed[0].Title != "June Income Statement" {
		t.Errorf("pushed title = %q", sheets.pushed[0].Title)
	}
}

func TestExportProcessorSheetsFailureIsBestEffort(t *testing.T) {
	store := memory.NewStore()
	sheets := &fakeSheets{err: errors.New("quota exceeded")}
	proc := NewExportProcessor(store, t.TempDir(), sheets, log.New(log.DefaultConfig()))
	r := storedReport(t, store)

	if err := proc.Handle(context.Background(), &amqp.ReportExportMessage{
		ReportID: r.ID, User: "alice", Format: "csv",
	}); err != nil {
		t.Fatalf("sheets failure must not fail the export, got %v", err)
	}
}
