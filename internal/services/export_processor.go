package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/amqp"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// SheetsPusher is the optional Google Sheets delivery target.
type SheetsPusher interface {
	Push(ctx context.Context, p report.Payload) (string, error)
}

// ExportProcessor consumes export requests, renders the stored payload to the
// requested format and records the output path on the report.
type ExportProcessor struct {
	store     storage.Store
	exportDir string
	sheets    SheetsPusher
	logger    *log.Logger
}

func NewExportProcessor(store storage.Store, exportDir string, sheets SheetsPusher, logger *log.Logger) *ExportProcessor {
	return &ExportProcessor{
		store:     store,
		exportDir: exportDir,
		sheets:    sheets,
		logger:    logger.WithComponent(log.ComponentExport),
	}
}

// Handle processes one export request. Permanent failures (missing report,
// unknown format) return nil so the message is acked rather than requeued
// forever; transient failures return the error to trigger a requeue.
func (p *ExportProcessor) Handle(ctx context.Context, msg *amqp.ReportExportMessage) error {
	r, err := p.store.GetReport(ctx, msg.User, msg.ReportID)
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.WarnContext(ctx, "Report no longer exists, dropping export request",
			log.FieldReportID, msg.ReportID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	payload := report.Normalize(r.Payload, report.Fallback{
		Title:       r.Name,
		ReportType:  r.ReportType,
		Period:      r.Period,
		GeneratedAt: r.CreatedAt,
	})

	exporter, err := export.ForFormat(msg.Format)
	if err != nil {
		p.logger.WarnContext(ctx, "Unsupported export format, dropping request",
			log.FieldReportID, msg.ReportID, log.FieldFormat, msg.Format)
		return nil
	}

	data, err := exporter.Render(payload)
	if err != nil {
		return fmt.Errorf("render %s: %w", msg.Format, err)
	}

	filename := fmt.Sprintf("%d_%s%s", r.ID, report.SanitizeFilename(r.Name), exporter.Extension())
	path := filepath.Join(p.exportDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	if err := p.store.SetReportFilePath(ctx, r.ID, path); err != nil {
		return fmt.Errorf("record file path: %w", err)
	}

	if p.sheets != nil {
		if sheetName, err := p.sheets.Push(ctx, payload); err != nil {
			// Sheets delivery is best effort; the file export succeeded.
			p.logger.ErrorContext(ctx, "Failed to push report to Google Sheets",
				log.FieldReportID, r.ID, log.FieldError, err)
		} else {
			p.logger.InfoContext(ctx, "Pushed report to Google Sheets",
				log.FieldReportID, r.ID, "sheet", sheetName)
		}
	}

	p.logger.InfoContext(ctx, "Report exported",
		log.FieldReportID, r.ID, log.FieldFormat, msg.Format, log.FieldFilePath, path)
	return nil
}
