// Package export renders normalized report payloads to their target formats.
// Renderers carry no business logic; every number is formatted through the
// report package's rules so all outputs agree with the on-screen preview.
package export

import (
	"errors"
	"fmt"

	"fintrack/internal/report"
)

// ErrUnsupportedFormat is returned for a format no renderer handles.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Exporter turns a normalized payload into bytes for one target format.
type Exporter interface {
	Render(p report.Payload) ([]byte, error)
	Extension() string
	ContentType() string
}

// Formats lists the supported export format names.
func Formats() []string {
	return []string{"csv", "xlsx", "pdf", "html"}
}

// ForFormat returns the exporter for the named format.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "csv":
		return CSVExporter{}, nil
	case "xlsx":
		return XLSXExporter{}, nil
	case "pdf":
		return PDFExporter{}, nil
	case "html":
		return HTMLExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Filename derives the download file name for a report name and format.
func Filename(name, format string) (string, error) {
	exporter, err := ForFormat(format)
	if err != nil {
		return "", err
	}
	return report.SanitizeFilename(name) + exporter.Extension(), nil
}
