package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"fintrack/internal/report"
)

// CSVExporter writes one logical block per section, separated by blank rows.
type CSVExporter struct{}

func (CSVExporter) Extension() string   { return ".csv" }
func (CSVExporter) ContentType() string { return "text/csv" }

func (CSVExporter) Render(p report.Payload) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	write := func(record ...string) {
		// csv.Writer defers errors to Flush.
		_ = w.Write(record)
	}

	write(p.Title)
	if p.Subtitle != "" {
		write(p.Subtitle)
	}
	write("Generated", p.GeneratedAt.Format("2006-01-02 15:04"))

	for _, s := range p.Sections {
		write()
		write(s.Title)

		switch s.Type {
		case report.SectionMetrics:
			for _, m := range s.Items {
				record := []string{m.Label, report.FormatValue(m.Value, m.Format)}
				if m.Delta != nil {
					record = append(record, report.FormatDelta(*m.Delta))
				}
				write(record...)
			}
		case report.SectionTable:
			if len(s.Rows) == 0 {
				write(s.EmptyMessage)
				continue
			}
			write(s.Headers...)
			for _, row := range s.Rows {
				record := make([]string, len(row.Cells))
				for i, c := range row.Cells {
					record[i] = report.FormatCell(c)
				}
				write(record...)
			}
			if s.Footer != nil {
				write(s.Footer.Label, report.FormatValue(s.Footer.Value, s.Footer.Format))
			}
		case report.SectionText:
			write(s.Body)
		}
	}

	if p.Notes != "" {
		write()
		write("Notes", p.Notes)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
