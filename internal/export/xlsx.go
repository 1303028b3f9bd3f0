package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/report"
)

// XLSXExporter writes a workbook with one worksheet per section. The first
// sheet carries the report header.
type XLSXExporter struct{}

func (XLSXExporter) Extension() string { return ".xlsx" }
func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXExporter) Render(p report.Payload) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const overviewSheet = "Report"
	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	setRow(f, overviewSheet, 1, p.Title)
	setRow(f, overviewSheet, 2, p.Subtitle)
	setRow(f, overviewSheet, 3, "Generated", p.GeneratedAt.Format("2006-01-02 15:04"))
	if p.Notes != "" {
		setRow(f, overviewSheet, 5, "Notes", p.Notes)
	}

	used := map[string]bool{overviewSheet: true}
	for _, s := range p.Sections {
		name := uniqueSheetName(used, s.Title)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}

		row := 1
		switch s.Type {
		case report.SectionMetrics:
			for _, m := range s.Items {
				cells := []any{m.Label, report.FormatValue(m.Value, m.Format)}
				if m.Delta != nil {
					cells = append(cells, report.FormatDelta(*m.Delta))
				}
				setRow(f, name, row, cells...)
				row++
			}
		case report.SectionTable:
			if len(s.Rows) == 0 {
				setRow(f, name, row, s.EmptyMessage)
				continue
			}
			headers := make([]any, len(s.Headers))
			for i, h := range s.Headers {
				headers[i] = h
			}
			setRow(f, name, row, headers...)
			row++
			for _, r := range s.Rows {
				cells := make([]any, len(r.Cells))
				for i, c := range r.Cells {
					cells[i] = report.FormatCell(c)
				}
				setRow(f, name, row, cells...)
				row++
			}
			if s.Footer != nil {
				setRow(f, name, row, s.Footer.Label, report.FormatValue(s.Footer.Value, s.Footer.Format))
			}
		case report.SectionText:
			setRow(f, name, row, s.Body)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// uniqueSheetName sanitizes a section title and suffixes it when a sheet with
// that name already exists in the workbook.
func uniqueSheetName(used map[string]bool, title string) string {
	base := report.SanitizeSheetName(title)
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s %d", base, n)
	}
	used[name] = true
	return name
}
