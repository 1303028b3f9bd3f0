package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"fintrack/internal/report"
)

// PDFExporter renders a paginated A4 document, one block per section.
type PDFExporter struct{}

func (PDFExporter) Extension() string   { return ".pdf" }
func (PDFExporter) ContentType() string { return "application/pdf" }

const pageWidth = 190.0

func (PDFExporter) Render(p report.Payload) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Generated "+p.GeneratedAt.Format("2006-01-02 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	drawSectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(33, 37, 41)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+pageWidth, pdf.GetY())
		pdf.Ln(4)
	}

	pdf.SetFillColor(44, 62, 80)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  "+p.Title), "", 1, "L", true, 0, "")
	if p.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(0, 8, tr("  "+p.Subtitle), "", 1, "L", true, 0, "")
	}
	pdf.Ln(8)

	for _, s := range p.Sections {
		drawSectionTitle(s.Title)

		switch s.Type {
		case report.SectionMetrics:
			pdf.SetFont("Arial", "", 10)
			pdf.SetTextColor(33, 37, 41)
			for _, m := range s.Items {
				pdf.CellFormat(pageWidth/2, 7, tr(m.Label), "B", 0, "L", false, 0, "")
				value := report.FormatValue(m.Value, m.Format)
				if m.Delta != nil {
					value += "  (" + report.FormatDelta(*m.Delta) + ")"
				}
				pdf.CellFormat(pageWidth/2, 7, tr(value), "B", 1, "R", false, 0, "")
			}
		case report.SectionTable:
			if len(s.Rows) == 0 {
				pdf.SetFont("Arial", "I", 10)
				pdf.SetTextColor(100, 100, 100)
				pdf.MultiCell(pageWidth, 5, tr(s.EmptyMessage), "", "L", false)
				pdf.Ln(8)
				continue
			}
			colWidth := pageWidth / float64(len(s.Headers))

			pdf.SetFont("Arial", "B", 10)
			pdf.SetFillColor(230, 230, 230)
			pdf.SetTextColor(33, 37, 41)
			for _, h := range s.Headers {
				pdf.CellFormat(colWidth, 7, tr(h), "1", 0, "L", true, 0, "")
			}
			pdf.Ln(-1)

			pdf.SetFont("Arial", "", 10)
			for _, row := range s.Rows {
				for _, c := range row.Cells {
					align := "L"
					if c.Kind == report.CellNumber {
						align = "R"
					}
					pdf.CellFormat(colWidth, 7, tr(report.FormatCell(c)), "1", 0, align, false, 0, "")
				}
				pdf.Ln(-1)
			}

			if s.Footer != nil {
				pdf.SetFont("Arial", "B", 10)
				pdf.CellFormat(colWidth*float64(len(s.Headers)-1), 7, tr(s.Footer.Label), "1", 0, "L", false, 0, "")
				pdf.CellFormat(colWidth, 7, tr(report.FormatValue(s.Footer.Value, s.Footer.Format)), "1", 1, "R", false, 0, "")
			}
		case report.SectionText:
			pdf.SetFont("Arial", "", 10)
			pdf.SetTextColor(33, 37, 41)
			pdf.MultiCell(pageWidth, 5, tr(s.Body), "", "L", false)
		}
		pdf.Ln(8)
	}

	if p.Notes != "" {
		drawSectionTitle("Notes")
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(33, 37, 41)
		pdf.MultiCell(pageWidth, 5, tr(p.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
