package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func samplePayload() report.Payload {
	in := report.Input{
		Transactions: []core.Transaction{
			{Type: core.Income, Category: "Salary", Amount: 5000, Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
			{Type: core.Expense, Category: "Rent", Amount: 1200, Date: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)},
			{Type: core.Expense, Category: "Food", Amount: 300, Date: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)},
		},
		PeriodLabel: "Jun 2024",
		GeneratedAt: time.Date(2024, time.June, 20, 9, 30, 0, 0, time.UTC),
	}
	return report.Build("Income Statement", in)
}

func TestForFormat(t *testing.T) {
	for _, format := range Formats() {
		if _, err := ForFormat(format); err != nil {
			t.Errorf("ForFormat(%q): %v", format, err)
		}
	}
	if _, err := ForFormat("docx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestFilename(t *testing.T) {
	got, err := Filename("June Income Statement", "pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "june_income_statement.pdf" {
		t.Errorf("got %q", got)
	}
	if _, err := Filename("x", "docx"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCSVRender(t *testing.T) {
	out, err := (CSVExporter{}).Render(samplePayload())
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	for _, want := range []string{
		"Income Statement",
		"Jun 2024",
		"Generated,2024-06-20 09:30",
		"Profit Margin,70.0%",
		"Total Income,\"5,000.00\"",
		"Category,Amount",
		"Rent,\"1,200.00\"",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("csv missing %q", want)
		}
	}
	if strings.Contains(text, "%%") {
		t.Error("doubled percent sign in csv")
	}
}

func TestCSVEmptyTableUsesEmptyMessage(t *testing.T) {
	p := report.Build("Expense Summary", report.Input{
		PeriodLabel: "Jun 2024",
		GeneratedAt: time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC),
	})
	out, err := (CSVExporter{}).Render(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "No expenses recorded for this period.") {
		t.Error("empty message not rendered")
	}
}

func TestHTMLRenderAgreesWithCSVOnFormatting(t *testing.T) {
	p := samplePayload()
	html, err := (HTMLExporter{}).Render(p)
	if err != nil {
		t.Fatal(err)
	}
	text := string(html)

	// Both renderers dispatch on the same format tags.
	for _, want := range []string{"70.0%", "5,000.00", "1,200.00", "Income Statement", "Jun 2024"} {
		if !strings.Contains(text, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if !strings.Contains(text, "<!DOCTYPE html>") {
		t.Error("not a standalone document")
	}
}

func TestHTMLEscapesUserContent(t *testing.T) {
	p := samplePayload()
	p.Notes = `<script>alert("x")</script>`
	html, err := (HTMLExporter{}).Render(p)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(html), "<script>alert") {
		t.Error("notes not escaped")
	}
}

func TestXLSXRender(t *testing.T) {
	out, err := (XLSXExporter{}).Render(samplePayload())
	if err != nil {
		t.Fatal(err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Error("output is not a zip archive")
	}
}

func TestPDFRender(t *testing.T) {
	out, err := (PDFExporter{}).Render(samplePayload())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a pdf document")
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	first := uniqueSheetName(used, "Expenses by Category")
	second := uniqueSheetName(used, "Expenses by Category")
	if first == second {
		t.Errorf("names collide: %q", first)
	}
	if second != "Expenses by Category 2" {
		t.Errorf("second = %q", second)
	}
}

func TestPayloadRowsMirrorsSections(t *testing.T) {
	p := samplePayload()
	rows := PayloadRows(p)
	if len(rows) == 0 {
		t.Fatal("no rows")
	}
	if rows[0][0] != "Income Statement" {
		t.Errorf("first row = %v", rows[0])
	}

	var found bool
	for _, row := range rows {
		if len(row) >= 2 && row[0] == "Profit Margin" && row[1] == "70.0%" {
			found = true
		}
	}
	if !found {
		t.Error("profit margin row missing or misformatted")
	}
}
