package report

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{3.5, "3.50"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
		{-1200, "-1,200.00"},
		{999.999, "1,000.00"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{70, "70.0%"},
		{33.333, "33.3%"},
		{-12.5, "-12.5%"},
		{0, "0.0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsurePercentSuffixNeverDoubles(t *testing.T) {
	if got := ensurePercentSuffix("70.0%"); got != "70.0%" {
		t.Errorf("got %q", got)
	}
	if got := ensurePercentSuffix("70.0"); got != "70.0%" {
		t.Errorf("got %q", got)
	}
}

func TestFormatCellDispatchesOnTag(t *testing.T) {
	if got := FormatCell(NumberCell(1500)); got != "1,500.00" {
		t.Errorf("plain cell = %q", got)
	}
	// 55.55 stored as float64 is just under the midpoint, so it rounds down.
	if got := FormatCell(PercentCell(55.55)); got != "55.5%" {
		t.Errorf("percent cell = %q", got)
	}
	if got := FormatCell(TextCell("Rent")); got != "Rent" {
		t.Errorf("text cell = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(12.34); got != "+12.3%" {
		t.Errorf("got %q", got)
	}
	if got := FormatDelta(-5); got != "-5.0%" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Income Statement — Jun 2024!", "income_statement_jun_2024"},
		{"  Q2   Review  ", "q2_review"},
		{"///", "report"},
		{"", "report"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Expenses by Category", "Expenses by Category"},
		{"Q2/2024?*", "Q22024"},
		{"[Bracketed]", "Bracketed"},
		{"A very long worksheet title that keeps going", "A very long worksheet title "},
		{"?*", "Sheet"},
	}
	for _, tt := range tests {
		if got := SanitizeSheetName(tt.in); got != tt.want {
			t.Errorf("SanitizeSheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
