package report

import (
	"regexp"
	"strconv"
	"strings"
)

// FormatNumber renders a plain numeric value with thousands separators and
// two decimals: 1234.5 -> "1,234.50".
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// FormatPercent renders a percentage value with one decimal and a trailing
// percent sign: 70 -> "70.0%".
func FormatPercent(v float64) string {
	return ensurePercentSuffix(strconv.FormatFloat(v, 'f', 1, 64))
}

// ensurePercentSuffix appends "%" without ever doubling it.
func ensurePercentSuffix(s string) string {
	return strings.TrimSuffix(s, "%") + "%"
}

// FormatValue renders a numeric value according to its format tag.
func FormatValue(v float64, format ValueFormat) string {
	if format == FormatPercentage {
		return FormatPercent(v)
	}
	return FormatNumber(v)
}

// FormatCell renders a single table cell.
func FormatCell(c Cell) string {
	if c.Kind == CellNumber {
		return FormatValue(c.Value, c.Format)
	}
	return c.Text
}

// FormatDelta renders a period-over-period change with an explicit sign:
// 12.34 -> "+12.3%", -5 -> "-5.0%".
func FormatDelta(v float64) string {
	if v >= 0 {
		return "+" + FormatPercent(v)
	}
	return FormatPercent(v)
}

var (
	filenameStrip   = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	sheetNameStrip  = regexp.MustCompile(`[\\/?*\[\]]`)
	maxSheetNameLen = 28
)

// SanitizeFilename slugifies a report name for use as a file name: strip
// everything but word characters, spaces and hyphens, collapse whitespace to
// underscores, lowercase. Falls back to "report" when nothing survives.
func SanitizeFilename(name string) string {
	s := filenameStrip.ReplaceAllString(name, "")
	s = whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.ToLower(s)
	if s == "" {
		return "report"
	}
	return s
}

// SanitizeSheetName makes a string safe as an XLSX worksheet name: the
// characters excel rejects are stripped and the result is truncated to leave
// room for a numeric suffix. Falls back to "Sheet" when nothing survives.
func SanitizeSheetName(name string) string {
	s := sheetNameStrip.ReplaceAllString(name, "")
	s = strings.TrimSpace(s)
	if len(s) > maxSheetNameLen {
		s = s[:maxSheetNameLen]
	}
	if s == "" {
		return "Sheet"
	}
	return s
}
