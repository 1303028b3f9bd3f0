// Package report assembles renderer-agnostic report payloads from aggregated
// transaction data. Every exporter and the on-screen preview consume the same
// payload shape, so formatting decisions are carried as explicit tags instead
// of being re-derived per renderer.
package report

import (
	"time"

	"fintrack/internal/core"
)

// SectionType discriminates the members of the Section union.
type SectionType string

const (
	SectionMetrics SectionType = "metrics"
	SectionTable   SectionType = "table"
	SectionText    SectionType = "text"
)

// ValueFormat tags how a numeric value must be rendered. The empty format
// means a plain 2-decimal number. Renderers dispatch on this tag only, never
// on magnitude or label text.
type ValueFormat string

const FormatPercentage ValueFormat = "percentage"

// MetricKind hints at the visual treatment of a metric.
type MetricKind string

const (
	KindNegative MetricKind = "negative"
	KindWarning  MetricKind = "warning"
)

// Metric is one entry of a metrics section. Delta is nil when no comparison
// window exists.
type Metric struct {
	Label  string      `json:"label"`
	Value  float64     `json:"value"`
	Delta  *float64    `json:"delta,omitempty"`
	Format ValueFormat `json:"format,omitempty"`
	Kind   MetricKind  `json:"kind,omitempty"`
}

// CellKind discriminates table cell content.
type CellKind string

const (
	CellText   CellKind = "text"
	CellNumber CellKind = "number"
)

// Cell is one table cell. Numeric cells carry their format tag so exporters
// agree on percentage versus plain rendering.
type Cell struct {
	Kind   CellKind    `json:"kind"`
	Text   string      `json:"text,omitempty"`
	Value  float64     `json:"value,omitempty"`
	Format ValueFormat `json:"format,omitempty"`
}

func TextCell(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Value: v} }
func PercentCell(v float64) Cell {
	return Cell{Kind: CellNumber, Value: v, Format: FormatPercentage}
}

// Row is one table row.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Footer is an optional table summary line.
type Footer struct {
	Label  string      `json:"label"`
	Value  float64     `json:"value"`
	Format ValueFormat `json:"format,omitempty"`
}

// Section is a tagged union. Type selects which field group is meaningful:
// Items for metrics, Headers/Rows/Footer/EmptyMessage for table, Body for
// text.
type Section struct {
	Type  SectionType `json:"type"`
	Title string      `json:"title"`

	Items []Metric `json:"items,omitempty"`

	Headers      []string `json:"headers,omitempty"`
	Rows         []Row    `json:"rows,omitempty"`
	Footer       *Footer  `json:"footer,omitempty"`
	EmptyMessage string   `json:"emptyMessage,omitempty"`

	Body string `json:"body,omitempty"`
}

// Payload is the canonical structured representation of a generated report.
// It is persisted verbatim alongside the Report record and fed unchanged to
// every exporter.
type Payload struct {
	Title       string             `json:"title"`
	Subtitle    string             `json:"subtitle"`
	GeneratedAt time.Time          `json:"generatedAt"`
	StartDate   *time.Time         `json:"startDate,omitempty"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Sections    []Section          `json:"sections"`
	Summary     map[string]float64 `json:"summary,omitempty"`
}

// Input carries everything a builder needs. Builders are pure; the caller
// fetches all three transaction windows up front.
type Input struct {
	Transactions []core.Transaction
	Previous     []core.Transaction
	HasPrevious  bool
	// Cumulative holds every transaction through the period end, used only
	// by the balance sheet.
	Cumulative  []core.Transaction
	PeriodLabel string
	Start       time.Time
	End         time.Time
	GeneratedAt time.Time
	Notes       string
}
