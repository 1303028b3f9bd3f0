package report

import (
	"encoding/json"
	"time"
)

// Fallback seeds a payload when the stored blob carries no usable content,
// typically a historical record written before payloads were structured.
type Fallback struct {
	Title       string
	ReportType  string
	Period      string
	GeneratedAt time.Time
}

// legacyLine is one entry of the flat payload shape used by early records.
type legacyLine struct {
	Label string          `json:"label"`
	Value json.RawMessage `json:"value"`
}

// loosePayload tolerates both the structured and the legacy shape. Pointer
// slices distinguish "present but empty" from "absent".
type loosePayload struct {
	Title       string             `json:"title"`
	Subtitle    string             `json:"subtitle"`
	GeneratedAt time.Time          `json:"generatedAt"`
	StartDate   *time.Time         `json:"startDate"`
	EndDate     *time.Time         `json:"endDate"`
	Notes       string             `json:"notes"`
	Sections    *[]Section         `json:"sections"`
	Summary     map[string]float64 `json:"summary"`
	Lines       *[]legacyLine      `json:"lines"`
}

// Normalize turns a stored payload blob of any vintage into the structured
// shape every renderer consumes. Structured payloads pass through unchanged,
// the legacy lines shape becomes a single "Details" table, and anything else
// yields an empty-sections payload seeded from fallback. Normalizing an
// already-normalized payload is a no-op.
func Normalize(raw json.RawMessage, fb Fallback) Payload {
	var loose loosePayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &loose); err != nil {
			loose = loosePayload{}
		}
	}

	switch {
	case loose.Sections != nil:
		return Payload{
			Title:       defaultString(loose.Title, fallbackTitle(fb)),
			Subtitle:    defaultString(loose.Subtitle, fb.Period),
			GeneratedAt: defaultTime(loose.GeneratedAt, fb.GeneratedAt),
			StartDate:   loose.StartDate,
			EndDate:     loose.EndDate,
			Notes:       loose.Notes,
			Sections:    *loose.Sections,
			Summary:     loose.Summary,
		}
	case loose.Lines != nil:
		rows := make([]Row, 0, len(*loose.Lines))
		for _, line := range *loose.Lines {
			rows = append(rows, Row{Cells: []Cell{TextCell(line.Label), legacyValueCell(line.Value)}})
		}
		return Payload{
			Title:       defaultString(loose.Title, fallbackTitle(fb)),
			Subtitle:    defaultString(loose.Subtitle, fb.Period),
			GeneratedAt: defaultTime(loose.GeneratedAt, fb.GeneratedAt),
			Notes:       loose.Notes,
			Sections: []Section{{
				Type:    SectionTable,
				Title:   "Details",
				Headers: []string{"Label", "Value"},
				Rows:    rows,
			}},
			Summary: loose.Summary,
		}
	default:
		return Payload{
			Title:       fallbackTitle(fb),
			Subtitle:    fb.Period,
			GeneratedAt: defaultTime(time.Time{}, fb.GeneratedAt),
			Sections:    []Section{},
		}
	}
}

// NormalizePayload is Normalize for a payload already in memory.
func NormalizePayload(p Payload, fb Fallback) Payload {
	raw, err := json.Marshal(p)
	if err != nil {
		raw = nil
	}
	return Normalize(raw, fb)
}

// legacyValueCell maps a legacy line value to a typed cell. Numbers stay
// numeric so formatting rules still apply; everything else renders as text.
func legacyValueCell(raw json.RawMessage) Cell {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return NumberCell(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return TextCell(s)
	}
	return TextCell(string(raw))
}

func fallbackTitle(fb Fallback) string {
	if fb.Title != "" {
		return fb.Title
	}
	if fb.ReportType != "" {
		return fb.ReportType
	}
	return "Report"
}

func defaultString(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

func defaultTime(t, def time.Time) time.Time {
	if !t.IsZero() {
		return t
	}
	if !def.IsZero() {
		return def
	}
	return time.Now()
}
