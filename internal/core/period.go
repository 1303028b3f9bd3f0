package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	PeriodCurrentMonth PeriodKey = "current-month"
	PeriodLastMonth    PeriodKey = "last-month"
	PeriodQ1           PeriodKey = "q1"
	PeriodQ2           PeriodKey = "q2"
	PeriodQ3           PeriodKey = "q3"
	PeriodQ4           PeriodKey = "q4"
	PeriodYTD          PeriodKey = "ytd"
	PeriodLastYear     PeriodKey = "last-year"
	PeriodRolling90    PeriodKey = "rolling-90"
	PeriodCustom       PeriodKey = "custom"
)

type (
	// PeriodKey names a calendar-relative reporting window.
	PeriodKey string

	// CustomRange carries caller-supplied bounds for the "custom" period.
	// Dates accept "2006-01-02" or RFC 3339 input.
	CustomRange struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Label     string `json:"label,omitempty"`
	}

	// DateRange is a concrete reporting window. Start is always clamped to
	// 00:00:00.000 and End to 23:59:59.999 of their calendar days, and
	// Start <= End holds for every range this package produces.
	DateRange struct {
		Start time.Time
		End   time.Time
		Label string
	}
)

var (
	// ErrInvalidPeriod reports unusable caller input for a custom period.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidRange reports an internal range invariant violation. Upstream
	// validation makes it unreachable for caller input.
	ErrInvalidRange = errors.New("invalid date range")
)

// StartOfDay clamps t to 00:00:00.000 of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay clamps t to 23:59:59.999 of its calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ParseDateInput parses user-facing date input, accepting a bare day or a full
// RFC 3339 timestamp. The second return is false when the input is empty or
// unparseable.
func ParseDateInput(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatRangeLabel renders a human label for a pair of optional bounds.
func FormatRangeLabel(start, end time.Time) string {
	const day = "Jan 2, 2006"
	switch {
	case start.IsZero() && end.IsZero():
		return "All Time"
	case !start.IsZero() && !end.IsZero():
		return start.Format(day) + " – " + end.Format(day)
	case !start.IsZero():
		return "From " + start.Format(day)
	default:
		return "Through " + end.Format(day)
	}
}

// ResolvePeriod turns a period key (or explicit custom bounds) into a concrete
// date range relative to ref's local calendar. The reference time of day is
// irrelevant; it is normalized to noon before boundaries are derived so DST
// transitions cannot shift the day.
//
// An unrecognized key deliberately falls back to the custom bounds when both
// are present, and to the current month otherwise, so that stale or
// client-invented keys still yield a usable report window.
func ResolvePeriod(key PeriodKey, custom CustomRange, ref time.Time) (DateRange, error) {
	year, month, d := ref.Date()
	noon := time.Date(year, month, d, 12, 0, 0, 0, ref.Location())

	switch key {
	case PeriodCurrentMonth, "":
		return monthRange(year, month, ref.Location()), nil
	case PeriodLastMonth:
		return monthRange(year, month-1, ref.Location()), nil
	case PeriodQ1:
		return quarterRange(1, year, ref.Location()), nil
	case PeriodQ2:
		return quarterRange(2, year, ref.Location()), nil
	case PeriodQ3:
		return quarterRange(3, year, ref.Location()), nil
	case PeriodQ4:
		return quarterRange(4, year, ref.Location()), nil
	case PeriodYTD:
		return DateRange{
			Start: StartOfDay(time.Date(year, time.January, 1, 0, 0, 0, 0, ref.Location())),
			End:   EndOfDay(noon),
			Label: fmt.Sprintf("Year to Date %d", year),
		}, nil
	case PeriodLastYear:
		return DateRange{
			Start: StartOfDay(time.Date(year-1, time.January, 1, 0, 0, 0, 0, ref.Location())),
			End:   EndOfDay(time.Date(year-1, time.December, 31, 0, 0, 0, 0, ref.Location())),
			Label: fmt.Sprintf("%d", year-1),
		}, nil
	case PeriodRolling90:
		// 90-day window including the reference day itself.
		return DateRange{
			Start: StartOfDay(noon.AddDate(0, 0, -89)),
			End:   EndOfDay(noon),
			Label: "Last 90 Days",
		}, nil
	case PeriodCustom:
		start, startOK := ParseDateInput(custom.StartDate)
		end, endOK := ParseDateInput(custom.EndDate)
		if !startOK || !endOK {
			return DateRange{}, fmt.Errorf("%w: custom period requires valid start and end dates", ErrInvalidPeriod)
		}
		r := DateRange{Start: StartOfDay(start), End: EndOfDay(end)}
		if r.Start.After(r.End) {
			return DateRange{}, fmt.Errorf("%w: custom period start date must be before end date", ErrInvalidPeriod)
		}
		r.Label = custom.Label
		if r.Label == "" {
			r.Label = FormatRangeLabel(r.Start, r.End)
		}
		return r, nil
	default:
		start, startOK := ParseDateInput(custom.StartDate)
		end, endOK := ParseDateInput(custom.EndDate)
		if startOK && endOK {
			r := DateRange{Start: StartOfDay(start), End: EndOfDay(end)}
			if r.Start.After(r.End) {
				return DateRange{}, fmt.Errorf("%w: period start date must be before end date", ErrInvalidPeriod)
			}
			r.Label = FormatRangeLabel(r.Start, r.End)
			return r, nil
		}
		return monthRange(year, month, ref.Location()), nil
	}
}

// PreviousRange derives the immediately preceding window of equal duration:
// it ends one millisecond before r starts (clamped to end-of-day) and spans
// the same number of milliseconds. The second return is false for ranges with
// a missing bound, where no fair comparison window exists.
func PreviousRange(r DateRange) (DateRange, bool) {
	if r.Start.IsZero() || r.End.IsZero() {
		return DateRange{}, false
	}
	duration := r.End.Sub(r.Start)
	prevEnd := EndOfDay(r.Start.Add(-time.Millisecond))
	prevStart := StartOfDay(prevEnd.Add(-duration))
	return DateRange{
		Start: prevStart,
		End:   prevEnd,
		Label: FormatRangeLabel(prevStart, prevEnd),
	}, true
}

// monthRange builds the full-month range for the given year/month. Month may
// be out of [1,12]; time.Date normalizes it, which is also how the month-end
// is found (day 0 of the following month).
func monthRange(year int, month time.Month, loc *time.Location) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := EndOfDay(time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, loc))
	return DateRange{Start: start, End: end, Label: start.Format("Jan 2006")}
}

func quarterRange(q int, year int, loc *time.Location) DateRange {
	startMonth := time.Month((q-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, loc)
	end := EndOfDay(time.Date(year, startMonth+3, 0, 0, 0, 0, 0, loc))
	return DateRange{Start: start, End: end, Label: fmt.Sprintf("Q%d %d", q, year)}
}
