package core

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriodCalendarKeys(t *testing.T) {
	ref := time.Date(2024, time.June, 20, 17, 45, 0, 0, time.UTC)

	tests := []struct {
		name      string
		key       PeriodKey
		wantStart time.Time
		wantEnd   time.Time
		wantLabel string
	}{
		{"current month", PeriodCurrentMonth, date(2024, time.June, 1), date(2024, time.June, 30), "Jun 2024"},
		{"empty key defaults to current month", "", date(2024, time.June, 1), date(2024, time.June, 30), "Jun 2024"},
		{"last month", PeriodLastMonth, date(2024, time.May, 1), date(2024, time.May, 31), "May 2024"},
		{"q1", PeriodQ1, date(2024, time.January, 1), date(2024, time.March, 31), "Q1 2024"},
		{"q2", PeriodQ2, date(2024, time.April, 1), date(2024, time.June, 30), "Q2 2024"},
		{"q3", PeriodQ3, date(2024, time.July, 1), date(2024, time.September, 30), "Q3 2024"},
		{"q4", PeriodQ4, date(2024, time.October, 1), date(2024, time.December, 31), "Q4 2024"},
		{"ytd", PeriodYTD, date(2024, time.January, 1), date(2024, time.June, 20), "Year to Date 2024"},
		{"last year", PeriodLastYear, date(2023, time.January, 1), date(2023, time.December, 31), "2023"},
		{"rolling 90", PeriodRolling90, date(2024, time.March, 23), date(2024, time.June, 20), "Last 90 Days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePeriod(tt.key, CustomRange{}, ref)
			if err != nil {
				t.Fatalf("ResolvePeriod: %v", err)
			}
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(EndOfDay(tt.wantEnd)) {
				t.Errorf("end = %v, want %v", got.End, EndOfDay(tt.wantEnd))
			}
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
		})
	}
}

func TestResolvePeriodMonthEndClamping(t *testing.T) {
	tests := []struct {
		name    string
		ref     time.Time
		key     PeriodKey
		wantEnd time.Time
	}{
		{"leap february", date(2024, time.February, 11), PeriodCurrentMonth, date(2024, time.February, 29)},
		{"non-leap february", date(2023, time.February, 11), PeriodCurrentMonth, date(2023, time.February, 28)},
		{"last month across year boundary", date(2024, time.January, 15), PeriodLastMonth, date(2023, time.December, 31)},
		{"thirty day month", date(2024, time.April, 2), PeriodCurrentMonth, date(2024, time.April, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePeriod(tt.key, CustomRange{}, tt.ref)
			if err != nil {
				t.Fatalf("ResolvePeriod: %v", err)
			}
			if !got.End.Equal(EndOfDay(tt.wantEnd)) {
				t.Errorf("end = %v, want %v", got.End, EndOfDay(tt.wantEnd))
			}
		})
	}
}

func TestResolvePeriodCustom(t *testing.T) {
	ref := date(2024, time.June, 20)

	t.Run("valid bounds", func(t *testing.T) {
		got, err := ResolvePeriod(PeriodCustom, CustomRange{StartDate: "2024-03-05", EndDate: "2024-03-20"}, ref)
		if err != nil {
			t.Fatalf("ResolvePeriod: %v", err)
		}
		if !got.Start.Equal(date(2024, time.March, 5)) {
			t.Errorf("start = %v", got.Start)
		}
		if !got.End.Equal(EndOfDay(date(2024, time.March, 20))) {
			t.Errorf("end = %v", got.End)
		}
		if got.Label != "Mar 5, 2024 – Mar 20, 2024" {
			t.Errorf("label = %q", got.Label)
		}
	})

	t.Run("explicit label wins", func(t *testing.T) {
		got, err := ResolvePeriod(PeriodCustom, CustomRange{StartDate: "2024-03-05", EndDate: "2024-03-20", Label: "Audit Window"}, ref)
		if err != nil {
			t.Fatalf("ResolvePeriod: %v", err)
		}
		if got.Label != "Audit Window" {
			t.Errorf("label = %q", got.Label)
		}
	})

	t.Run("rfc3339 input accepted", func(t *testing.T) {
		got, err := ResolvePeriod(PeriodCustom, CustomRange{StartDate: "2024-03-05T09:30:00Z", EndDate: "2024-03-20T18:00:00Z"}, ref)
		if err != nil {
			t.Fatalf("ResolvePeriod: %v", err)
		}
		if !got.Start.Equal(date(2024, time.March, 5)) || !got.End.Equal(EndOfDay(date(2024, time.March, 20))) {
			t.Errorf("range = %v .. %v", got.Start, got.End)
		}
	})

	for _, tt := range []struct {
		name   string
		custom CustomRange
	}{
		{"missing start", CustomRange{EndDate: "2024-03-20"}},
		{"missing end", CustomRange{StartDate: "2024-03-05"}},
		{"unparseable start", CustomRange{StartDate: "not-a-date", EndDate: "2024-03-20"}},
		{"inverted", CustomRange{StartDate: "2024-03-20", EndDate: "2024-03-05"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePeriod(PeriodCustom, tt.custom, ref)
			if !errors.Is(err, ErrInvalidPeriod) {
				t.Errorf("err = %v, want ErrInvalidPeriod", err)
			}
		})
	}
}

func TestResolvePeriodUnknownKeyFallback(t *testing.T) {
	ref := date(2024, time.June, 20)

	t.Run("falls back to custom bounds when both present", func(t *testing.T) {
		got, err := ResolvePeriod("quarterly-ish", CustomRange{StartDate: "2024-01-10", EndDate: "2024-02-10"}, ref)
		if err != nil {
			t.Fatalf("ResolvePeriod: %v", err)
		}
		if !got.Start.Equal(date(2024, time.January, 10)) {
			t.Errorf("start = %v", got.Start)
		}
	})

	t.Run("falls back to current month otherwise", func(t *testing.T) {
		got, err := ResolvePeriod("quarterly-ish", CustomRange{StartDate: "2024-01-10"}, ref)
		if err != nil {
			t.Fatalf("ResolvePeriod: %v", err)
		}
		if got.Label != "Jun 2024" {
			t.Errorf("label = %q", got.Label)
		}
	})
}

func TestResolvePeriodIgnoresReferenceTimeOfDay(t *testing.T) {
	for _, hour := range []int{0, 11, 23} {
		ref := time.Date(2024, time.June, 20, hour, 59, 59, 0, time.UTC)
		got, err := ResolvePeriod(PeriodRolling90, CustomRange{}, ref)
		if err != nil {
			t.Fatalf("ResolvePeriod: %v", err)
		}
		if !got.Start.Equal(date(2024, time.March, 23)) {
			t.Errorf("hour %d: start = %v", hour, got.Start)
		}
	}
}

func TestPreviousRange(t *testing.T) {
	t.Run("month window", func(t *testing.T) {
		cur := DateRange{Start: date(2024, time.June, 1), End: EndOfDay(date(2024, time.June, 30))}
		prev, ok := PreviousRange(cur)
		if !ok {
			t.Fatal("expected a previous range")
		}
		if !prev.End.Equal(EndOfDay(date(2024, time.May, 31))) {
			t.Errorf("prev end = %v", prev.End)
		}
		if !prev.Start.Equal(date(2024, time.May, 2)) {
			t.Errorf("prev start = %v", prev.Start)
		}
	})

	t.Run("contiguity", func(t *testing.T) {
		cur := DateRange{Start: date(2024, time.March, 1), End: EndOfDay(date(2024, time.March, 31))}
		prev, ok := PreviousRange(cur)
		if !ok {
			t.Fatal("expected a previous range")
		}
		gap := cur.Start.Sub(prev.End)
		if gap <= 0 || gap > 24*time.Hour {
			t.Errorf("gap between windows = %v", gap)
		}
	})

	t.Run("missing bound", func(t *testing.T) {
		if _, ok := PreviousRange(DateRange{End: EndOfDay(date(2024, time.June, 30))}); ok {
			t.Error("expected no previous range for an open-ended window")
		}
	})
}

func TestFormatRangeLabel(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"both", date(2024, time.March, 5), date(2024, time.March, 20), "Mar 5, 2024 – Mar 20, 2024"},
		{"start only", date(2024, time.March, 5), time.Time{}, "From Mar 5, 2024"},
		{"end only", time.Time{}, date(2024, time.March, 20), "Through Mar 20, 2024"},
		{"neither", time.Time{}, time.Time{}, "All Time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRangeLabel(tt.start, tt.end); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
