package services

import (
	"math"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestEstimateTax(t *testing.T) {
	got := EstimateTax(core.TaxEstimate{
		Quarter:                 "Q2",
		Year:                    2024,
		GrossIncome:             20000,
		BusinessExpenses:        3000,
		HealthInsurancePremiums: 1000,
		RetirementContribution:  500,
		HomeOfficeDeduction:     500,
	})

	// Net 15000: SE tax on 92.35% of it plus 12% flat income tax.
	net := 15000.0
	want := net*0.9235*0.153 + net*0.12
	if math.Abs(got.EstimatedTax-want) > 1e-9 {
		t.Errorf("EstimatedTax = %v, want %v", got.EstimatedTax, want)
	}
	wantRate := want / 20000 * 100
	if math.Abs(got.EffectiveRate-wantRate) > 1e-9 {
		t.Errorf("EffectiveRate = %v, want %v", got.EffectiveRate, wantRate)
	}
	if !got.DueDate.Equal(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DueDate = %v", got.DueDate)
	}
}

func TestEstimateTaxDeductionsExceedIncome(t *testing.T) {
	got := EstimateTax(core.TaxEstimate{
		Quarter:          "Q1",
		Year:             2024,
		GrossIncome:      1000,
		BusinessExpenses: 5000,
	})
	if got.EstimatedTax != 0 {
		t.Errorf("EstimatedTax = %v, want 0 when net clamps to zero", got.EstimatedTax)
	}
	if got.EffectiveRate != 0 {
		t.Errorf("EffectiveRate = %v, want 0", got.EffectiveRate)
	}
}

func TestEstimateTaxZeroGross(t *testing.T) {
	got := EstimateTax(core.TaxEstimate{Quarter: "Q3", Year: 2024})
	if got.EstimatedTax != 0 || got.EffectiveRate != 0 {
		t.Errorf("zero gross: tax %v rate %v", got.EstimatedTax, got.EffectiveRate)
	}
}

func TestQuarterDueDate(t *testing.T) {
	tests := []struct {
		quarter string
		year    int
		want    time.Time
	}{
		{"Q1", 2024, time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)},
		{"Q2", 2024, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"Q3", 2024, time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC)},
		{"Q4", 2024, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"Q5", 2024, time.Time{}},
	}
	for _, tt := range tests {
		if got := QuarterDueDate(tt.quarter, tt.year); !got.Equal(tt.want) {
			t.Errorf("QuarterDueDate(%s, %d) = %v, want %v", tt.quarter, tt.year, got, tt.want)
		}
	}
}
