package services

import (
	"time"

	"fintrack/internal/core"
)

// Flat illustrative rates. This estimator is a planning aid, not tax advice;
// real self-employment and income tax schedules are out of scope.
const (
	selfEmploymentRate    = 0.153
	selfEmploymentTaxable = 0.9235
	flatIncomeRate        = 0.12
)

// EstimateTax fills in the computed fields of a quarterly worksheet from its
// inputs: estimated tax, effective rate and the payment due date.
func EstimateTax(e core.TaxEstimate) core.TaxEstimate {
	deductions := e.BusinessExpenses + e.HealthInsurancePremiums +
		e.RetirementContribution + e.HomeOfficeDeduction
	net := e.GrossIncome - deductions
	if net < 0 {
		net = 0
	}

	seTax := net * selfEmploymentTaxable * selfEmploymentRate
	incomeTax := net * flatIncomeRate
	e.EstimatedTax = seTax + incomeTax

	if e.GrossIncome > 0 {
		e.EffectiveRate = e.EstimatedTax / e.GrossIncome * 100
	} else {
		e.EffectiveRate = 0
	}

	e.DueDate = QuarterDueDate(e.Quarter, e.Year)
	return e
}

// QuarterDueDate returns the estimated-payment deadline for a quarter. Q4
// payments fall due in January of the following year.
func QuarterDueDate(quarter string, year int) time.Time {
	switch quarter {
	case "Q1":
		return time.Date(year, time.April, 15, 0, 0, 0, 0, time.UTC)
	case "Q2":
		return time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC)
	case "Q3":
		return time.Date(year, time.September, 15, 0, 0, 0, 0, time.UTC)
	case "Q4":
		return time.Date(year+1, time.January, 15, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}
