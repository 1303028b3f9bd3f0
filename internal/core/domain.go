package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is a single income or expense entry. Amounts are plain
	// currency values; validation guarantees they are non-negative, and all
	// downstream arithmetic treats them as already validated.
	Transaction struct {
		ID          int64
		User        string
		Type        TransactionType
		Category    string
		Amount      float64
		Date        time.Time
		Description string
		Notes       string
		CreatedAt   time.Time
	}

	// Category groups transactions for aggregation and budgeting. Default
	// categories are seeded by migration and cannot be deleted.
	Category struct {
		ID        int64
		User      string
		Name      string
		Type      TransactionType
		Color     string
		IsDefault bool
	}

	// Budget caps spending for one expense category in one calendar month
	// (Month is "YYYY-MM").
	Budget struct {
		ID       int64
		User     string
		Category string
		Limit    float64
		Month    string
		Note     string
	}

	// TaxEstimate records a quarterly estimated-tax worksheet. The rates
	// applied by the estimator are flat and illustrative only.
	TaxEstimate struct {
		ID                      int64
		User                    string
		Quarter                 string
		Year                    int
		Country                 string
		State                   string
		FilingStatus            string
		GrossIncome             float64
		BusinessExpenses        float64
		HealthInsurancePremiums float64
		RetirementContribution  float64
		HomeOfficeDeduction     float64
		EstimatedTax            float64
		EffectiveRate           float64
		Notes                   string
		DueDate                 time.Time
	}

	// Report is a persisted generation record. Payload is stored opaquely;
	// its structure belongs to the report package and older records may
	// carry a legacy shape that is normalized on read.
	Report struct {
		ID         int64
		User       string
		Name       string
		Period     string
		PeriodKey  string
		StartDate  time.Time
		EndDate    time.Time
		ReportType string
		Format     string
		Notes      string
		FilePath   string
		Payload    json.RawMessage
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidType        = errors.New("transaction type must be income or expense")
	ErrNegativeAmount     = errors.New("amount must be non-negative")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrEmptyCategory      = errors.New("category is required")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidQuarter     = errors.New("quarter must be one of Q1, Q2, Q3, Q4")
	ErrInvalidMonthKey    = errors.New("month must be in YYYY-MM format")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Amount < 0 {
		return ErrNegativeAmount
	}
	if tx.Date.IsZero() {
		return ErrZeroDate
	}
	if len(tx.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit < 0 {
		return errors.New("limit must be a non-negative number")
	}
	if !ValidMonthKey(b.Month) {
		return ErrInvalidMonthKey
	}
	return nil
}

func (e TaxEstimate) Validate() error {
	switch e.Quarter {
	case "Q1", "Q2", "Q3", "Q4":
	default:
		return ErrInvalidQuarter
	}
	if e.Year < 1 {
		return errors.New("year is required")
	}
	return nil
}

// ValidMonthKey reports whether s is a "YYYY-MM" month key.
func ValidMonthKey(s string) bool {
	if len(s) != 7 || s[4] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	month := int(s[5]-'0')*10 + int(s[6]-'0')
	return month >= 1 && month <= 12
}
