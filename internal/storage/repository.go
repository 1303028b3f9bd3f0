// Package storage persists transactions, categories, budgets, tax estimates
// and report records. Callers depend on the Store interface; the SQLite
// implementation is the production backend and an in-memory mirror backs
// tests and throwaway deployments.
package storage

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

// ErrNotFound is returned when the requested record does not exist or belongs
// to a different user.
var ErrNotFound = errors.New("record not found")

// TransactionFilter narrows and orders a transaction listing.
type TransactionFilter struct {
	Type     core.TransactionType
	Category string
	Start    time.Time
	End      time.Time
	// Search matches case-insensitively against description and notes.
	Search string
	// SortBy is one of "date", "amount", "createdAt". Unknown values fall
	// back to "date".
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
}

// ReportFilter narrows a report listing.
type ReportFilter struct {
	PeriodKey  string
	ReportType string
	Format     string
	// Search matches case-insensitively against name, period and type.
	Search string
	// Start/End keep only reports whose date window overlaps the bounds.
	Start time.Time
	End   time.Time
}

// Store is the persistence boundary. Every method scopes by user; a record
// of another user is indistinguishable from a missing one.
type Store interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, user string, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, user string, id int64) error
	// ListTransactions returns one page plus the total match count.
	ListTransactions(ctx context.Context, user string, f TransactionFilter) ([]core.Transaction, int, error)
	// FetchRange returns every transaction within the inclusive bounds,
	// ordered by date ascending. A zero bound is unbounded on that side.
	FetchRange(ctx context.Context, user string, start, end time.Time) ([]core.Transaction, error)

	ListCategories(ctx context.Context, user string) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, user string, id int64) error
	// EnsureDefaultCategories seeds the stock category set for a user the
	// first time their categories are touched. Idempotent.
	EnsureDefaultCategories(ctx context.Context, user string) error

	ListBudgets(ctx context.Context, user, month string) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, user string, id int64) error
	// ExpenseTotalsByCategory sums expense amounts per category over the
	// inclusive bounds, for budget progress.
	ExpenseTotalsByCategory(ctx context.Context, user string, start, end time.Time) (map[string]float64, error)

	UpsertTaxEstimate(ctx context.Context, e core.TaxEstimate) (core.TaxEstimate, error)
	ListTaxEstimates(ctx context.Context, user string, year int) ([]core.TaxEstimate, error)
	DeleteTaxEstimate(ctx context.Context, user string, id int64) error

	CreateReport(ctx context.Context, r core.Report) (core.Report, error)
	GetReport(ctx context.Context, user string, id int64) (core.Report, error)
	ListReports(ctx context.Context, user string, f ReportFilter) ([]core.Report, error)
	DeleteReport(ctx context.Context, user string, id int64) error
	// SetReportFilePath records where the async export worker wrote the
	// rendered file.
	SetReportFilePath(ctx context.Context, id int64, path string) error

	Close() error
}

// DefaultCategories is the stock set seeded for every new user, matching the
// categories the transaction form offers out of the box.
func DefaultCategories(user string) []core.Category {
	return []core.Category{
		{User: user, Name: "Salary", Type: core.Income, Color: "#2e7d32", IsDefault: true},
		{User: user, Name: "Freelance", Type: core.Income, Color: "#388e3c", IsDefault: true},
		{User: user, Name: "Investments", Type: core.Income, Color: "#43a047", IsDefault: true},
		{User: user, Name: "Interest", Type: core.Income, Color: "#66bb6a", IsDefault: true},
		{User: user, Name: "Utilities", Type: core.Expense, Color: "#c62828", IsDefault: true},
		{User: user, Name: "Food", Type: core.Expense, Color: "#d32f2f", IsDefault: true},
		{User: user, Name: "Rent", Type: core.Expense, Color: "#e53935", IsDefault: true},
		{User: user, Name: "Transport", Type: core.Expense, Color: "#ef5350", IsDefault: true},
		{User: user, Name: "Software", Type: core.Expense, Color: "#f44336", IsDefault: true},
		{User: user, Name: "Marketing", Type: core.Expense, Color: "#ff7043", IsDefault: true},
	}
}
