package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Budget health levels.
const (
	BudgetGood    = "Good"
	BudgetWarning = "Warning"
	BudgetBad     = "Bad"
)

// BudgetStatus is a budget enriched with actual spending for its month.
type BudgetStatus struct {
	core.Budget
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Status    string  `json:"status"`
}

// BudgetService reads budgets together with the spending they track.
type BudgetService struct {
	store storage.Store
}

func NewBudgetService(store storage.Store) *BudgetService {
	return &BudgetService{store: store}
}

// ListWithSpending returns each budget with its month's expense total per
// category and a health status.
func (s *BudgetService) ListWithSpending(ctx context.Context, user, month string) ([]BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, user, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	// Spending is summed per distinct month so budgets across months stay
	// independent.
	spentByMonth := make(map[string]map[string]float64)
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, ok := spentByMonth[b.Month]
		if !ok {
			start, end, err := MonthBounds(b.Month)
			if err != nil {
				return nil, fmt.Errorf("budget month %q: %w", b.Month, err)
			}
			spent, err = s.store.ExpenseTotalsByCategory(ctx, user, start, end)
			if err != nil {
				return nil, fmt.Errorf("expense totals for %s: %w", b.Month, err)
			}
			spentByMonth[b.Month] = spent
		}

		status := BudgetStatus{Budget: b, Spent: spent[b.Category]}
		status.Remaining = b.Limit - status.Spent
		status.Status = ComputeBudgetStatus(status.Spent, b.Limit)
		out = append(out, status)
	}
	return out, nil
}

// ComputeBudgetStatus grades spending against a limit: under 80% is Good, up
// to the limit is Warning, over is Bad. Without a limit any spending is Bad.
func ComputeBudgetStatus(spent, limit float64) string {
	if limit <= 0 {
		if spent > 0 {
			return BudgetBad
		}
		return BudgetGood
	}
	ratio := spent / limit
	switch {
	case ratio < 0.8:
		return BudgetGood
	case ratio <= 1:
		return BudgetWarning
	default:
		return BudgetBad
	}
}

// MonthBounds expands a "YYYY-MM" key into its inclusive day-clamped range.
func MonthBounds(month string) (time.Time, time.Time, error) {
	if !core.ValidMonthKey(month) {
		return time.Time{}, time.Time{}, core.ErrInvalidMonthKey
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, core.ErrInvalidMonthKey
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := core.EndOfDay(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC))
	return start, end, nil
}
