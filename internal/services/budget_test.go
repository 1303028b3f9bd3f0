package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func TestComputeBudgetStatus(t *testing.T) {
	tests := []struct {
		name  string
		spent float64
		limit float64
		want  string
	}{
		{"well under", 100, 1000, BudgetGood},
		{"just under threshold", 799, 1000, BudgetGood},
		{"at threshold", 800, 1000, BudgetWarning},
		{"at limit", 1000, 1000, BudgetWarning},
		{"over limit", 1001, 1000, BudgetBad},
		{"no limit no spend", 0, 0, BudgetGood},
		{"no limit with spend", 50, 0, BudgetBad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeBudgetStatus(tt.spent, tt.limit); got != tt.want {
				t.Errorf("ComputeBudgetStatus(%v, %v) = %s, want %s", tt.spent, tt.limit, got, tt.want)
			}
		})
	}
}

func TestListWithSpending(t *testing.T) {
	store := memory.NewStore()
	svc := NewBudgetService(store)
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		{User: "alice", Type: core.Expense, Category: "Rent", Amount: 1200, Date: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		{User: "alice", Type: core.Expense, Category: "Food", Amount: 450, Date: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)},
		// Outside June, must not count.
		{User: "alice", Type: core.Expense, Category: "Food", Amount: 900, Date: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)},
	} {
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}
	for _, b := range []core.Budget{
		{User: "alice", Category: "Rent", Limit: 1200, Month: "2024-06"},
		{User: "alice", Category: "Food", Limit: 600, Month: "2024-06"},
		{User: "alice", Category: "Travel", Limit: 300, Month: "2024-06"},
	} {
		if _, err := store.CreateBudget(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.ListWithSpending(ctx, "alice", "2024-06")
	if err != nil {
		t.Fatalf("ListWithSpending: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("budgets = %d, want 3", len(got))
	}

	byCategory := make(map[string]BudgetStatus, len(got))
	for _, b := range got {
		byCategory[b.Category] = b
	}

	rent := byCategory["Rent"]
	if rent.Spent != 1200 || rent.Remaining != 0 || rent.Status != BudgetWarning {
		t.Errorf("Rent = %+v", rent)
	}
	food := byCategory["Food"]
	if food.Spent != 450 || food.Remaining != 150 || food.Status != BudgetGood {
		t.Errorf("Food = %+v", food)
	}
	travel := byCategory["Travel"]
	if travel.Spent != 0 || travel.Status != BudgetGood {
		t.Errorf("Travel = %+v", travel)
	}
}

func TestListWithSpendingInvalidMonth(t *testing.T) {
	store := memory.NewStore()
	svc := NewBudgetService(store)

	if _, err := store.CreateBudget(context.Background(), core.Budget{
		User: "alice", Category: "Rent", Limit: 100, Month: "2024-6",
	}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.ListWithSpending(context.Background(), "alice", "")
	if !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Fatalf("err = %v, want ErrInvalidMonthKey", err)
	}
}

func TestMonthBounds(t *testing.T) {
	start, end, err := MonthBounds("2024-02")
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end.Day() != 29 || end.Month() != time.February {
		t.Errorf("end = %v, want leap-day clamp", end)
	}

	if _, _, err := MonthBounds("junk"); !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Errorf("err = %v, want ErrInvalidMonthKey", err)
	}
}
