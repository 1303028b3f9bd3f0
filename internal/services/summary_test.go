package services

import (
	"context"
	"math"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func TestSummaryBuild(t *testing.T) {
	store := memory.NewStore()
	svc := NewSummaryService(store)
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		// Prior year, counts toward totals but not the yearly series.
		{User: "alice", Type: core.Income, Category: "Salary", Amount: 1000, Date: time.Date(2023, 12, 1, 12, 0, 0, 0, time.UTC)},
		// This year.
		{User: "alice", Type: core.Income, Category: "Salary", Amount: 4000, Date: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{User: "alice", Type: core.Expense, Category: "Rent", Amount: 1200, Date: time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)},
		{User: "alice", Type: core.Income, Category: "Salary", Amount: 5000, Date: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		{User: "alice", Type: core.Expense, Category: "Rent", Amount: 1200, Date: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)},
		{User: "alice", Type: core.Expense, Category: "Food", Amount: 300, Date: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)},
	} {
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.Build(ctx, "alice")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got.TotalIncome != 10000 {
		t.Errorf("TotalIncome = %v, want 10000", got.TotalIncome)
	}
	if got.TotalExpense != 2700 {
		t.Errorf("TotalExpense = %v, want 2700", got.TotalExpense)
	}
	if got.Balance != 7300 {
		t.Errorf("Balance = %v, want 7300", got.Balance)
	}
	if math.Abs(got.SavingsRate-73) > 1e-9 {
		t.Errorf("SavingsRate = %v, want 73", got.SavingsRate)
	}

	// December 2023 stays out of the yearly series.
	if len(got.Monthly) != 2 {
		t.Fatalf("Monthly = %d buckets, want 2", len(got.Monthly))
	}
	if got.Monthly[0].Key != "2024-05" || got.Monthly[1].Key != "2024-06" {
		t.Errorf("Monthly keys = %s, %s", got.Monthly[0].Key, got.Monthly[1].Key)
	}

	if len(got.Quarters) != 4 {
		t.Fatalf("Quarters = %d, want 4", len(got.Quarters))
	}
	q2 := got.Quarters[1]
	if q2.Income != 9000 || q2.Expense != 2700 || q2.Net != 6300 {
		t.Errorf("Q2 = %+v", q2)
	}
	if got.Quarters[3].Income != 0 || got.Quarters[3].Expense != 0 {
		t.Errorf("Q4 should be empty, got %+v", got.Quarters[3])
	}

	if len(got.TopCategories) != 2 {
		t.Fatalf("TopCategories = %d, want 2", len(got.TopCategories))
	}
	if got.TopCategories[0].Category != "Rent" || got.TopCategories[0].Amount != 2400 {
		t.Errorf("top category = %+v", got.TopCategories[0])
	}

	mc := got.CurrentMonth
	if mc.Income != 5000 || mc.Expense != 1500 || mc.Net != 3500 {
		t.Errorf("CurrentMonth = %+v", mc)
	}
	if mc.IncomeChange == nil || *mc.IncomeChange != 25 {
		t.Errorf("IncomeChange = %v, want 25", mc.IncomeChange)
	}
	if mc.ExpenseChange == nil || *mc.ExpenseChange != 25 {
		t.Errorf("ExpenseChange = %v, want 25", mc.ExpenseChange)
	}
	if mc.NetChange == nil || *mc.NetChange != 25 {
		t.Errorf("NetChange = %v, want 25", mc.NetChange)
	}

	if len(got.Recent) != 5 {
		t.Fatalf("Recent = %d, want 5", len(got.Recent))
	}
	if !got.Recent[0].Date.Equal(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("most recent = %v", got.Recent[0].Date)
	}
}

func TestSummaryBuildEmpty(t *testing.T) {
	svc := NewSummaryService(memory.NewStore())
	svc.now = func() time.Time { return testNow }

	got, err := svc.Build(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.TotalIncome != 0 || got.TotalExpense != 0 || got.SavingsRate != 0 {
		t.Errorf("empty summary = %+v", got)
	}
	if len(got.Quarters) != 4 {
		t.Errorf("Quarters = %d, want 4 even when empty", len(got.Quarters))
	}
	if len(got.Recent) != 0 {
		t.Errorf("Recent = %d, want 0", len(got.Recent))
	}
}
