package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func seedTransactions(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	entries := []core.Transaction{
		{User: "alice", Type: core.Income, Category: "Salary", Amount: 5000, Date: day(2024, 6, 1), Description: "June salary"},
		{User: "alice", Type: core.Expense, Category: "Rent", Amount: 1200, Date: day(2024, 6, 2), Description: "Office rent"},
		{User: "alice", Type: core.Expense, Category: "Food", Amount: 300, Date: day(2024, 6, 10), Notes: "team lunch"},
		{User: "alice", Type: core.Expense, Category: "Rent", Amount: 1200, Date: day(2024, 5, 2)},
		{User: "bob", Type: core.Income, Category: "Salary", Amount: 7000, Date: day(2024, 6, 1)},
	}
	for _, e := range entries {
		if _, err := s.CreateTransaction(ctx, e); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestTransactionCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	created, err := s.CreateTransaction(ctx, core.Transaction{User: "alice", Type: core.Expense, Category: "Food", Amount: 40, Date: day(2024, 6, 1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.CreatedAt.IsZero() {
		t.Errorf("created = %+v", created)
	}

	got, err := s.GetTransaction(ctx, "alice", created.ID)
	if err != nil || got.Amount != 40 {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if _, err := s.GetTransaction(ctx, "bob", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cross-user get err = %v", err)
	}

	created.Amount = 55
	if _, err := s.UpdateTransaction(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.GetTransaction(ctx, "alice", created.ID)
	if got.Amount != 55 {
		t.Errorf("amount after update = %v", got.Amount)
	}

	if err := s.DeleteTransaction(ctx, "alice", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "alice", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete err = %v", err)
	}
}

func TestListTransactionsFiltering(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedTransactions(t, s)

	tests := []struct {
		name      string
		filter    storage.TransactionFilter
		wantTotal int
	}{
		{"all for user", storage.TransactionFilter{}, 4},
		{"by type", storage.TransactionFilter{Type: core.Expense}, 3},
		{"by category", storage.TransactionFilter{Category: "Rent"}, 2},
		{"by date window", storage.TransactionFilter{Start: day(2024, 6, 1), End: day(2024, 6, 30)}, 3},
		{"search description", storage.TransactionFilter{Search: "office"}, 1},
		{"search notes", storage.TransactionFilter{Search: "LUNCH"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := s.ListTransactions(ctx, "alice", tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}

func TestListTransactionsSortAndPage(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedTransactions(t, s)

	page, total, err := s.ListTransactions(ctx, "alice", storage.TransactionFilter{
		SortBy: "amount", SortDesc: true, Page: 1, PageSize: 2,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(page) != 2 {
		t.Fatalf("total = %d, page len = %d", total, len(page))
	}
	if page[0].Amount != 5000 {
		t.Errorf("first = %v", page[0].Amount)
	}

	page, _, _ = s.ListTransactions(ctx, "alice", storage.TransactionFilter{
		SortBy: "amount", SortDesc: true, Page: 3, PageSize: 2,
	})
	if len(page) != 0 {
		t.Errorf("past-the-end page len = %d", len(page))
	}
}

func TestFetchRangeOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedTransactions(t, s)

	txns, err := s.FetchRange(ctx, "alice", day(2024, 6, 1), day(2024, 6, 30))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("len = %d", len(txns))
	}
	for i := 1; i < len(txns); i++ {
		if txns[i].Date.Before(txns[i-1].Date) {
			t.Errorf("out of order at %d", i)
		}
	}

	all, err := s.FetchRange(ctx, "alice", time.Time{}, time.Time{})
	if err != nil || len(all) != 4 {
		t.Errorf("unbounded fetch = %d, %v", len(all), err)
	}
}

func TestDefaultCategories(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.EnsureDefaultCategories(ctx, "alice"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.EnsureDefaultCategories(ctx, "alice"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	cats, err := s.ListCategories(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != len(storage.DefaultCategories("alice")) {
		t.Errorf("len = %d", len(cats))
	}

	// Stock categories cannot be deleted.
	if err := s.DeleteCategory(ctx, "alice", cats[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("delete default err = %v", err)
	}

	custom, err := s.CreateCategory(ctx, core.Category{User: "alice", Name: "Hardware", Type: core.Expense})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteCategory(ctx, "alice", custom.ID); err != nil {
		t.Errorf("delete custom: %v", err)
	}
}

func TestBudgetsAndSpending(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedTransactions(t, s)

	b, err := s.CreateBudget(ctx, core.Budget{User: "alice", Category: "Rent", Limit: 1500, Month: "2024-06"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	budgets, err := s.ListBudgets(ctx, "alice", "2024-06")
	if err != nil || len(budgets) != 1 {
		t.Fatalf("list = %d, %v", len(budgets), err)
	}

	spent, err := s.ExpenseTotalsByCategory(ctx, "alice", day(2024, 6, 1), day(2024, 6, 30))
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if spent["Rent"] != 1200 || spent["Food"] != 300 {
		t.Errorf("spent = %v", spent)
	}

	b.Limit = 1300
	if _, err := s.UpdateBudget(ctx, b); err != nil {
		t.Errorf("update: %v", err)
	}
	if err := s.DeleteBudget(ctx, "alice", b.ID); err != nil {
		t.Errorf("delete: %v", err)
	}
}

func TestTaxEstimateUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first, err := s.UpsertTaxEstimate(ctx, core.TaxEstimate{User: "alice", Quarter: "Q2", Year: 2024, EstimatedTax: 900})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := s.UpsertTaxEstimate(ctx, core.TaxEstimate{User: "alice", Quarter: "Q2", Year: 2024, EstimatedTax: 1100})
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %d vs %d", second.ID, first.ID)
	}

	estimates, err := s.ListTaxEstimates(ctx, "alice", 2024)
	if err != nil || len(estimates) != 1 {
		t.Fatalf("list = %d, %v", len(estimates), err)
	}
	if estimates[0].EstimatedTax != 1100 {
		t.Errorf("estimated tax = %v", estimates[0].EstimatedTax)
	}
}

func TestReportLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	r, err := s.CreateReport(ctx, core.Report{
		User: "alice", Name: "June Income", ReportType: "Income Statement", Format: "pdf",
		PeriodKey: "current-month", Period: "Jun 2024",
		StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if string(r.Payload) != "{}" {
		t.Errorf("payload default = %q", r.Payload)
	}

	tests := []struct {
		name   string
		filter storage.ReportFilter
		want   int
	}{
		{"no filter", storage.ReportFilter{}, 1},
		{"by type", storage.ReportFilter{ReportType: "Income Statement"}, 1},
		{"wrong format", storage.ReportFilter{Format: "csv"}, 0},
		{"search", storage.ReportFilter{Search: "june"}, 1},
		{"overlapping window", storage.ReportFilter{Start: day(2024, 6, 15), End: day(2024, 7, 15)}, 1},
		{"disjoint window", storage.ReportFilter{Start: day(2024, 8, 1), End: day(2024, 8, 31)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListReports(ctx, "alice", tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	if err := s.SetReportFilePath(ctx, r.ID, "/data/exports/june.pdf"); err != nil {
		t.Fatalf("set file path: %v", err)
	}
	got, _ := s.GetReport(ctx, "alice", r.ID)
	if got.FilePath != "/data/exports/june.pdf" {
		t.Errorf("file path = %q", got.FilePath)
	}

	if err := s.DeleteReport(ctx, "alice", r.ID); err != nil {
		t.Errorf("delete: %v", err)
	}
}
