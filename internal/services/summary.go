package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Summary is the dashboard snapshot: all-time totals, the current year's
// monthly and quarterly series, top spending categories and recent activity.
type Summary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
	// SavingsRate is all-time net income as a share of all-time income.
	SavingsRate float64 `json:"savingsRate"`

	Monthly       []core.MonthFlow     `json:"monthly"`
	Quarters      []QuarterFlow        `json:"quarters"`
	TopCategories []core.CategoryTotal `json:"topCategories"`

	CurrentMonth MonthComparison    `json:"currentMonth"`
	Recent       []core.Transaction `json:"recent"`
}

// MonthComparison contrasts the current month with the previous one. Change
// pointers are nil when no comparison is possible.
type MonthComparison struct {
	Income        float64  `json:"income"`
	Expense       float64  `json:"expense"`
	Net           float64  `json:"net"`
	IncomeChange  *float64 `json:"incomeChange"`
	ExpenseChange *float64 `json:"expenseChange"`
	NetChange     *float64 `json:"netChange"`
}

// QuarterFlow is one quarter's income/expense bucket.
type QuarterFlow struct {
	Quarter string  `json:"quarter"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

const topCategoryCount = 8

// SummaryService assembles the dashboard from a single unbounded fetch.
type SummaryService struct {
	store storage.Store
	now   func() time.Time
}

func NewSummaryService(store storage.Store) *SummaryService {
	return &SummaryService{store: store, now: time.Now}
}

func (s *SummaryService) Build(ctx context.Context, user string) (Summary, error) {
	all, err := s.store.FetchRange(ctx, user, time.Time{}, time.Time{})
	if err != nil {
		return Summary{}, fmt.Errorf("fetch transactions: %w", err)
	}

	now := s.now()
	out := Summary{
		TotalIncome:  core.SumAmounts(all, core.Income),
		TotalExpense: core.SumAmounts(all, core.Expense),
	}
	out.Balance = out.TotalIncome - out.TotalExpense
	if out.TotalIncome > 0 {
		out.SavingsRate = out.Balance / out.TotalIncome * 100
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	var thisYear []core.Transaction
	for _, tx := range all {
		if !tx.Date.Before(yearStart) {
			thisYear = append(thisYear, tx)
		}
	}
	out.Monthly = core.SumByMonth(thisYear)
	out.Quarters = quarterSeries(thisYear, now.Year())

	expenses := core.FilterByType(all, core.Expense)
	top := core.SumByCategory(expenses)
	if len(top) > topCategoryCount {
		top = top[:topCategoryCount]
	}
	out.TopCategories = top

	out.CurrentMonth = monthComparison(all, now)
	out.Recent = recentTransactions(all, 5)
	return out, nil
}

func quarterSeries(txns []core.Transaction, year int) []QuarterFlow {
	quarters := make([]QuarterFlow, 4)
	for q := range quarters {
		quarters[q].Quarter = fmt.Sprintf("Q%d", q+1)
	}
	for _, tx := range txns {
		if tx.Date.Year() != year {
			continue
		}
		q := (int(tx.Date.Month()) - 1) / 3
		switch tx.Type {
		case core.Income:
			quarters[q].Income += tx.Amount
		case core.Expense:
			quarters[q].Expense += tx.Amount
		}
	}
	for q := range quarters {
		quarters[q].Net = quarters[q].Income - quarters[q].Expense
	}
	return quarters
}

func monthComparison(all []core.Transaction, now time.Time) MonthComparison {
	cur, _ := core.ResolvePeriod(core.PeriodCurrentMonth, core.CustomRange{}, now)
	prev, _ := core.ResolvePeriod(core.PeriodLastMonth, core.CustomRange{}, now)

	within := func(tx core.Transaction, r core.DateRange) bool {
		return !tx.Date.Before(r.Start) && !tx.Date.After(r.End)
	}

	var curTxns, prevTxns []core.Transaction
	for _, tx := range all {
		if within(tx, cur) {
			curTxns = append(curTxns, tx)
		} else if within(tx, prev) {
			prevTxns = append(prevTxns, tx)
		}
	}

	income := core.SumAmounts(curTxns, core.Income)
	expense := core.SumAmounts(curTxns, core.Expense)
	prevIncome := core.SumAmounts(prevTxns, core.Income)
	prevExpense := core.SumAmounts(prevTxns, core.Expense)

	mc := MonthComparison{Income: income, Expense: expense, Net: income - expense}
	if d, ok := core.Delta(income, prevIncome, true); ok {
		mc.IncomeChange = &d
	}
	if d, ok := core.Delta(expense, prevExpense, true); ok {
		mc.ExpenseChange = &d
	}
	if d, ok := core.Delta(income-expense, prevIncome-prevExpense, true); ok {
		mc.NetChange = &d
	}
	return mc
}

func recentTransactions(all []core.Transaction, n int) []core.Transaction {
	recent := make([]core.Transaction, len(all))
	copy(recent, all)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}
