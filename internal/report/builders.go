package report

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Canonical report type names. Build matches incoming names loosely, so
// "income-statement" and "Income Statement" select the same builder.
const (
	TypeIncomeStatement = "Income Statement"
	TypeExpenseSummary  = "Expense Summary"
	TypeCashFlow        = "Cash Flow"
	TypeBalanceSheet    = "Balance Sheet"
)

// Build assembles the payload for the requested report type. Unknown types
// never fail; they produce a placeholder payload with a single text section
// so a generation request always yields something renderable.
func Build(reportType string, in Input) Payload {
	switch canonicalType(reportType) {
	case "incomestatement":
		return buildIncomeStatement(in)
	case "expensesummary":
		return buildExpenseSummary(in)
	case "cashflow":
		return buildCashFlow(in)
	case "balancesheet":
		return buildBalanceSheet(in)
	default:
		return buildPlaceholder(reportType, in)
	}
}

func canonicalType(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func basePayload(title string, in Input) Payload {
	p := Payload{
		Title:       title,
		Subtitle:    in.PeriodLabel,
		GeneratedAt: in.GeneratedAt,
		Notes:       in.Notes,
		Sections:    []Section{},
	}
	if !in.Start.IsZero() {
		start := in.Start
		p.StartDate = &start
	}
	if !in.End.IsZero() {
		end := in.End
		p.EndDate = &end
	}
	return p
}

func deltaPtr(current, previous float64, hasPrevious bool) *float64 {
	d, ok := core.Delta(current, previous, hasPrevious)
	if !ok {
		return nil
	}
	return &d
}

// ratio returns numerator/denominator*100, or 0 for a zero denominator.
func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator * 100
}

func categoryTable(title string, totals []core.CategoryTotal, footerLabel string, footerTotal float64, emptyMessage string) Section {
	rows := make([]Row, 0, len(totals))
	for _, ct := range totals {
		rows = append(rows, Row{Cells: []Cell{TextCell(ct.Category), NumberCell(ct.Amount)}})
	}
	return Section{
		Type:         SectionTable,
		Title:        title,
		Headers:      []string{"Category", "Amount"},
		Rows:         rows,
		Footer:       &Footer{Label: footerLabel, Value: footerTotal},
		EmptyMessage: emptyMessage,
	}
}

func buildIncomeStatement(in Input) Payload {
	income := core.FilterByType(in.Transactions, core.Income)
	expenses := core.FilterByType(in.Transactions, core.Expense)

	totalIncome := core.SumAmounts(in.Transactions, core.Income)
	totalExpense := core.SumAmounts(in.Transactions, core.Expense)
	netIncome := totalIncome - totalExpense

	prevIncome := core.SumAmounts(in.Previous, core.Income)
	prevExpense := core.SumAmounts(in.Previous, core.Expense)

	p := basePayload(TypeIncomeStatement, in)
	p.Summary = map[string]float64{
		"totalIncome":  totalIncome,
		"totalExpense": totalExpense,
		"netIncome":    netIncome,
	}
	p.Sections = append(p.Sections,
		Section{
			Type:  SectionMetrics,
			Title: "Key Figures",
			Items: []Metric{
				{Label: "Total Income", Value: totalIncome, Delta: deltaPtr(totalIncome, prevIncome, in.HasPrevious)},
				{Label: "Total Expenses", Value: totalExpense, Delta: deltaPtr(totalExpense, prevExpense, in.HasPrevious), Kind: KindNegative},
				{Label: "Net Income", Value: netIncome, Delta: deltaPtr(netIncome, prevIncome-prevExpense, in.HasPrevious)},
				{Label: "Profit Margin", Value: ratio(netIncome, totalIncome), Format: FormatPercentage},
				{Label: "Expense Ratio", Value: ratio(totalExpense, totalIncome), Format: FormatPercentage, Kind: KindNegative},
			},
		},
		categoryTable("Income by Category", core.SumByCategory(income), "Total Income", totalIncome, "No income recorded for this period."),
		categoryTable("Expenses by Category", core.SumByCategory(expenses), "Total Expenses", totalExpense, "No expenses recorded for this period."),
	)
	return p
}

func buildExpenseSummary(in Input) Payload {
	expenses := core.FilterByType(in.Transactions, core.Expense)
	total := core.SumAmounts(expenses, "")

	days := make(map[string]struct{})
	for _, t := range expenses {
		if !t.Date.IsZero() {
			days[t.Date.Format("2006-01-02")] = struct{}{}
		}
	}
	divisor := len(days)
	if divisor < 1 {
		divisor = 1
	}

	byCategory := core.SumByCategory(expenses)
	var largestShare float64
	if len(byCategory) > 0 {
		largestShare = ratio(byCategory[0].Amount, total)
	}
	shareMetric := Metric{Label: "Largest Category Share", Value: largestShare, Format: FormatPercentage}
	if largestShare > 50 {
		shareMetric.Kind = KindWarning
	}

	categoryRows := make([]Row, 0, len(byCategory))
	for _, ct := range byCategory {
		categoryRows = append(categoryRows, Row{Cells: []Cell{
			TextCell(ct.Category),
			NumberCell(ct.Amount),
			PercentCell(ratio(ct.Amount, total)),
		}})
	}

	top := core.TopTransactions(expenses, 5)
	topRows := make([]Row, 0, len(top))
	for _, t := range top {
		topRows = append(topRows, Row{Cells: []Cell{
			TextCell(core.TransactionLabel(t)),
			TextCell(t.Category),
			TextCell(t.Date.Format("Jan 2, 2006")),
			NumberCell(t.Amount),
		}})
	}

	p := basePayload(TypeExpenseSummary, in)
	p.Summary = map[string]float64{
		"totalExpense":      total,
		"averageDailySpend": total / float64(divisor),
	}
	p.Sections = append(p.Sections,
		Section{
			Type:  SectionMetrics,
			Title: "Spending Overview",
			Items: []Metric{
				{Label: "Total Expenses", Value: total, Kind: KindNegative},
				{Label: "Average Daily Spend", Value: total / float64(divisor)},
				shareMetric,
			},
		},
		Section{
			Type:         SectionTable,
			Title:        "Spending by Category",
			Headers:      []string{"Category", "Amount", "Share"},
			Rows:         categoryRows,
			Footer:       &Footer{Label: "Total", Value: total},
			EmptyMessage: "No expenses recorded for this period.",
		},
		Section{
			Type:         SectionTable,
			Title:        "Top 5 Expenses",
			Headers:      []string{"Description", "Category", "Date", "Amount"},
			Rows:         topRows,
			EmptyMessage: "No expenses recorded for this period.",
		},
	)
	return p
}

func buildCashFlow(in Input) Payload {
	months := core.SumByMonth(in.Transactions)

	var inflow, outflow float64
	rows := make([]Row, 0, len(months))
	for _, m := range months {
		inflow += m.Income
		outflow += m.Expense
		rows = append(rows, Row{Cells: []Cell{
			TextCell(m.Label),
			NumberCell(m.Income),
			NumberCell(m.Expense),
			NumberCell(m.Net()),
		}})
	}
	net := inflow - outflow
	var avgMonthly float64
	if len(months) > 0 {
		avgMonthly = net / float64(len(months))
	}

	p := basePayload(TypeCashFlow, in)
	p.Summary = map[string]float64{
		"totalInflow":  inflow,
		"totalOutflow": outflow,
		"netCash":      net,
	}
	p.Sections = append(p.Sections,
		Section{
			Type:  SectionMetrics,
			Title: "Cash Position",
			Items: []Metric{
				{Label: "Cash Inflows", Value: inflow},
				{Label: "Cash Outflows", Value: outflow, Kind: KindNegative},
				{Label: "Net Cash", Value: net},
				{Label: "Average Monthly Net", Value: avgMonthly},
			},
		},
		Section{
			Type:         SectionTable,
			Title:        "Monthly Cash Flow",
			Headers:      []string{"Month", "Inflows", "Outflows", "Net"},
			Rows:         rows,
			Footer:       &Footer{Label: "Net Cash", Value: net},
			EmptyMessage: "No cash activity recorded for this period.",
		},
	)
	return p
}

func buildBalanceSheet(in Input) Payload {
	assets := core.SumAmounts(in.Cumulative, core.Income)
	liabilities := core.SumAmounts(in.Cumulative, core.Expense)
	equity := assets - liabilities

	p := basePayload(TypeBalanceSheet, in)
	p.Summary = map[string]float64{
		"totalAssets":      assets,
		"totalLiabilities": liabilities,
		"ownersEquity":     equity,
	}
	p.Sections = append(p.Sections,
		Section{
			Type:  SectionMetrics,
			Title: "Financial Position",
			Items: []Metric{
				{Label: "Total Assets", Value: assets},
				{Label: "Total Liabilities", Value: liabilities, Kind: KindNegative},
				{Label: "Owner's Equity", Value: equity},
				{Label: "Debt-to-Income Ratio", Value: ratio(liabilities, assets), Format: FormatPercentage, Kind: KindNegative},
			},
		},
		categoryTable("Assets by Category", core.SumByCategory(core.FilterByType(in.Cumulative, core.Income)), "Total Assets", assets, "No assets recorded."),
		categoryTable("Liabilities by Category", core.SumByCategory(core.FilterByType(in.Cumulative, core.Expense)), "Total Liabilities", liabilities, "No liabilities recorded."),
	)
	return p
}

func buildPlaceholder(reportType string, in Input) Payload {
	title := strings.TrimSpace(reportType)
	if title == "" {
		title = "Report"
	}
	p := basePayload(title, in)
	p.Sections = append(p.Sections, Section{
		Type:  SectionText,
		Title: "Not Available",
		Body:  fmt.Sprintf("No generator is configured for report type %q.", reportType),
	})
	return p
}
