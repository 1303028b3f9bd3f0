package core

import (
	"sort"
	"strings"
)

// CategoryTotal is one row of a per-category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// MonthFlow is one bucket of a per-month income/expense breakdown, keyed
// "YYYY-MM" with a human label like "Jun 2024".
type MonthFlow struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Net is the month's income minus its expense.
func (m MonthFlow) Net() float64 { return m.Income - m.Expense }

// SumByCategory groups transaction amounts by category name, substituting
// "Uncategorized" for blank categories. Rows come back sorted by amount
// descending; rows with equal amounts keep the order their categories first
// appeared in the input.
func SumByCategory(txns []Transaction) []CategoryTotal {
	totals := make(map[string]float64)
	var order []string
	for _, t := range txns {
		name := strings.TrimSpace(t.Category)
		if name == "" {
			name = "Uncategorized"
		}
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] += t.Amount
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryTotal{Category: name, Amount: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// SumByMonth buckets transactions into calendar months, splitting income and
// expense totals per bucket. Buckets come back sorted ascending by key.
// Transactions with a zero date are skipped rather than corrupting a bucket.
func SumByMonth(txns []Transaction) []MonthFlow {
	buckets := make(map[string]*MonthFlow)
	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		key := t.Date.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &MonthFlow{Key: key, Label: t.Date.Format("Jan 2006")}
			buckets[key] = b
		}
		switch t.Type {
		case Income:
			b.Income += t.Amount
		case Expense:
			b.Expense += t.Amount
		}
	}

	out := make([]MonthFlow, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// TopTransactions returns the n largest transactions by amount, descending.
// Ties keep input order. The input slice is not modified.
func TopTransactions(txns []Transaction, n int) []Transaction {
	if n <= 0 {
		return nil
	}
	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TransactionLabel picks the display label for a transaction, preferring its
// description, then its category, then a generic placeholder.
func TransactionLabel(t Transaction) string {
	if s := strings.TrimSpace(t.Description); s != "" {
		return s
	}
	if s := strings.TrimSpace(t.Category); s != "" {
		return s
	}
	return "Untitled"
}

// SumAmounts totals the amounts of txns, optionally filtered by type. An
// empty filter sums everything.
func SumAmounts(txns []Transaction, filter TransactionType) float64 {
	var total float64
	for _, t := range txns {
		if filter != "" && t.Type != filter {
			continue
		}
		total += t.Amount
	}
	return total
}

// FilterByType returns the transactions matching the given type.
func FilterByType(txns []Transaction, typ TransactionType) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

// Delta computes the percentage change from previous to current. When no
// previous window exists the second return is false and callers should render
// the comparison as absent. A zero previous value yields 0 for a zero current
// value and 100 otherwise, so a series starting from nothing reads as full
// growth rather than dividing by zero.
func Delta(current, previous float64, hasPrevious bool) (float64, bool) {
	if !hasPrevious {
		return 0, false
	}
	if previous == 0 {
		if current == 0 {
			return 0, true
		}
		return 100, true
	}
	return (current - previous) / previous * 100, true
}
