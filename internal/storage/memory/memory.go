// Package memory provides an in-memory Store used by tests and throwaway
// deployments. Behavior mirrors the SQLite backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu sync.RWMutex

	transactions map[int64]core.Transaction
	categories   map[int64]core.Category
	budgets      map[int64]core.Budget
	taxEstimates map[int64]core.TaxEstimate
	reports      map[int64]core.Report
	nextID       int64

	seeded map[string]bool
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[int64]core.Transaction),
		categories:   make(map[int64]core.Category),
		budgets:      make(map[int64]core.Budget),
		taxEstimates: make(map[int64]core.TaxEstimate),
		reports:      make(map[int64]core.Report),
		seeded:       make(map[string]bool),
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Close() error { return nil }

func (s *Store) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextIDLocked()
	tx.CreatedAt = time.Now().UTC()
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) GetTransaction(_ context.Context, user string, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[id]
	if !ok || tx.User != user {
		return core.Transaction{}, storage.ErrNotFound
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[tx.ID]
	if !ok || existing.User != tx.User {
		return core.Transaction{}, storage.ErrNotFound
	}
	tx.CreatedAt = existing.CreatedAt
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, user string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.User != user {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, user string, f storage.TransactionFilter) ([]core.Transaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []core.Transaction
	for _, tx := range s.transactions {
		if tx.User != user {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if !f.Start.IsZero() && tx.Date.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && tx.Date.After(f.End) {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(tx.Description), needle) &&
				!strings.Contains(strings.ToLower(tx.Notes), needle) {
				continue
			}
		}
		matched = append(matched, tx)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if f.SortDesc {
			a, b = b, a
		}
		switch f.SortBy {
		case "amount":
			return a.Amount < b.Amount
		case "createdAt":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Date.Before(b.Date)
		}
	})

	total := len(matched)
	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	lo := (page - 1) * pageSize
	if lo > total {
		lo = total
	}
	hi := lo + pageSize
	if hi > total {
		hi = total
	}
	return matched[lo:hi], total, nil
}

func (s *Store) FetchRange(_ context.Context, user string, start, end time.Time) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.User != user {
			continue
		}
		if !start.IsZero() && tx.Date.Before(start) {
			continue
		}
		if !end.IsZero() && tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *Store) ListCategories(_ context.Context, user string) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Category
	for _, c := range s.categories {
		if c.User == user {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextIDLocked()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok || existing.User != c.User {
		return core.Category{}, storage.ErrNotFound
	}
	c.IsDefault = existing.IsDefault
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, user string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.User != user || c.IsDefault {
		return storage.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) EnsureDefaultCategories(_ context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded[user] {
		return nil
	}
	for _, c := range storage.DefaultCategories(user) {
		c.ID = s.nextIDLocked()
		s.categories[c.ID] = c
	}
	s.seeded[user] = true
	return nil
}

func (s *Store) ListBudgets(_ context.Context, user, month string) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Budget
	for _, b := range s.budgets {
		if b.User != user {
			continue
		}
		if month != "" && b.Month != month {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextIDLocked()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.budgets[b.ID]
	if !ok || existing.User != b.User {
		return core.Budget{}, storage.ErrNotFound
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, user string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.User != user {
		return storage.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ExpenseTotalsByCategory(_ context.Context, user string, start, end time.Time) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]float64)
	for _, tx := range s.transactions {
		if tx.User != user || tx.Type != core.Expense {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		totals[tx.Category] += tx.Amount
	}
	return totals, nil
}

func (s *Store) UpsertTaxEstimate(_ context.Context, e core.TaxEstimate) (core.TaxEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.taxEstimates {
		if existing.User == e.User && existing.Quarter == e.Quarter && existing.Year == e.Year {
			e.ID = id
			s.taxEstimates[id] = e
			return e, nil
		}
	}
	e.ID = s.nextIDLocked()
	s.taxEstimates[e.ID] = e
	return e, nil
}

func (s *Store) ListTaxEstimates(_ context.Context, user string, year int) ([]core.TaxEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.TaxEstimate
	for _, e := range s.taxEstimates {
		if e.User != user {
			continue
		}
		if year > 0 && e.Year != year {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Quarter < out[j].Quarter
	})
	return out, nil
}

func (s *Store) DeleteTaxEstimate(_ context.Context, user string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.taxEstimates[id]
	if !ok || e.User != user {
		return storage.ErrNotFound
	}
	delete(s.taxEstimates, id)
	return nil
}

func (s *Store) CreateReport(_ context.Context, r core.Report) (core.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextIDLocked()
	r.CreatedAt = time.Now().UTC()
	if len(r.Payload) == 0 {
		r.Payload = []byte("{}")
	}
	s.reports[r.ID] = r
	return r, nil
}

func (s *Store) GetReport(_ context.Context, user string, id int64) (core.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok || r.User != user {
		return core.Report{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReports(_ context.Context, user string, f storage.ReportFilter) ([]core.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Report
	for _, r := range s.reports {
		if r.User != user {
			continue
		}
		if f.PeriodKey != "" && r.PeriodKey != f.PeriodKey {
			continue
		}
		if f.ReportType != "" && r.ReportType != f.ReportType {
			continue
		}
		if f.Format != "" && r.Format != f.Format {
			continue
		}
		if !storage.MatchReport(r, f) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteReport(_ context.Context, user string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok || r.User != user {
		return storage.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *Store) SetReportFilePath(_ context.Context, id int64, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.FilePath = path
	s.reports[id] = r
	return nil
}
