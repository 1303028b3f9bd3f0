package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Dates persist as unix milliseconds so range comparisons stay numeric. Zero
// times persist as 0 and read back as zero times.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

const transactionColumns = "id, user, type, category, amount, date_ms, description, notes, created_at_ms"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var tx core.Transaction
	var dateMS, createdMS int64
	var typ string
	err := row.Scan(&tx.ID, &tx.User, &typ, &tx.Category, &tx.Amount, &dateMS, &tx.Description, &tx.Notes, &createdMS)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	tx.Date = fromMillis(dateMS)
	tx.CreatedAt = fromMillis(createdMS)
	return tx, nil
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user, type, category, amount, date_ms, description, notes, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.User, string(tx.Type), tx.Category, tx.Amount, toMillis(tx.Date), tx.Description, tx.Notes, toMillis(tx.CreatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, user string, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user = ?", id, user)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, category = ?, amount = ?, date_ms = ?, description = ?, notes = ?
		 WHERE id = ? AND user = ?`,
		string(tx.Type), tx.Category, tx.Amount, toMillis(tx.Date), tx.Description, tx.Notes, tx.ID, tx.User)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return s.GetTransaction(ctx, tx.User, tx.ID)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, user string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user = ?", id, user)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, user string, f TransactionFilter) ([]core.Transaction, int, error) {
	where := []string{"user = ?"}
	args := []any{user}

	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if !f.Start.IsZero() {
		where = append(where, "date_ms >= ?")
		args = append(args, toMillis(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "date_ms <= ?")
		args = append(args, toMillis(f.End))
	}
	if f.Search != "" {
		where = append(where, "(description LIKE ? OR notes LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	orderCol := map[string]string{
		"date":      "date_ms",
		"amount":    "amount",
		"createdAt": "created_at_ms",
	}[f.SortBy]
	if orderCol == "" {
		orderCol = "date_ms"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+clause+
			" ORDER BY "+orderCol+" "+direction+", id "+direction+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, total, rows.Err()
}

func (s *SQLiteStore) FetchRange(ctx context.Context, user string, start, end time.Time) ([]core.Transaction, error) {
	where := []string{"user = ?"}
	args := []any{user}
	if !start.IsZero() {
		where = append(where, "date_ms >= ?")
		args = append(args, toMillis(start))
	}
	if !end.IsZero() {
		where = append(where, "date_ms <= ?")
		args = append(args, toMillis(end))
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+strings.Join(where, " AND ")+
			" ORDER BY date_ms ASC, id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListCategories(ctx context.Context, user string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user, name, type, color, is_default FROM categories WHERE user = ? ORDER BY type, name", user)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.User, &c.Name, &typ, &c.Color, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (user, name, type, color, is_default) VALUES (?, ?, ?, ?, ?)",
		c.User, c.Name, string(c.Type), c.Color, c.IsDefault)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, type = ?, color = ? WHERE id = ? AND user = ?",
		c.Name, string(c.Type), c.Color, c.ID, c.User)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, ErrNotFound
	}
	return c, nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, user string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user = ? AND is_default = 0", id, user)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) EnsureDefaultCategories(ctx context.Context, user string) error {
	for _, c := range DefaultCategories(user) {
		_, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO categories (user, name, type, color, is_default) VALUES (?, ?, ?, ?, 1)",
			c.User, c.Name, string(c.Type), c.Color)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListBudgets(ctx context.Context, user, month string) ([]core.Budget, error) {
	query := "SELECT id, user, category, limit_amount, month, note FROM budgets WHERE user = ?"
	args := []any{user}
	if month != "" {
		query += " AND month = ?"
		args = append(args, month)
	}
	query += " ORDER BY month DESC, category"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.User, &b.Category, &b.Limit, &b.Month, &b.Note); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO budgets (user, category, limit_amount, month, note) VALUES (?, ?, ?, ?, ?)",
		b.User, b.Category, b.Limit, b.Month, b.Note)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budgets SET category = ?, limit_amount = ?, month = ?, note = ? WHERE id = ? AND user = ?",
		b.Category, b.Limit, b.Month, b.Note, b.ID, b.User)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Budget{}, ErrNotFound
	}
	return b, nil
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, user string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ? AND user = ?", id, user)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ExpenseTotalsByCategory(ctx context.Context, user string, start, end time.Time) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM transactions
		 WHERE user = ? AND type = 'expense' AND date_ms >= ? AND date_ms <= ?
		 GROUP BY category`,
		user, toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("expense totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		totals[category] = total
	}
	return totals, rows.Err()
}

const taxColumns = `id, user, quarter, year, country, state, filing_status, gross_income,
	business_expenses, health_insurance_premiums, retirement_contribution,
	home_office_deduction, estimated_tax, effective_rate, notes, due_date_ms`

func scanTaxEstimate(row interface{ Scan(...any) error }) (core.TaxEstimate, error) {
	var e core.TaxEstimate
	var dueMS int64
	err := row.Scan(&e.ID, &e.User, &e.Quarter, &e.Year, &e.Country, &e.State, &e.FilingStatus,
		&e.GrossIncome, &e.BusinessExpenses, &e.HealthInsurancePremiums, &e.RetirementContribution,
		&e.HomeOfficeDeduction, &e.EstimatedTax, &e.EffectiveRate, &e.Notes, &dueMS)
	if err != nil {
		return core.TaxEstimate{}, err
	}
	e.DueDate = fromMillis(dueMS)
	return e, nil
}

func (s *SQLiteStore) UpsertTaxEstimate(ctx context.Context, e core.TaxEstimate) (core.TaxEstimate, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tax_estimates (user, quarter, year, country, state, filing_status, gross_income,
			business_expenses, health_insurance_premiums, retirement_contribution,
			home_office_deduction, estimated_tax, effective_rate, notes, due_date_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user, quarter, year) DO UPDATE SET
			country = excluded.country, state = excluded.state, filing_status = excluded.filing_status,
			gross_income = excluded.gross_income, business_expenses = excluded.business_expenses,
			health_insurance_premiums = excluded.health_insurance_premiums,
			retirement_contribution = excluded.retirement_contribution,
			home_office_deduction = excluded.home_office_deduction,
			estimated_tax = excluded.estimated_tax, effective_rate = excluded.effective_rate,
			notes = excluded.notes, due_date_ms = excluded.due_date_ms`,
		e.User, e.Quarter, e.Year, e.Country, e.State, e.FilingStatus, e.GrossIncome,
		e.BusinessExpenses, e.HealthInsurancePremiums, e.RetirementContribution,
		e.HomeOfficeDeduction, e.EstimatedTax, e.EffectiveRate, e.Notes, toMillis(e.DueDate))
	if err != nil {
		return core.TaxEstimate{}, fmt.Errorf("upsert tax estimate: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+taxColumns+" FROM tax_estimates WHERE user = ? AND quarter = ? AND year = ?",
		e.User, e.Quarter, e.Year)
	saved, err := scanTaxEstimate(row)
	if err != nil {
		return core.TaxEstimate{}, fmt.Errorf("read tax estimate: %w", err)
	}
	return saved, nil
}

func (s *SQLiteStore) ListTaxEstimates(ctx context.Context, user string, year int) ([]core.TaxEstimate, error) {
	query := "SELECT " + taxColumns + " FROM tax_estimates WHERE user = ?"
	args := []any{user}
	if year > 0 {
		query += " AND year = ?"
		args = append(args, year)
	}
	query += " ORDER BY year DESC, quarter"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tax estimates: %w", err)
	}
	defer rows.Close()

	var out []core.TaxEstimate
	for rows.Next() {
		e, err := scanTaxEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tax estimate: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteTaxEstimate(ctx context.Context, user string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tax_estimates WHERE id = ? AND user = ?", id, user)
	if err != nil {
		return fmt.Errorf("delete tax estimate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const reportColumns = "id, user, name, period, period_key, start_date_ms, end_date_ms, report_type, format, notes, file_path, payload, created_at_ms"

func scanReport(row interface{ Scan(...any) error }) (core.Report, error) {
	var r core.Report
	var startMS, endMS, createdMS int64
	var payload string
	err := row.Scan(&r.ID, &r.User, &r.Name, &r.Period, &r.PeriodKey, &startMS, &endMS,
		&r.ReportType, &r.Format, &r.Notes, &r.FilePath, &payload, &createdMS)
	if err != nil {
		return core.Report{}, err
	}
	r.StartDate = fromMillis(startMS)
	r.EndDate = fromMillis(endMS)
	r.CreatedAt = fromMillis(createdMS)
	r.Payload = []byte(payload)
	return r, nil
}

func (s *SQLiteStore) CreateReport(ctx context.Context, r core.Report) (core.Report, error) {
	r.CreatedAt = time.Now().UTC()
	payload := string(r.Payload)
	if payload == "" {
		payload = "{}"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (user, name, period, period_key, start_date_ms, end_date_ms,
			report_type, format, notes, file_path, payload, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.User, r.Name, r.Period, r.PeriodKey, toMillis(r.StartDate), toMillis(r.EndDate),
		r.ReportType, r.Format, r.Notes, r.FilePath, payload, toMillis(r.CreatedAt))
	if err != nil {
		return core.Report{}, fmt.Errorf("create report: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return core.Report{}, fmt.Errorf("report id: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, user string, id int64) (core.Report, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ? AND user = ?", id, user)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, ErrNotFound
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListReports(ctx context.Context, user string, f ReportFilter) ([]core.Report, error) {
	where := []string{"user = ?"}
	args := []any{user}
	if f.PeriodKey != "" {
		where = append(where, "period_key = ?")
		args = append(args, f.PeriodKey)
	}
	if f.ReportType != "" {
		where = append(where, "report_type = ?")
		args = append(args, f.ReportType)
	}
	if f.Format != "" {
		where = append(where, "format = ?")
		args = append(args, f.Format)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE "+strings.Join(where, " AND ")+
			" ORDER BY created_at_ms DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []core.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if MatchReport(r, f) {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteReport(ctx context.Context, user string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ? AND user = ?", id, user)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetReportFilePath(ctx context.Context, id int64, path string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE reports SET file_path = ? WHERE id = ?", path, id)
	if err != nil {
		return fmt.Errorf("set report file path: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MatchReport applies the search and date-overlap parts of a ReportFilter.
// These run in memory so both backends share exactly one definition of
// "matches".
func MatchReport(r core.Report, f ReportFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Name), needle) &&
			!strings.Contains(strings.ToLower(r.Period), needle) &&
			!strings.Contains(strings.ToLower(r.ReportType), needle) {
			return false
		}
	}
	if !f.Start.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && !r.StartDate.IsZero() && r.StartDate.After(f.End) {
		return false
	}
	return true
}
