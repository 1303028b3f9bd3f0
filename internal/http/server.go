// Package http exposes the JSON API: transactions, categories, budgets,
// quarterly tax estimates, reports and the dashboard summary.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Options configures a Server. Queue may be nil; exports then stay pending
// until a worker with a live broker connection picks the reports up again.
type Options struct {
	Addr     string
	Store    storage.Store
	Queue    services.ExportPublisher
	Logger   *log.Logger
	CacheTTL time.Duration
}

type Server struct {
	http.Server

	store      storage.Store
	reports    *services.ReportService
	budgets    *services.BudgetService
	summary    *services.SummaryService
	logger     *log.Logger
	structured *log.StructuredLogger

	rateLimiter *rateLimiter

	// summaryCache holds computed dashboards per user; any write for a user
	// invalidates that user's entries by key prefix.
	summaryCache *cache.LRUCache[services.Summary]

	shutdownOnce sync.Once
}

// NewServer wires routes and returns a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		store:        opts.Store,
		reports:      services.NewReportService(opts.Store, opts.Queue),
		budgets:      services.NewBudgetService(opts.Store),
		summary:      services.NewSummaryService(opts.Store),
		logger:       logger,
		structured:   log.NewStructuredLogger(logger),
		rateLimiter:  newRateLimiter(60),
		summaryCache: cache.NewLRUCache[services.Summary](100, opts.CacheTTL),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /api/health", handleAPIHealth)

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withMiddleware(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/transactions/summary", s.withMiddleware(s.handleSummary))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withMiddleware(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withMiddleware(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/budgets", s.withMiddleware(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withMiddleware(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withMiddleware(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withMiddleware(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/tax-estimates", s.withMiddleware(s.handleListTaxEstimates))
	mux.HandleFunc("POST /api/tax-estimates", s.withMiddleware(s.handleUpsertTaxEstimate))
	mux.HandleFunc("DELETE /api/tax-estimates/{id}", s.withMiddleware(s.handleDeleteTaxEstimate))

	mux.HandleFunc("GET /api/reports", s.withMiddleware(s.handleListReports))
	mux.HandleFunc("POST /api/reports", s.withMiddleware(s.handleGenerateReport))
	mux.HandleFunc("GET /api/reports/{id}", s.withMiddleware(s.handleGetReport))
	mux.HandleFunc("DELETE /api/reports/{id}", s.withMiddleware(s.handleDeleteReport))
	mux.HandleFunc("GET /api/reports/{id}/export", s.withMiddleware(s.handleExportReport))

	return s
}

// RegisterCaches hands the server's caches to the cleanup manager.
func (s *Server) RegisterCaches(m *cache.Manager) {
	m.Register(s.summaryCache)
}

// Shutdown stops background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateUser drops the user's cached summaries after any write.
func (s *Server) invalidateUser(user string) {
	s.summaryCache.DeletePrefix("summary:" + user + ":")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func handleAPIHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
