// Package services orchestrates the domain: report generation, async export
// processing, budget progress and quarterly tax estimates.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// ExportPublisher is the queue surface the service needs. Nil-able so the API
// degrades to synchronous-only operation when AMQP is not configured.
type ExportPublisher interface {
	PublishReportExport(ctx context.Context, reportID int64, user, format string) error
}

// ReportService generates, persists and lists reports.
type ReportService struct {
	store storage.Store
	queue ExportPublisher
	now   func() time.Time
}

func NewReportService(store storage.Store, queue ExportPublisher) *ReportService {
	return &ReportService{store: store, queue: queue, now: time.Now}
}

// GenerateRequest carries everything a report-generation call supplies.
type GenerateRequest struct {
	User       string
	Name       string
	ReportType string
	Format     string
	PeriodKey  string
	Custom     core.CustomRange
	Notes      string
	// PayloadOverride, when present, is merged shallowly over the computed
	// payload: its top-level keys win.
	PayloadOverride json.RawMessage
}

// Generate resolves the period, fetches the needed transaction windows,
// builds the payload, persists the report and queues the export. Period
// validation errors surface as core.ErrInvalidPeriod.
func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (core.Report, error) {
	rng, err := core.ResolvePeriod(core.PeriodKey(req.PeriodKey), req.Custom, s.now())
	if err != nil {
		return core.Report{}, err
	}
	prev, hasPrev := core.PreviousRange(rng)

	in := report.Input{
		HasPrevious: hasPrev,
		PeriodLabel: rng.Label,
		Start:       rng.Start,
		End:         rng.End,
		GeneratedAt: s.now(),
		Notes:       req.Notes,
	}

	// The windows are independent; fetch them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txns, err := s.store.FetchRange(gctx, req.User, rng.Start, rng.End)
		if err != nil {
			return fmt.Errorf("fetch current window: %w", err)
		}
		in.Transactions = txns
		return nil
	})
	if hasPrev {
		g.Go(func() error {
			txns, err := s.store.FetchRange(gctx, req.User, prev.Start, prev.End)
			if err != nil {
				return fmt.Errorf("fetch previous window: %w", err)
			}
			in.Previous = txns
			return nil
		})
	}
	if needsCumulative(req.ReportType) {
		g.Go(func() error {
			txns, err := s.store.FetchRange(gctx, req.User, time.Time{}, rng.End)
			if err != nil {
				return fmt.Errorf("fetch cumulative window: %w", err)
			}
			in.Cumulative = txns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Report{}, err
	}

	payload := report.Build(req.ReportType, in)
	raw, err := json.Marshal(payload)
	if err != nil {
		return core.Report{}, fmt.Errorf("marshal payload: %w", err)
	}
	if len(req.PayloadOverride) > 0 {
		raw, err = mergePayload(raw, req.PayloadOverride)
		if err != nil {
			return core.Report{}, fmt.Errorf("merge payload override: %w", err)
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = payload.Title + " - " + rng.Label
	}

	saved, err := s.store.CreateReport(ctx, core.Report{
		User:       req.User,
		Name:       name,
		Period:     rng.Label,
		PeriodKey:  req.PeriodKey,
		StartDate:  rng.Start,
		EndDate:    rng.End,
		ReportType: req.ReportType,
		Format:     req.Format,
		Notes:      req.Notes,
		Payload:    raw,
	})
	if err != nil {
		return core.Report{}, fmt.Errorf("save report: %w", err)
	}

	// Export rendering is async; a queue failure never fails the request
	// since the report is already persisted.
	if err := s.publishExport(ctx, saved); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"report_id", saved.ID, "format", saved.Format, "error", err)
	}

	return saved, nil
}

func (s *ReportService) publishExport(ctx context.Context, r core.Report) error {
	if s.queue == nil {
		slog.WarnContext(ctx, "Export queue not available, skipping export message", "report_id", r.ID)
		return nil
	}
	if r.Format == "" {
		return nil
	}
	return s.queue.PublishReportExport(ctx, r.ID, r.User, r.Format)
}

func (s *ReportService) List(ctx context.Context, user string, f storage.ReportFilter) ([]core.Report, error) {
	return s.store.ListReports(ctx, user, f)
}

func (s *ReportService) Get(ctx context.Context, user string, id int64) (core.Report, error) {
	return s.store.GetReport(ctx, user, id)
}

func (s *ReportService) Delete(ctx context.Context, user string, id int64) error {
	return s.store.DeleteReport(ctx, user, id)
}

// NormalizedPayload loads a report and normalizes its stored payload,
// whatever its vintage.
func (s *ReportService) NormalizedPayload(ctx context.Context, user string, id int64) (report.Payload, error) {
	r, err := s.store.GetReport(ctx, user, id)
	if err != nil {
		return report.Payload{}, err
	}
	return report.Normalize(r.Payload, report.Fallback{
		Title:       r.Name,
		ReportType:  r.ReportType,
		Period:      r.Period,
		GeneratedAt: r.CreatedAt,
	}), nil
}

// needsCumulative reports whether the report type is a point-in-time snapshot
// that needs every transaction through the period end.
func needsCumulative(reportType string) bool {
	canon := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(reportType, " ", ""), "-", ""))
	return canon == "balancesheet"
}

// mergePayload overlays the top-level keys of override onto base.
func mergePayload(base, override json.RawMessage) (json.RawMessage, error) {
	var baseMap, overrideMap map[string]json.RawMessage
	if err := json.Unmarshal(base, &baseMap); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(override, &overrideMap); err != nil {
		return nil, err
	}
	for k, v := range overrideMap {
		baseMap[k] = v
	}
	return json.Marshal(baseMap)
}
