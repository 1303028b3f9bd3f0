package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type reportRequest struct {
	Name       string `json:"name"`
	ReportType string `json:"reportType"`
	Format     string `json:"format"`
	// PeriodKey and Period are aliases; PeriodKey wins when both are set.
	PeriodKey string           `json:"periodKey"`
	Period    string           `json:"period"`
	Custom    core.CustomRange `json:"customRange"`
	Notes     string           `json:"notes"`
	Payload   json.RawMessage  `json:"payload"`
}

type reportResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Period     string          `json:"period"`
	PeriodKey  string          `json:"periodKey,omitempty"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	ReportType string          `json:"reportType"`
	Format     string          `json:"format,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	FilePath   string          `json:"filePath,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toReportResponse(r core.Report, includePayload bool) reportResponse {
	out := reportResponse{
		ID:         r.ID,
		Name:       r.Name,
		Period:     r.Period,
		PeriodKey:  r.PeriodKey,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		ReportType: r.ReportType,
		Format:     r.Format,
		Notes:      r.Notes,
		FilePath:   r.FilePath,
		CreatedAt:  r.CreatedAt,
	}
	if includePayload {
		out.Payload = r.Payload
	}
	return out
}

// handleGenerateReport builds and saves a report for the requested period.
// The export, if a format was asked for, renders asynchronously.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req reportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.ReportType) == "" {
		writeError(w, http.StatusBadRequest, "reportType is required")
		return
	}
	if req.Format != "" {
		if _, err := export.ForFormat(req.Format); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	periodKey := strings.TrimSpace(req.PeriodKey)
	if periodKey == "" {
		periodKey = strings.TrimSpace(req.Period)
	}

	saved, err := s.reports.Generate(r.Context(), services.GenerateRequest{
		User:            user,
		Name:            sanitizeInput(req.Name),
		ReportType:      strings.TrimSpace(req.ReportType),
		Format:          strings.ToLower(strings.TrimSpace(req.Format)),
		PeriodKey:       periodKey,
		Custom:          req.Custom,
		Notes:           sanitizeInput(req.Notes),
		PayloadOverride: req.Payload,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Message string         `json:"message"`
		Report  reportResponse `json:"report"`
	}{
		Message: "report generated",
		Report:  toReportResponse(saved, true),
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	periodKey := strings.TrimSpace(q.Get("periodKey"))
	if periodKey == "" {
		periodKey = strings.TrimSpace(q.Get("period"))
	}
	f := storage.ReportFilter{
		PeriodKey:  periodKey,
		ReportType: strings.TrimSpace(q.Get("reportType")),
		Format:     strings.TrimSpace(q.Get("format")),
		Search:     strings.TrimSpace(q.Get("search")),
	}
	var err error
	if f.Start, err = parseDateQuery(r, "startDate"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.End, err = parseDateQuery(r, "endDate"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !f.End.IsZero() {
		f.End = core.EndOfDay(f.End)
	}

	reports, err := s.reports.List(r.Context(), userFrom(r), f)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	out := make([]reportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportResponse(rep, false))
	}
	writeJSON(w, http.StatusOK, map[string][]reportResponse{"reports": out})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := s.reports.Get(r.Context(), userFrom(r), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(rep, true))
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.reports.Delete(r.Context(), userFrom(r), id); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "report deleted"})
}

// handleExportReport renders a stored report synchronously and streams it as
// a download.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}
	exporter, err := export.ForFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.reports.Get(r.Context(), user, id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	payload, err := s.reports.NormalizedPayload(r.Context(), user, id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	data, err := exporter.Render(payload)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	filename := report.SanitizeFilename(rep.Name) + exporter.Extension()
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
