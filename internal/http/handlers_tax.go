package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type taxEstimateRequest struct {
	Quarter                 string  `json:"quarter"`
	Year                    int     `json:"year"`
	Country                 string  `json:"country"`
	State                   string  `json:"state"`
	FilingStatus            string  `json:"filingStatus"`
	GrossIncome             float64 `json:"grossIncome"`
	BusinessExpenses        float64 `json:"businessExpenses"`
	HealthInsurancePremiums float64 `json:"healthInsurancePremiums"`
	RetirementContribution  float64 `json:"retirementContribution"`
	HomeOfficeDeduction     float64 `json:"homeOfficeDeduction"`
	// EstimatedTax, when supplied, overrides the flat-rate computation.
	EstimatedTax float64 `json:"estimatedTax"`
	Notes        string  `json:"notes"`
}

type taxEstimateResponse struct {
	ID                      int64     `json:"id"`
	Quarter                 string    `json:"quarter"`
	Year                    int       `json:"year"`
	Country                 string    `json:"country,omitempty"`
	State                   string    `json:"state,omitempty"`
	FilingStatus            string    `json:"filingStatus,omitempty"`
	GrossIncome             float64   `json:"grossIncome"`
	BusinessExpenses        float64   `json:"businessExpenses"`
	HealthInsurancePremiums float64   `json:"healthInsurancePremiums"`
	RetirementContribution  float64   `json:"retirementContribution"`
	HomeOfficeDeduction     float64   `json:"homeOfficeDeduction"`
	EstimatedTax            float64   `json:"estimatedTax"`
	EffectiveRate           float64   `json:"effectiveRate"`
	Notes                   string    `json:"notes,omitempty"`
	DueDate                 time.Time `json:"dueDate"`
}

func toTaxEstimateResponse(e core.TaxEstimate) taxEstimateResponse {
	return taxEstimateResponse{
		ID:                      e.ID,
		Quarter:                 e.Quarter,
		Year:                    e.Year,
		Country:                 e.Country,
		State:                   e.State,
		FilingStatus:            e.FilingStatus,
		GrossIncome:             e.GrossIncome,
		BusinessExpenses:        e.BusinessExpenses,
		HealthInsurancePremiums: e.HealthInsurancePremiums,
		RetirementContribution:  e.RetirementContribution,
		HomeOfficeDeduction:     e.HomeOfficeDeduction,
		EstimatedTax:            e.EstimatedTax,
		EffectiveRate:           e.EffectiveRate,
		Notes:                   e.Notes,
		DueDate:                 e.DueDate,
	}
}

// handleListTaxEstimates lists worksheets, optionally scoped to one year.
func (s *Server) handleListTaxEstimates(w http.ResponseWriter, r *http.Request) {
	year := 0
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}

	estimates, err := s.store.ListTaxEstimates(r.Context(), userFrom(r), year)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	out := make([]taxEstimateResponse, 0, len(estimates))
	for _, e := range estimates {
		out = append(out, toTaxEstimateResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpsertTaxEstimate computes and saves a quarterly worksheet. Posting
// the same user, quarter and year again replaces the earlier numbers.
func (s *Server) handleUpsertTaxEstimate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req taxEstimateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e := core.TaxEstimate{
		User:                    user,
		Quarter:                 strings.ToUpper(strings.TrimSpace(req.Quarter)),
		Year:                    req.Year,
		Country:                 sanitizeInput(req.Country),
		State:                   sanitizeInput(req.State),
		FilingStatus:            sanitizeInput(req.FilingStatus),
		GrossIncome:             req.GrossIncome,
		BusinessExpenses:        req.BusinessExpenses,
		HealthInsurancePremiums: req.HealthInsurancePremiums,
		RetirementContribution:  req.RetirementContribution,
		HomeOfficeDeduction:     req.HomeOfficeDeduction,
		Notes:                   sanitizeInput(req.Notes),
	}
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.EstimatedTax > 0 {
		e.EstimatedTax = req.EstimatedTax
		if e.GrossIncome > 0 {
			e.EffectiveRate = e.EstimatedTax / e.GrossIncome * 100
		}
		e.DueDate = services.QuarterDueDate(e.Quarter, e.Year)
	} else {
		e = services.EstimateTax(e)
	}

	saved, err := s.store.UpsertTaxEstimate(r.Context(), e)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaxEstimateResponse(saved))
}

func (s *Server) handleDeleteTaxEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteTaxEstimate(r.Context(), userFrom(r), id); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "tax estimate deleted"})
}
