package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type budgetRequest struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Month    string  `json:"month"`
	Note     string  `json:"note"`
}

type budgetResponse struct {
	ID        int64   `json:"id"`
	Category  string  `json:"category"`
	Limit     float64 `json:"limit"`
	Month     string  `json:"month"`
	Note      string  `json:"note,omitempty"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Status    string  `json:"status"`
}

func toBudgetResponse(b services.BudgetStatus) budgetResponse {
	return budgetResponse{
		ID:        b.ID,
		Category:  b.Category,
		Limit:     b.Limit,
		Month:     b.Month,
		Note:      b.Note,
		Spent:     b.Spent,
		Remaining: b.Remaining,
		Status:    b.Status,
	}
}

func (req budgetRequest) toDomain(user string) (core.Budget, error) {
	b := core.Budget{
		User:     user,
		Category: sanitizeInput(req.Category),
		Limit:    req.Limit,
		Month:    strings.TrimSpace(req.Month),
		Note:     sanitizeInput(req.Note),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

type budgetSummary struct {
	TotalLimit     float64 `json:"totalLimit"`
	TotalSpent     float64 `json:"totalSpent"`
	TotalRemaining float64 `json:"totalRemaining"`
}

// handleListBudgets lists budgets with actual spending, optionally narrowed
// to one month.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" && !core.ValidMonthKey(month) {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonthKey.Error())
		return
	}

	statuses, err := s.budgets.ListWithSpending(r.Context(), userFrom(r), month)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(statuses))
	var sum budgetSummary
	for _, b := range statuses {
		out = append(out, toBudgetResponse(b))
		sum.TotalLimit += b.Limit
		sum.TotalSpent += b.Spent
		sum.TotalRemaining += b.Remaining
	}
	writeJSON(w, http.StatusOK, struct {
		Data    []budgetResponse `json:"data"`
		Summary budgetSummary    `json:"summary"`
	}{Data: out, Summary: sum})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := req.toDomain(user)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// One budget per category and month.
	existing, err := s.store.ListBudgets(r.Context(), user, b.Month)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	for _, other := range existing {
		if strings.EqualFold(other.Category, b.Category) {
			writeError(w, http.StatusConflict, "budget already exists for this category and month")
			return
		}
	}

	saved, err := s.store.CreateBudget(r.Context(), b)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(services.BudgetStatus{
		Budget:    saved,
		Remaining: saved.Limit,
		Status:    services.BudgetGood,
	}))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := req.toDomain(user)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b.ID = id

	saved, err := s.store.UpdateBudget(r.Context(), b)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(services.BudgetStatus{
		Budget:    saved,
		Remaining: saved.Limit,
		Status:    services.BudgetGood,
	}))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteBudget(r.Context(), userFrom(r), id); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "budget deleted"})
}
