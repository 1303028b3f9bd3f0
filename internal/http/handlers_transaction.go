package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type transactionRequest struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Amount:      tx.Amount,
		Date:        tx.Date,
		Description: tx.Description,
		Notes:       tx.Notes,
		CreatedAt:   tx.CreatedAt,
	}
}

func toTransactionResponses(txns []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txns))
	for _, tx := range txns {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

func (req transactionRequest) toDomain(user string) (core.Transaction, error) {
	date, ok := core.ParseDateInput(req.Date)
	if !ok {
		return core.Transaction{}, core.ErrZeroDate
	}
	tx := core.Transaction{
		User:        user,
		Type:        core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Category:    sanitizeInput(req.Category),
		Amount:      req.Amount,
		Date:        date,
		Description: sanitizeInput(req.Description),
		Notes:       sanitizeInput(req.Notes),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := req.toDomain(user)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := s.store.GetTransaction(r.Context(), userFrom(r), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := req.toDomain(user)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx.ID = id

	saved, err := s.store.UpdateTransaction(r.Context(), tx)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, toTransactionResponse(saved))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteTransaction(r.Context(), user, id); err != nil {
		writeFailure(w, r, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := transactionFilterFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, total, err := s.store.ListTransactions(r.Context(), userFrom(r), f)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	totalPages := (total + f.PageSize - 1) / f.PageSize
	writeJSON(w, http.StatusOK, struct {
		Data       []transactionResponse `json:"data"`
		Pagination pagination            `json:"pagination"`
	}{
		Data: toTransactionResponses(txns),
		Pagination: pagination{
			Page:       f.Page,
			PageSize:   f.PageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

func transactionFilterFrom(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	f := storage.TransactionFilter{
		Type:     core.TransactionType(strings.ToLower(strings.TrimSpace(q.Get("type")))),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   strings.TrimSpace(q.Get("sortBy")),
		SortDesc: q.Get("sortOrder") != "asc",
		Page:     1,
		PageSize: defaultPageSize,
	}
	if f.Type != "" && !f.Type.Valid() {
		return f, core.ErrInvalidType
	}

	var err error
	if f.Start, err = parseDateQuery(r, "startDate"); err != nil {
		return f, err
	}
	if f.End, err = parseDateQuery(r, "endDate"); err != nil {
		return f, err
	}
	if !f.End.IsZero() {
		f.End = core.EndOfDay(f.End)
	}

	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			f.Page = p
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 {
			f.PageSize = min(ps, maxPageSize)
		}
	}
	return f, nil
}
