package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

type categoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
}

// handleListCategories lists the user's categories, seeding the stock set on
// first touch.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := s.store.EnsureDefaultCategories(r.Context(), user); err != nil {
		writeFailure(w, r, err)
		return
	}
	cats, err := s.store.ListCategories(r.Context(), user)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := core.Category{
		User:  user,
		Name:  sanitizeInput(req.Name),
		Type:  core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Color: sanitizeInput(req.Color),
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateCategory(r.Context(), c)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(saved))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := core.Category{
		ID:    id,
		User:  user,
		Name:  sanitizeInput(req.Name),
		Type:  core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Color: sanitizeInput(req.Color),
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.UpdateCategory(r.Context(), c)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(saved))
}

// handleDeleteCategory removes a custom category. Default categories cannot
// be deleted and report as missing.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteCategory(r.Context(), userFrom(r), id); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
