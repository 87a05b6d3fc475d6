package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aminus007/fintrack/internal/finance"
)

// POST /v1/budgets
func (s *Server) postBudget(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	b := finance.Budget{
		UserID:     req.UserID,
		Category:   req.Category,
		LimitMinor: req.LimitMinor,
		Month:      time.Month(req.Month),
		Year:       req.Year,
	}
	saved, err := s.budgets.Create(r.Context(), b)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toBudgetResponse(saved))
}

// GET /v1/budgets?user_id=
func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	budgets, err := s.budgets.List(r.Context(), userID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	toJSON(w, http.StatusOK, out)
}

// PUT /v1/budgets/{id}
func (s *Server) putBudget(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid budget id")
		return
	}
	var req postBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	b := finance.Budget{
		ID:         id,
		UserID:     req.UserID,
		Category:   req.Category,
		LimitMinor: req.LimitMinor,
		Month:      time.Month(req.Month),
		Year:       req.Year,
	}
	saved, err := s.budgets.Update(r.Context(), b)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toBudgetResponse(saved))
}

// DELETE /v1/budgets/{id}?user_id=
func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid budget id")
		return
	}
	if err := s.budgets.Delete(r.Context(), userID, id); err != nil {
		s.svcErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/budgets/progress?user_id=&month=&year=
// Month and year default to the current UTC period.
func (s *Server) budgetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	now := time.Now().UTC()
	month := int(now.Month())
	year := now.Year()
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			badRequest(w, "month must be 1-12")
			return
		}
		month = m
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "invalid year")
			return
		}
		year = y
	}
	progress, err := s.budgets.Progress(r.Context(), userID, time.Month(month), year)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, progress)
}
