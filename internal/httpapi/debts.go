package httpapi

import (
	"net/http"

	"github.com/aminus007/fintrack/internal/finance"
)

// POST /v1/debts
func (s *Server) postDebt(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postDebtRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	d := finance.Debt{
		UserID:       req.UserID,
		Name:         req.Name,
		AmountMinor:  req.AmountMinor,
		InterestRate: req.InterestRate,
		DueDate:      req.DueDate,
		Notes:        req.Notes,
	}
	saved, err := s.debts.Create(r.Context(), d)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toDebtResponse(saved))
}

// GET /v1/debts?user_id=
func (s *Server) listDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	debts, err := s.debts.List(r.Context(), userID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	out := make([]debtResponse, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtResponse(d))
	}
	toJSON(w, http.StatusOK, out)
}

// PUT /v1/debts/{id}
func (s *Server) putDebt(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid debt id")
		return
	}
	var req postDebtRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	d := finance.Debt{
		ID:           id,
		UserID:       req.UserID,
		Name:         req.Name,
		AmountMinor:  req.AmountMinor,
		InterestRate: req.InterestRate,
		DueDate:      req.DueDate,
		Notes:        req.Notes,
	}
	saved, err := s.debts.Update(r.Context(), d)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toDebtResponse(saved))
}

// DELETE /v1/debts/{id}?user_id=
func (s *Server) deleteDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid debt id")
		return
	}
	if err := s.debts.Delete(r.Context(), userID, id); err != nil {
		s.svcErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/debts/{id}/payments
func (s *Server) postDebtPayment(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid debt id")
		return
	}
	var req debtPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	d, err := s.debts.RecordPayment(r.Context(), req.UserID, id, req.AmountMinor, req.FromAccountID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toDebtResponse(d))
}
