package httpapi

import (
	"net/http"

	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/ledger"
)

// POST /v1/transactions
func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := r.Context().Value(ctxKeyPostTransaction).(finance.Transaction)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	saved, err := s.ledger.Create(r.Context(), tx)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

// GET /v1/transactions?user_id=
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	txs, err := s.ledger.List(r.Context(), userID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponses(txs))
}

// GET /v1/transactions/{id}?user_id=
func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	tx, err := s.ledger.Get(r.Context(), userID, id)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// PUT /v1/transactions/{id}
func (s *Server) putTransaction(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	var req postTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	tx, err := s.buildTransaction(r, req)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	tx.ID = id
	saved, err := s.ledger.Update(r.Context(), tx)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(saved))
}

// DELETE /v1/transactions/{id}?user_id=
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	if err := s.ledger.Delete(r.Context(), userID, id); err != nil {
		s.svcErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/transactions/salary
func (s *Server) postSalary(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postSalaryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	allocs := make([]ledger.SalaryAllocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		allocs = append(allocs, ledger.SalaryAllocation{AccountID: a.AccountID, Percent: a.Percent})
	}
	txs, err := s.ledger.AllocateSalary(r.Context(), req.UserID, req.Date, req.AmountMinor, allocs)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTransactionResponses(txs))
}
