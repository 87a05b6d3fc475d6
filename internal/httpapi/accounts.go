package httpapi

import (
	"net/http"

	"github.com/aminus007/fintrack/internal/finance"
)

// POST /v1/accounts
func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	acc, ok := r.Context().Value(ctxKeyPostAccount).(finance.Account)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	saved, err := s.accounts.Create(r.Context(), acc)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(saved))
}

// GET /v1/accounts?user_id=
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	accs, err := s.accounts.List(r.Context(), userID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accs))
	for _, a := range accs {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

// GET /v1/accounts/{id}?user_id=
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid account id")
		return
	}
	acc, err := s.accounts.Get(r.Context(), userID, id)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}

// PATCH /v1/accounts/{id}
func (s *Server) renameAccount(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid account id")
		return
	}
	var req renameAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	acc, err := s.accounts.Rename(r.Context(), req.UserID, id, req.Name)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}

// DELETE /v1/accounts/{id}?user_id=
func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid account id")
		return
	}
	if err := s.accounts.Delete(r.Context(), userID, id); err != nil {
		s.svcErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
