package httpapi

import (
	"net/http"
)

// POST /v1/users
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyRegister).(registerRequest)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	u, cash, err := s.users.Register(r.Context(), req.Name, req.Email, req.Currency, req.OpeningCashMinor)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, registerResponse{User: toUserResponse(u), Cash: toAccountResponse(cash)})
}

// GET /v1/users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toUserResponse(u))
}

// PATCH /v1/users/{id}/currency
func (s *Server) patchUserCurrency(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	var req struct {
		Currency string `json:"currency"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	u, err := s.users.UpdateCurrency(r.Context(), id, req.Currency)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toUserResponse(u))
}
