package httpapi

import (
	"net/http"

	"github.com/aminus007/fintrack/internal/finance"
)

// POST /v1/goals
func (s *Server) postGoal(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	g := finance.Goal{
		UserID:      req.UserID,
		Name:        req.Name,
		TargetMinor: req.TargetMinor,
		Deadline:    req.Deadline,
	}
	saved, err := s.goals.Create(r.Context(), g)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toGoalResponse(saved))
}

// GET /v1/goals?user_id=
func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	goals, err := s.goals.List(r.Context(), userID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	toJSON(w, http.StatusOK, out)
}

// PUT /v1/goals/{id}
func (s *Server) putGoal(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid goal id")
		return
	}
	var req postGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	g := finance.Goal{
		ID:          id,
		UserID:      req.UserID,
		Name:        req.Name,
		TargetMinor: req.TargetMinor,
		Deadline:    req.Deadline,
	}
	saved, err := s.goals.Update(r.Context(), g)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toGoalResponse(saved))
}

// DELETE /v1/goals/{id}?user_id=
func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid goal id")
		return
	}
	if err := s.goals.Delete(r.Context(), userID, id); err != nil {
		s.svcErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/goals/{id}/funds
func (s *Server) postGoalFunds(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid goal id")
		return
	}
	var req goalFundsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	g, err := s.goals.AddFunds(r.Context(), req.UserID, id, req.AmountMinor)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toGoalResponse(g))
}

// GET /v1/goals/allocations?user_id=
func (s *Server) goalAllocations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	allocs, err := s.goals.Allocations(r.Context(), userID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, allocs)
}
