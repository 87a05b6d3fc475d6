package httpapi

import (
	"net/http"
	"time"

	"github.com/aminus007/fintrack/internal/finance"
)

// POST /v1/recurring
func (s *Server) postRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := r.Context().Value(ctxKeyPostRule).(finance.RecurringRule)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	saved, err := s.recurring.CreateRule(r.Context(), rule)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toRuleResponse(saved))
}

// GET /v1/recurring?user_id=
func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	rules, err := s.recurring.ListRules(r.Context(), userID)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	out := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleResponse(rule))
	}
	toJSON(w, http.StatusOK, out)
}

// PUT /v1/recurring/{id}
func (s *Server) putRule(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rule id")
		return
	}
	var req postRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	rule, err := s.buildRule(r, req)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	rule.ID = id
	saved, err := s.recurring.UpdateRule(r.Context(), rule)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toRuleResponse(saved))
}

// DELETE /v1/recurring/{id}?user_id=
func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromQuery(r)
	if !ok {
		badRequest(w, "user_id is required")
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rule id")
		return
	}
	if err := s.recurring.DeleteRule(r.Context(), userID, id); err != nil {
		s.svcErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/recurring/process?user_id=
// Without user_id the pass covers every user, mirroring the scheduled sweep.
func (s *Server) processRules(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, ok := userIDFromQuery(r)
		if !ok {
			badRequest(w, "invalid user_id")
			return
		}
		res, err := s.recurring.ProcessUserDue(r.Context(), userID, now)
		if err != nil {
			s.svcErr(w, err)
			return
		}
		ObserveSweep(res.Processed, res.Errors)
		toJSON(w, http.StatusOK, res)
		return
	}
	res, err := s.recurring.ProcessAllDue(r.Context(), now)
	if err != nil {
		s.svcErr(w, err)
		return
	}
	ObserveSweep(res.Processed, res.Errors)
	toJSON(w, http.StatusOK, res)
}
