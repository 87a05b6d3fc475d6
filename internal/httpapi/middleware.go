package httpapi

import (
	"context"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/finance"
)

type ctxKey string

const (
	ctxKeyRegister        ctxKey = "validatedRegister"
	ctxKeyPostAccount     ctxKey = "validatedPostAccount"
	ctxKeyPostTransaction ctxKey = "validatedPostTransaction"
	ctxKeyPostRule        ctxKey = "validatedPostRule"
)

// userIDFromQuery parses the required user_id query parameter.
func userIDFromQuery(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// validateRegister checks the registration payload before the handler runs
// and stores the parsed request in the context.
func (s *Server) validateRegister() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req registerRequest
			if err := decodeJSON(r, &req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if strings.TrimSpace(req.Name) == "" {
				badRequest(w, "name is required")
				return
			}
			if !strings.Contains(req.Email, "@") {
				badRequest(w, "valid email is required")
				return
			}
			if len(req.Currency) != 3 {
				badRequest(w, "currency must be a 3-letter code")
				return
			}
			if req.OpeningCashMinor < 0 {
				badRequest(w, "opening_cash_minor must be >= 0")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyRegister, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePostAccount builds the domain account from the payload, validates
// it through the account service and stashes it for the handler.
func (s *Server) validatePostAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postAccountRequest
			if err := decodeJSON(r, &req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			u, err := s.users.Get(r.Context(), req.UserID)
			if err != nil {
				s.svcErr(w, err)
				return
			}
			bal, err := finance.MinorAmount(u.Currency, req.BalanceMinor)
			if err != nil {
				badRequest(w, err.Error())
				return
			}
			acc := finance.Account{UserID: req.UserID, Kind: req.Kind, Name: req.Name, Balance: bal}
			if err := s.accounts.ValidateCreate(acc); err != nil {
				badRequest(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostAccount, acc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePostTransaction resolves the funding account, builds the domain
// transaction in the account currency and validates it via the ledger service.
func (s *Server) validatePostTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
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
			if err := s.ledger.Validate(r.Context(), tx); err != nil {
				badRequest(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostTransaction, tx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) buildTransaction(r *http.Request, req postTransactionRequest) (finance.Transaction, error) {
	acc, err := s.accounts.Get(r.Context(), req.UserID, req.AccountID)
	if err != nil {
		return finance.Transaction{}, err
	}
	amt, err := finance.MinorAmount(acc.Currency(), req.AmountMinor)
	if err != nil {
		return finance.Transaction{}, err
	}
	return finance.Transaction{
		UserID:    req.UserID,
		AccountID: req.AccountID,
		Type:      req.Type,
		Category:  req.Category,
		Note:      req.Note,
		Date:      req.Date,
		Amount:    amt,
	}, nil
}

// validatePostRule mirrors validatePostTransaction for recurring rules.
func (s *Server) validatePostRule() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
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
			if err := s.recurring.ValidateRule(r.Context(), rule); err != nil {
				badRequest(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostRule, rule)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) buildRule(r *http.Request, req postRuleRequest) (finance.RecurringRule, error) {
	acc, err := s.accounts.Get(r.Context(), req.UserID, req.AccountID)
	if err != nil {
		return finance.RecurringRule{}, err
	}
	amt, err := finance.MinorAmount(acc.Currency(), req.AmountMinor)
	if err != nil {
		return finance.RecurringRule{}, err
	}
	rule := finance.RecurringRule{
		UserID:    req.UserID,
		AccountID: req.AccountID,
		Amount:    amt,
		Type:      req.Type,
		Category:  req.Category,
		Note:      req.Note,
		Frequency: req.Frequency,
		StartDate: req.StartDate,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	} else {
		rule.Active = true
	}
	return rule, nil
}
