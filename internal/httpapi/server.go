// Package httpapi wires the HTTP surface of the fintrack service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aminus007/fintrack/internal/service/account"
	"github.com/aminus007/fintrack/internal/service/budget"
	"github.com/aminus007/fintrack/internal/service/debt"
	"github.com/aminus007/fintrack/internal/service/goal"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/service/recurring"
	"github.com/aminus007/fintrack/internal/service/user"
)

// Store is the full storage surface the API needs. Both the memory and the
// Postgres stores satisfy it; the overlapping reads (GetAccount and friends)
// merge across the embedded interfaces.
type Store interface {
	user.Repo
	user.Writer
	account.Repo
	account.Writer
	ledger.Repo
	ledger.Writer
	recurring.Repo
	recurring.Writer
	budget.Repo
	budget.Writer
	goal.Repo
	goal.Writer
	debt.Repo
	debt.Writer
	Ready(ctx context.Context) error
}

// Server wires handlers and middleware using Chi.
// It composes read and write dependencies through services.
type Server struct {
	users     user.Service
	accounts  account.Service
	ledger    ledger.Service
	recurring recurring.Service
	budgets   budget.Service
	goals     goal.Service
	debts     debt.Service
	store     Store
	log       *slog.Logger
	rt        *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// The logger is used by basic request/response logging and panic recovery.
func New(store Store, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	if auth := authJWTFromEnv(); auth != nil {
		r.Use(auth)
	}

	ledgerSvc := ledger.New(store, store)
	s := &Server{
		users:     user.New(store, store),
		accounts:  account.New(store, store),
		ledger:    ledgerSvc,
		recurring: recurring.New(store, store, ledgerSvc, logger),
		budgets:   budget.New(store, store),
		goals:     goal.New(store, store),
		debts:     debt.New(store, store, ledgerSvc),
		store:     store,
		log:       logger,
		rt:        r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Users
	s.rt.With(s.validateRegister()).Post("/v1/users", s.registerUser)
	s.rt.Get("/v1/users/{id}", s.getUser)
	s.rt.Patch("/v1/users/{id}/currency", s.patchUserCurrency)
	// Accounts
	s.rt.With(s.validatePostAccount()).Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{id}", s.getAccount)
	s.rt.Patch("/v1/accounts/{id}", s.renameAccount)
	s.rt.Delete("/v1/accounts/{id}", s.deleteAccount)
	// Transactions
	s.rt.With(s.validatePostTransaction()).Post("/v1/transactions", s.postTransaction)
	s.rt.Get("/v1/transactions", s.listTransactions)
	s.rt.Get("/v1/transactions/{id}", s.getTransaction)
	s.rt.Put("/v1/transactions/{id}", s.putTransaction)
	s.rt.Delete("/v1/transactions/{id}", s.deleteTransaction)
	s.rt.Post("/v1/transactions/salary", s.postSalary)
	// Recurring rules
	s.rt.With(s.validatePostRule()).Post("/v1/recurring", s.postRule)
	s.rt.Get("/v1/recurring", s.listRules)
	s.rt.Put("/v1/recurring/{id}", s.putRule)
	s.rt.Delete("/v1/recurring/{id}", s.deleteRule)
	s.rt.Post("/v1/recurring/process", s.processRules)
	// Budgets
	s.rt.Post("/v1/budgets", s.postBudget)
	s.rt.Get("/v1/budgets", s.listBudgets)
	s.rt.Put("/v1/budgets/{id}", s.putBudget)
	s.rt.Delete("/v1/budgets/{id}", s.deleteBudget)
	s.rt.Get("/v1/budgets/progress", s.budgetProgress)
	// Goals
	s.rt.Post("/v1/goals", s.postGoal)
	s.rt.Get("/v1/goals", s.listGoals)
	s.rt.Put("/v1/goals/{id}", s.putGoal)
	s.rt.Delete("/v1/goals/{id}", s.deleteGoal)
	s.rt.Post("/v1/goals/{id}/funds", s.postGoalFunds)
	s.rt.Get("/v1/goals/allocations", s.goalAllocations)
	// Debts
	s.rt.Post("/v1/debts", s.postDebt)
	s.rt.Get("/v1/debts", s.listDebts)
	s.rt.Put("/v1/debts/{id}", s.putDebt)
	s.rt.Delete("/v1/debts/{id}", s.deleteDebt)
	s.rt.Post("/v1/debts/{id}/payments", s.postDebtPayment)
	// Category dictionary
	s.rt.Get("/v1/categories", s.getCategories)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
