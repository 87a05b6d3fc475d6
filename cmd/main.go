package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/config"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/httpapi"
	"github.com/aminus007/fintrack/internal/sched"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/service/recurring"
	"github.com/aminus007/fintrack/internal/storage/memory"
	pgstore "github.com/aminus007/fintrack/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	var store httpapi.Store
	var closeFn func()

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		if cfg.DevSeed {
			user, accs, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", user, accs)
				printDevSeedBanner(user, accs)
			}
		}
		store = pg
		logger.Info("storage backend: postgres")
	} else {
		mem := memory.New()
		if cfg.DevSeed {
			user, accs := seedMemory(mem)
			logDevSeed(logger, "memory", user, accs)
			printDevSeedBanner(user, accs)
		}
		store = mem
		logger.Info("storage backend: memory")
	}

	api := httpapi.New(store, logger)

	recurringSvc := recurring.New(store, store, ledger.New(store, store), logger)
	sweeper := sched.New(recurringSvc, logger)
	if err := sweeper.Start(cfg.SweepSpec); err != nil {
		logger.Error("invalid SWEEP_SPEC", "spec", cfg.SweepSpec, "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fintrack service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	sweeper.Stop()
	if closeFn != nil {
		closeFn()
	}
}

// seedMemory loads a demo user with a few funded accounts into the in-memory
// store for local experimentation.
func seedMemory(mem *memory.Store) (finance.User, []finance.Account) {
	now := time.Now().UTC()
	user := finance.User{ID: uuid.New(), Name: faker.Name(), Email: faker.Email(), Currency: "USD", CreatedAt: now}
	mem.SeedUser(user)

	cashBal, _ := finance.MinorAmount("USD", 50_00)
	checkBal, _ := finance.MinorAmount("USD", 1200_00)
	saveBal, _ := finance.MinorAmount("USD", 300_00)
	accs := []finance.Account{
		{ID: uuid.New(), UserID: user.ID, Kind: finance.AccountKindCash, Name: "Cash", Balance: cashBal, CreatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Kind: finance.AccountKindChecking, Name: "Main Checking", Balance: checkBal, CreatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Kind: finance.AccountKindSavings, Name: "Rainy Day", Balance: saveBal, CreatedAt: now},
	}
	for _, a := range accs {
		mem.SeedAccount(a)
	}
	return user, accs
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, backend string, user finance.User, accs []finance.Account) {
	ids := map[string]string{}
	for _, a := range accs {
		ids[string(a.Kind)+"_account_id"] = a.ID.String()
	}
	l.Info("DEV seed ("+backend+")", "user_id", user.ID.String(), "ids", ids)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(user finance.User, accs []finance.Account) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("user_id: %s\n", user.ID.String())
	for _, a := range accs {
		fmt.Printf("%s_account_id: %s\n", a.Kind, a.ID.String())
	}
	fmt.Println("==================================================")
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
