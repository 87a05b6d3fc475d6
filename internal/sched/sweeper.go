// Package sched runs the periodic recurring-rule sweep on a cron schedule.
package sched

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aminus007/fintrack/internal/httpapi"
	"github.com/aminus007/fintrack/internal/service/recurring"
)

// Sweeper triggers recurring.ProcessAllDue on a cron spec such as "@hourly".
type Sweeper struct {
	svc recurring.Service
	log *slog.Logger
	c   *cron.Cron
}

// New prepares a sweeper; Start arms the schedule.
func New(svc recurring.Service, logger *slog.Logger) *Sweeper {
	return &Sweeper{svc: svc, log: logger, c: cron.New()}
}

// Start registers the sweep under the given spec and starts the scheduler.
func (s *Sweeper) Start(spec string) error {
	_, err := s.c.AddFunc(spec, s.sweep)
	if err != nil {
		return err
	}
	s.c.Start()
	s.log.Info("recurring sweeper started", "spec", spec)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
	s.log.Info("recurring sweeper stopped")
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	now := time.Now().UTC()
	res, err := s.svc.ProcessAllDue(ctx, now)
	if err != nil {
		s.log.Error("recurring sweep failed", "err", err)
		return
	}
	httpapi.ObserveSweep(res.Processed, res.Errors)
	if res.Processed > 0 || res.Errors > 0 {
		s.log.Info("recurring sweep complete", "processed", res.Processed, "errors", res.Errors)
	}
}
