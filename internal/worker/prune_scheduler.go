package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
)

// Pruner drops transactions older than the retention window.
type Pruner interface {
	Prune(ctx context.Context) (ledger.PruneResult, error)
}

// PruneScheduler runs a Pruner on a cron schedule ("@daily", "0 3 * * *").
type PruneScheduler struct {
	cron    *cron.Cron
	pruner  Pruner
	timeout time.Duration
	logger  *log.Logger
}

func NewPruneScheduler(schedule string, p Pruner, logger *log.Logger) (*PruneScheduler, error) {
	if logger == nil {
		logger = log.Discard()
	}
	s := &PruneScheduler{
		cron:    cron.New(),
		pruner:  p,
		timeout: time.Minute,
		logger:  logger.WithComponent(log.ComponentScheduler),
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *PruneScheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("Prune scheduled", "next", e.Next.Format(time.RFC3339))
	}
}

// Stop stops scheduling and waits for a running prune, or for ctx.
func (s *PruneScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PruneScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.RunOnce(ctx)
}

// RunOnce prunes immediately, recording the outcome.
func (s *PruneScheduler) RunOnce(ctx context.Context) (ledger.PruneResult, error) {
	res, err := s.pruner.Prune(ctx)
	if err != nil {
		metrics.PruneRuns.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "Scheduled prune failed", log.FieldError, err)
		return res, err
	}
	metrics.PruneRuns.WithLabelValues("ok").Inc()
	s.logger.InfoContext(ctx, "Scheduled prune completed",
		"cutoff", res.Cutoff.String(), "expenses", res.Expenses, "income", res.Income)
	return res, nil
}
