package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	"moneytracker/internal/ledger"
	"moneytracker/internal/limits"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/report"
)

// AlertPublisher forwards advisories to an outside listener.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, msg *amqp.AlertMessage) error
}

// Options tunes a TrackerService. Zero values fall back to defaults.
type Options struct {
	Thresholds limits.Thresholds
	Retention  ledger.Retention
	Publisher  AlertPublisher
	Logger     *log.Logger
	Clock      func() time.Time
	// Closer is closed along with the service, e.g. the SQLite store.
	Closer interface{ Close() error }
}

// TrackerService runs every user-facing operation against the ledger and
// returns the data to show plus any spending advisories.
type TrackerService struct {
	ledger    *ledger.Ledger
	reports   *report.Builder
	preview   *report.Preview
	evaluator limits.Evaluator
	retention ledger.Retention
	publisher AlertPublisher
	closer    interface{ Close() error }
	logger    *log.Logger
	now       func() time.Time

	pruneOnce sync.Once
}

func NewTrackerService(l *ledger.Ledger, opts Options) *TrackerService {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	thresholds := opts.Thresholds
	defaults := limits.DefaultThresholds()
	if thresholds.DailyWarning.IsZero() {
		thresholds.DailyWarning = defaults.DailyWarning
	}
	if thresholds.MonthlyWarning.IsZero() {
		thresholds.MonthlyWarning = defaults.MonthlyWarning
	}
	retention := opts.Retention
	if retention.IsZero() {
		retention = ledger.OneYear
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	builder := report.NewBuilder(l, logger)
	return &TrackerService{
		ledger:    l,
		reports:   builder,
		preview:   report.NewPreview(builder, core.CurrentPeriod(now())),
		evaluator: limits.NewEvaluator(thresholds),
		retention: retention,
		publisher: opts.Publisher,
		closer:    opts.Closer,
		logger:    logger.WithComponent(log.ComponentTracker),
		now:       now,
	}
}

// Now is the service clock.
func (s *TrackerService) Now() time.Time { return s.now() }

// Evaluator exposes the configured thresholds.
func (s *TrackerService) Evaluator() limits.Evaluator { return s.evaluator }

// publish sends warning and danger advisories to the alert publisher.
// Publishing never fails the operation that raised the advisory.
func (s *TrackerService) publish(ctx context.Context, source string, advisories []core.Advisory) {
	for _, a := range advisories {
		metrics.Advisories.WithLabelValues(a.Level).Inc()
		if a.Level == core.LevelInfo {
			continue
		}
		if s.publisher == nil {
			s.logger.DebugContext(ctx, "AMQP client not available, skipping alert", log.FieldLevel, a.Level)
			continue
		}
		if err := s.publisher.PublishAlert(ctx, amqp.NewAlertMessage(a.Level, a.Message, source)); err != nil {
			metrics.AlertsPublished.WithLabelValues("error").Inc()
			s.logger.ErrorContext(ctx, "Failed to publish alert", log.FieldError, err, log.FieldLevel, a.Level)
			continue
		}
		metrics.AlertsPublished.WithLabelValues("ok").Inc()
	}
}

// Close closes the alert publisher and the backing store, if any.
func (s *TrackerService) Close() error {
	var errs []error

	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close tracker service: %v", errs)
	}
	return nil
}
