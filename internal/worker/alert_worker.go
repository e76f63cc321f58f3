package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"moneytracker/internal/amqp"
	"moneytracker/internal/kv"
	"moneytracker/internal/log"
)

// KeyAlerts is the document holding the alert history.
const KeyAlerts = "alerts"

const defaultKeep = 50

// AlertWorker records alerts delivered from the queue into a bounded
// history document, newest last. Redelivered alerts are recorded once.
type AlertWorker struct {
	mu     sync.Mutex
	store  kv.Store
	keep   int
	logger *log.Logger
}

func NewAlertWorker(store kv.Store, keep int, logger *log.Logger) *AlertWorker {
	if keep <= 0 {
		keep = defaultKeep
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &AlertWorker{store: store, keep: keep, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleAlert processes a single alert from AMQP. Alerts without an id or
// text are logged and dropped rather than requeued forever.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.AlertMessage) error {
	if msg == nil || msg.ID == "" || strings.TrimSpace(msg.Message) == "" {
		w.logger.WarnContext(ctx, "Dropping empty alert")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	history, err := w.read(ctx)
	if err != nil {
		return err
	}
	for _, a := range history {
		if a.ID == msg.ID {
			w.logger.DebugContext(ctx, "Alert already recorded", log.FieldID, msg.ID)
			return nil
		}
	}

	history = append(history, *msg)
	if len(history) > w.keep {
		history = history[len(history)-w.keep:]
	}
	b, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	if err := w.store.Set(ctx, KeyAlerts, b); err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}

	w.logger.InfoContext(ctx, "Spending alert",
		log.FieldLevel, msg.Level,
		"source", msg.Source,
		"message", msg.Message,
		"timestamp", msg.Timestamp)
	return nil
}

// Recent returns the recorded alerts, oldest first.
func (w *AlertWorker) Recent(ctx context.Context) ([]amqp.AlertMessage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.read(ctx)
}

func (w *AlertWorker) read(ctx context.Context) ([]amqp.AlertMessage, error) {
	b, err := w.store.Get(ctx, KeyAlerts)
	if errors.Is(err, kv.ErrNotFound) {
		return []amqp.AlertMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	var history []amqp.AlertMessage
	if err := json.Unmarshal(b, &history); err != nil {
		w.logger.WarnContext(ctx, "Alert history unreadable, starting over", log.FieldError, err)
		return []amqp.AlertMessage{}, nil
	}
	return history, nil
}
