package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"moneytracker/internal/amqp"
	"moneytracker/internal/kv/memory"
)

type brokenStore struct{ *memory.Store }

func (brokenStore) Set(context.Context, string, []byte) error { return errors.New("read-only") }

func TestHandleAlertRecordsOnce(t *testing.T) {
	ctx := context.Background()
	w := NewAlertWorker(memory.New(), 0, nil)

	msg := amqp.NewAlertMessage("warning", "Approaching daily spending limit!", "daily")
	for i := 0; i < 2; i++ {
		if err := w.HandleAlert(ctx, msg); err != nil {
			t.Fatalf("HandleAlert: %v", err)
		}
	}
	got, err := w.Recent(ctx)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].ID != msg.ID {
		t.Fatalf("redelivered alert recorded twice: %+v", got)
	}
}

func TestHandleAlertKeepsNewest(t *testing.T) {
	ctx := context.Background()
	w := NewAlertWorker(memory.New(), 3, nil)

	for i := 0; i < 5; i++ {
		if err := w.HandleAlert(ctx, amqp.NewAlertMessage("danger", fmt.Sprintf("alert %d", i), "monthly")); err != nil {
			t.Fatalf("HandleAlert: %v", err)
		}
	}
	got, _ := w.Recent(ctx)
	if len(got) != 3 || got[0].Message != "alert 2" || got[2].Message != "alert 4" {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestHandleAlertDropsEmpty(t *testing.T) {
	w := NewAlertWorker(memory.New(), 0, nil)
	if err := w.HandleAlert(context.Background(), &amqp.AlertMessage{ID: "x"}); err != nil {
		t.Fatalf("empty alert should be dropped without error: %v", err)
	}
	if got, _ := w.Recent(context.Background()); len(got) != 0 {
		t.Fatalf("empty alert recorded: %+v", got)
	}
}

func TestHandleAlertStorageError(t *testing.T) {
	w := NewAlertWorker(brokenStore{memory.New()}, 0, nil)
	err := w.HandleAlert(context.Background(), amqp.NewAlertMessage("warning", "x", "daily"))
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}
