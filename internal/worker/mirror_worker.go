// Package worker mirrors ledger change events into the journal sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartexpense/internal/amqp"
	"smartexpense/internal/cache"
	"smartexpense/internal/core"
	"smartexpense/internal/sheets"
)

// MirrorWorker appends one journal row per ledger change. Redelivered events
// seen within the dedupe window are skipped.
type MirrorWorker struct {
	journal sheets.JournalWriter
	seen    *cache.LRUCache[struct{}]
}

func NewMirrorWorker(journal sheets.JournalWriter, dedupeSize int, dedupeTTL time.Duration) *MirrorWorker {
	return &MirrorWorker{
		journal: journal,
		seen:    cache.NewLRUCache[struct{}](dedupeSize, dedupeTTL),
	}
}

// HandleMessage processes one event consumed from AMQP.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	return w.mirror(ctx, msg.Event)
}

// ExpenseChanged lets the worker observe the ledger directly when no broker
// is configured.
func (w *MirrorWorker) ExpenseChanged(ctx context.Context, ev core.ExpenseEvent) error {
	return w.mirror(ctx, ev)
}

func (w *MirrorWorker) mirror(ctx context.Context, ev core.ExpenseEvent) error {
	key := eventKey(ev)
	if _, dup := w.seen.Get(ctx, key); dup {
		slog.InfoContext(ctx, "Skipping already mirrored event",
			"event", string(ev.Type),
			"expense_id", ev.ExpenseID)
		return nil
	}

	ref, err := w.journal.AppendEntry(ctx, sheets.EntryFromEvent(ev))
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	w.seen.Set(ctx, key, struct{}{})

	slog.InfoContext(ctx, "Mirrored expense event",
		"event", string(ev.Type),
		"expense_id", ev.ExpenseID,
		"owner", ev.Owner,
		"sheets_ref", ref)
	return nil
}

// CleanExpired lets a cache.Manager prune the dedupe window.
func (w *MirrorWorker) CleanExpired() int {
	return w.seen.CleanExpired()
}

func eventKey(ev core.ExpenseEvent) string {
	return string(ev.Type) + "|" + ev.ExpenseID + "|" + ev.At.UTC().Format(time.RFC3339Nano)
}
