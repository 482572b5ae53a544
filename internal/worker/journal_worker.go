// Package worker consumes ledger events and journals them to a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/cache"
	"moneytracker/internal/log"
	"moneytracker/internal/sheets"
)

const (
	DefaultDedupSize = 10000
	DefaultDedupTTL  = 24 * time.Hour
)

// JournalWorker appends one journal row per ledger event. Redelivered
// events are recognised by id and written at most once while their id is
// still cached.
type JournalWorker struct {
	appender sheets.RowAppender
	sheet    string
	seen     *cache.LRUCache[struct{}]
	logger   *log.Logger

	processed  int64
	duplicates int64
	failures   int64
}

type Stats struct {
	Processed  int64
	Duplicates int64
	Failures   int64
}

func NewJournalWorker(appender sheets.RowAppender, sheet string, seen *cache.LRUCache[struct{}], logger *log.Logger) *JournalWorker {
	if seen == nil {
		seen = cache.NewLRUCache[struct{}](DefaultDedupSize, DefaultDedupTTL)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &JournalWorker{
		appender: appender,
		sheet:    sheet,
		seen:     seen,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the consumer callback. A returned error requeues the
// delivery.
func (w *JournalWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if !w.seen.Add(ev.EventID, struct{}{}) {
		atomic.AddInt64(&w.duplicates, 1)
		w.logger.InfoContext(ctx, "Skipping duplicate event",
			log.FieldEventID, ev.EventID, log.FieldEventKind, ev.Kind)
		return nil
	}

	ref, err := w.appender.AppendRows(ctx, w.sheet, sheets.JournalHeader, [][]any{sheets.JournalRow(ev)})
	if err != nil {
		// Forget the id so the requeued delivery is written.
		w.seen.Delete(ev.EventID)
		atomic.AddInt64(&w.failures, 1)
		return fmt.Errorf("journal event %s: %w", ev.EventID, err)
	}

	atomic.AddInt64(&w.processed, 1)
	w.logger.InfoContext(ctx, "Event journaled",
		log.FieldEventID, ev.EventID,
		log.FieldEventKind, ev.Kind,
		log.FieldTransactionID, ev.TransactionID,
		log.FieldSheetsRef, ref)
	return nil
}

func (w *JournalWorker) Stats() Stats {
	return Stats{
		Processed:  atomic.LoadInt64(&w.processed),
		Duplicates: atomic.LoadInt64(&w.duplicates),
		Failures:   atomic.LoadInt64(&w.failures),
	}
}
