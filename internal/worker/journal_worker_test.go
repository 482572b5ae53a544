package worker

import (
	"context"
	"errors"
	"testing"

	"moneytracker/internal/amqp"
	"moneytracker/internal/sheets/memory"
)

type flakyAppender struct {
	*memory.Store
	failNext bool
}

func (f *flakyAppender) AppendRows(ctx context.Context, sheet string, header []any, rows [][]any) (string, error) {
	if f.failNext {
		f.failNext = false
		return "", errors.New("quota exceeded")
	}
	return f.Store.AppendRows(ctx, sheet, header, rows)
}

func TestHandleEventWritesOncePerEvent(t *testing.T) {
	store := memory.New()
	w := NewJournalWorker(store, "Journal", nil, nil)
	ctx := context.Background()
	ev := amqp.NewLedgerEvent(amqp.TransactionDeleted).WithTransactionID("txn-1")

	for i := 0; i < 3; i++ {
		if err := w.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("HandleEvent #%d: %v", i, err)
		}
	}
	if err := w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.TransactionDeleted).WithTransactionID("txn-2")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows := store.Rows("Journal")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[1][2] != "txn-1" || rows[2][2] != "txn-2" {
		t.Errorf("rows = %v", rows)
	}
	st := w.Stats()
	if st.Processed != 2 || st.Duplicates != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestHandleEventFailureAllowsRedelivery(t *testing.T) {
	app := &flakyAppender{Store: memory.New(), failNext: true}
	w := NewJournalWorker(app, "Journal", nil, nil)
	ctx := context.Background()
	ev := amqp.NewLedgerEvent(amqp.CategoryCreated)

	if err := w.HandleEvent(ctx, ev); err == nil {
		t.Fatal("expected error from failing appender")
	}
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got := len(app.Rows("Journal")); got != 2 {
		t.Fatalf("rows = %d, want header + 1", got)
	}
	if st := w.Stats(); st.Failures != 1 || st.Processed != 1 {
		t.Errorf("stats = %+v", st)
	}
}
