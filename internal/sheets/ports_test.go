package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
)

func TestJournalRow(t *testing.T) {
	at := time.Date(2024, 10, 5, 9, 0, 0, 0, time.UTC)
	tx := core.Transaction{ID: "txn-7", Date: "2024-10-05", Type: core.Expense, CategoryID: "2", CategoryName: "Food", Amount: decimal.RequireFromString("12.5"), Note: "tea"}

	tests := []struct {
		name string
		ev   *amqp.LedgerEvent
		want []any
	}{
		{
			"transaction",
			&amqp.LedgerEvent{Kind: amqp.TransactionCreated, OccurredAt: at, TransactionID: tx.ID, Transaction: &tx},
			[]any{"2024-10-05T09:00:00Z", "transaction.created", "txn-7", "2024-10-05", "expense", "Food", "12.5", "tea"},
		},
		{
			"deleted transaction",
			&amqp.LedgerEvent{Kind: amqp.TransactionDeleted, OccurredAt: at, TransactionID: "txn-7"},
			[]any{"2024-10-05T09:00:00Z", "transaction.deleted", "txn-7", "", "", "", "", ""},
		},
		{
			"deleted category falls back to id",
			&amqp.LedgerEvent{Kind: amqp.CategoryDeleted, OccurredAt: at, Category: &core.Category{ID: "4"}},
			[]any{"2024-10-05T09:00:00Z", "category.deleted", "", "", "", "4", "", ""},
		},
		{
			"budget",
			&amqp.LedgerEvent{Kind: amqp.BudgetUpdated, OccurredAt: at, Budget: &core.Budget{ID: "1", Amount: decimal.NewFromInt(3000)}},
			[]any{"2024-10-05T09:00:00Z", "budget.updated", "", "", "", "", "3000", ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JournalRow(tt.ev)
			if len(got) != len(JournalHeader) {
				t.Fatalf("row has %d cells, header %d", len(got), len(JournalHeader))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("cell %d (%v) = %v, want %v", i, JournalHeader[i], got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExportRowsOrder(t *testing.T) {
	txns := []core.Transaction{
		{ID: "txn-2", Date: "2024-10-01", Type: core.Income, CategoryID: "1", Amount: decimal.NewFromInt(1)},
		{ID: "txn-10", Date: "2024-10-02", Type: core.Expense, CategoryID: "3", CategoryName: "Rent", Amount: decimal.NewFromInt(900)},
	}
	rows := ExportRows(txns)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][5] != "txn-10" || rows[0][2] != "Rent" {
		t.Errorf("first row = %v", rows[0])
	}
	if rows[1][2] != "1" {
		t.Errorf("missing category name should fall back to id, got %v", rows[1][2])
	}
}
