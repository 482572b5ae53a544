// Package sheets turns ledger data into spreadsheet rows and defines the
// port spreadsheet backends implement.
package sheets

import (
	"context"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
)

// RowAppender appends rows below the last row of a sheet, creating the sheet
// with header as its first row when it does not exist yet.
type RowAppender interface {
	AppendRows(ctx context.Context, sheet string, header []any, rows [][]any) (rangeRef string, err error)
}

var (
	JournalHeader = []any{"occurred_at", "kind", "transaction_id", "date", "type", "category", "amount", "note"}
	ExportHeader  = []any{"date", "type", "category", "amount", "note", "id"}
)

// JournalRow flattens a ledger event. Fields that do not apply to the event
// kind are left blank.
func JournalRow(ev *amqp.LedgerEvent) []any {
	row := []any{ev.OccurredAt.UTC().Format(time.RFC3339), string(ev.Kind), ev.TransactionID, "", "", "", "", ""}
	switch {
	case ev.Transaction != nil:
		tx := ev.Transaction
		row[3], row[4], row[5], row[6], row[7] = tx.Date, string(tx.Type), categoryLabel(*tx), tx.Amount.String(), tx.Note
	case ev.Category != nil:
		row[5] = ev.Category.Name
		if row[5] == "" {
			row[5] = ev.Category.ID
		}
	case ev.Budget != nil:
		row[6] = ev.Budget.Amount.String()
	}
	return row
}

// ExportRows lists the given transactions in display order.
func ExportRows(txns []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txns))
	for _, tx := range core.SortTransactions(txns) {
		rows = append(rows, []any{tx.Date, string(tx.Type), categoryLabel(tx), tx.Amount.String(), tx.Note, tx.ID})
	}
	return rows
}

func categoryLabel(tx core.Transaction) string {
	if tx.CategoryName != "" {
		return tx.CategoryName
	}
	return tx.CategoryID
}
