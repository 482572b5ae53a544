package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moneytracker/internal/core"
)

type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
	CategoryCreated    EventKind = "category.created"
	CategoryUpdated    EventKind = "category.updated"
	CategoryDeleted    EventKind = "category.deleted"
	BudgetUpdated      EventKind = "budget.updated"
)

func (k EventKind) Valid() bool {
	switch k {
	case TransactionCreated, TransactionUpdated, TransactionDeleted,
		CategoryCreated, CategoryUpdated, CategoryDeleted, BudgetUpdated:
		return true
	}
	return false
}

// LedgerEvent is published after every successful mutation. Deletions carry
// only the id of what was removed.
type LedgerEvent struct {
	EventID       string            `json:"event_id"`
	Kind          EventKind         `json:"kind"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Category      *core.Category    `json:"category,omitempty"`
	Budget        *core.Budget      `json:"budget,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

var errMissingEventID = errors.New("missing event_id")

func NewLedgerEvent(kind EventKind) *LedgerEvent {
	return &LedgerEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *LedgerEvent) WithTransaction(tx core.Transaction) *LedgerEvent {
	e.TransactionID = tx.ID
	e.Transaction = &tx
	return e
}

func (e *LedgerEvent) WithTransactionID(id string) *LedgerEvent {
	e.TransactionID = id
	return e
}

func (e *LedgerEvent) WithCategory(c core.Category) *LedgerEvent {
	e.Category = &c
	return e
}

func (e *LedgerEvent) WithBudget(b core.Budget) *LedgerEvent {
	e.Budget = &b
	return e
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks a delivery body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.EventID == "" {
		return nil, errMissingEventID
	}
	if !ev.Kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return &ev, nil
}
