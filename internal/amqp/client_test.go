package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	if client.isCircuitOpen() {
		t.Fatal("circuit should start closed")
	}

	for i := 0; i < maxFailures-1; i++ {
		client.recordFailure()
	}
	if client.isCircuitOpen() {
		t.Fatal("circuit opened before reaching the failure threshold")
	}
	client.recordFailure()
	if !client.isCircuitOpen() {
		t.Fatal("circuit should open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should half-open after the timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", client.state)
	}

	client.recordFailure()
	if !client.isCircuitOpen() {
		t.Fatal("a failure while half-open should reopen the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestClient_PublishShortCircuits(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}
	ev := NewLedgerEvent(TransactionDeleted).WithTransactionID("txn-1")

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	err := client.Publish(context.Background(), ev)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Publish with open circuit = %v, want ErrCircuitOpen", err)
	}

	client.recordSuccess()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Publish(ctx, ev); err != context.Canceled {
		t.Fatalf("Publish with cancelled context = %v, want context.Canceled", err)
	}
}

func TestNewLedgerEvent(t *testing.T) {
	tx := core.Transaction{ID: "txn-42", Date: "2024-10-01", Type: core.Expense, CategoryID: "2", Amount: decimal.NewFromInt(10)}
	ev := NewLedgerEvent(TransactionCreated).WithTransaction(tx)

	if ev.EventID == "" {
		t.Error("event id should be generated")
	}
	if ev.TransactionID != "txn-42" || ev.Transaction == nil {
		t.Errorf("transaction not attached: %+v", ev)
	}
	if time.Since(ev.OccurredAt) > time.Minute {
		t.Errorf("OccurredAt %v is not recent", ev.OccurredAt)
	}
	if other := NewLedgerEvent(TransactionCreated); other.EventID == ev.EventID {
		t.Error("event ids should be unique")
	}
}

func TestLedgerEventFromJSONRejectsBadEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{`, "unexpected end"},
		{"missing id", `{"kind":"budget.updated"}`, "missing event_id"},
		{"unknown kind", `{"event_id":"e1","kind":"budget.exploded"}`, "unknown event kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LedgerEventFromJSON([]byte(tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLedgerEventFromJSONAcceptsPublishedBody(t *testing.T) {
	ev := NewLedgerEvent(BudgetUpdated).WithBudget(core.Budget{ID: "1", Amount: decimal.NewFromInt(5000)})
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON: %v", err)
	}
	if got.Budget == nil || !got.Budget.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("budget = %+v", got.Budget)
	}
}
