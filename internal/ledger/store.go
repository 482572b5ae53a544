// Package ledger holds the session's cached copy of the user's categories,
// transactions and budget, and performs every mutation against the backend.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

// SnapshotName is the key the last good load is saved under.
const SnapshotName = "ledger"

// Backend is the subset of the API client the store drives.
type Backend interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetBudget(ctx context.Context) (core.Budget, bool, error)

	CreateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
	UpdateCategory(ctx context.Context, id string, in core.CategoryInput) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	SetBudget(ctx context.Context, amount decimal.Decimal) (core.Budget, error)
}

// Notifier receives an event after each successful mutation.
type Notifier interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, name string, payload []byte) error
	LoadSnapshot(ctx context.Context, name string) ([]byte, time.Time, error)
}

// Snapshot is the persisted form of a successful load.
type Snapshot struct {
	Categories   []core.Category    `json:"categories"`
	Transactions []core.Transaction `json:"transactions"`
	Budget       core.Budget        `json:"budget"`
}

type Store struct {
	backend   Backend
	snapshots SnapshotStore
	notifier  Notifier
	logger    *log.Logger
	audit     *log.StructuredLogger
	now       func() time.Time

	mu           sync.RWMutex
	categories   []core.Category
	transactions []core.Transaction
	budget       core.Budget
}

type Option func(*Store)

func WithSnapshots(s SnapshotStore) Option { return func(st *Store) { st.snapshots = s } }

func WithNotifier(n Notifier) Option { return func(st *Store) { st.notifier = n } }

func WithLogger(l *log.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

func WithClock(now func() time.Time) Option { return func(st *Store) { st.now = now } }

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  log.Discard(),
		now:     time.Now,
		budget:  core.DefaultBudget(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.audit = log.NewStructuredLogger(s.logger)
	return s
}

type refreshSet uint8

const (
	refreshCategories refreshSet = 1 << iota
	refreshTransactions
	refreshBudget

	refreshAll = refreshCategories | refreshTransactions | refreshBudget
)

// Load fetches categories, transactions and budget concurrently. Either all
// three caches are replaced or, on any failure, none is.
func (s *Store) Load(ctx context.Context) error {
	if err := s.refresh(ctx, refreshAll); err != nil {
		return err
	}
	s.saveSnapshot(ctx)
	return nil
}

func (s *Store) refresh(ctx context.Context, what refreshSet) error {
	var (
		cats   []core.Category
		txns   []core.Transaction
		budget core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	if what&refreshCategories != 0 {
		g.Go(func() error {
			var err error
			cats, err = s.backend.ListCategories(gctx)
			if err != nil {
				return fmt.Errorf("load categories: %w", err)
			}
			return nil
		})
	}
	if what&refreshTransactions != 0 {
		g.Go(func() error {
			var err error
			txns, err = s.backend.ListTransactions(gctx)
			if err != nil {
				return fmt.Errorf("load transactions: %w", err)
			}
			return nil
		})
	}
	if what&refreshBudget != 0 {
		g.Go(func() error {
			b, ok, err := s.backend.GetBudget(gctx)
			if err != nil {
				return fmt.Errorf("load budget: %w", err)
			}
			if !ok {
				b = core.DefaultBudget()
			}
			budget = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "Ledger load failed", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if what&refreshCategories != 0 {
		s.categories = cats
	}
	if what&refreshTransactions != 0 {
		s.transactions = core.SortTransactions(txns)
	}
	if what&refreshBudget != 0 {
		s.budget = budget
	}
	return nil
}

func (s *Store) saveSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	s.mu.RLock()
	payload, err := json.Marshal(Snapshot{
		Categories:   s.categories,
		Transactions: s.transactions,
		Budget:       s.budget,
	})
	s.mu.RUnlock()
	if err == nil {
		err = s.snapshots.SaveSnapshot(ctx, SnapshotName, payload)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to save ledger snapshot", log.FieldError, err)
	}
}

// ErrNoSnapshot is returned by Restore when nothing was ever saved.
var ErrNoSnapshot = errors.New("no saved ledger")

// Restore fills the caches from the last saved snapshot and reports when it
// was taken.
func (s *Store) Restore(ctx context.Context) (time.Time, error) {
	if s.snapshots == nil {
		return time.Time{}, ErrNoSnapshot
	}
	payload, savedAt, err := s.snapshots.LoadSnapshot(ctx, SnapshotName)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrNoSnapshot, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return time.Time{}, fmt.Errorf("decode snapshot: %w", err)
	}
	s.mu.Lock()
	s.categories = snap.Categories
	s.transactions = core.SortTransactions(snap.Transactions)
	s.budget = snap.Budget
	s.mu.Unlock()
	return savedAt, nil
}

func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...)
}

// Transactions returns the cached list in display order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...)
}

func (s *Store) Budget() core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget
}

func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

func (s *Store) Category(id string) (core.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// Summary aggregates the cached transactions for the given month.
func (s *Store) Summary(year int, month time.Month) core.MonthlySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summarize(s.transactions, year, month, s.budget)
}

func (s *Store) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, ev.EventID,
			log.FieldEventKind, ev.Kind,
			log.FieldError, err)
	}
}
