package mockapi

import (
	"errors"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate id")
)

type txRecord struct {
	ID         string
	Date       string
	Type       core.TxType
	CategoryID string
	Amount     decimal.Decimal
	Note       string
}

// store is the single-user in-memory ledger behind the development API.
type store struct {
	mu         sync.RWMutex
	categories []core.Category
	txns       []txRecord
	budget     *core.Budget
	nextCatID  int
}

func newStore() *store {
	return &store{
		categories: []core.Category{{ID: core.DefaultCategoryID, Name: "未分類", ColorHex: core.DefaultCategoryColor}},
		nextCatID:  2,
	}
}

func (s *store) listCategories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category{}, s.categories...)
}

func (s *store) categoryLocked(id string) (core.Category, int, bool) {
	for i, c := range s.categories {
		if c.ID == id {
			return c, i, true
		}
	}
	return core.Category{}, -1, false
}

func (s *store) createCategory(in core.CategoryInput) core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := core.Category{ID: strconv.Itoa(s.nextCatID), Name: in.Name, ColorHex: in.ColorHex}
	s.nextCatID++
	s.categories = append(s.categories, c)
	return c
}

func (s *store) updateCategory(id string, in core.CategoryInput) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i, ok := s.categoryLocked(id)
	if !ok {
		return core.Category{}, errNotFound
	}
	s.categories[i].Name, s.categories[i].ColorHex = in.Name, in.ColorHex
	return s.categories[i], nil
}

// deleteCategory moves the category's transactions to the default category.
func (s *store) deleteCategory(id string) error {
	if id == core.DefaultCategoryID {
		return core.ErrProtectedCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i, ok := s.categoryLocked(id)
	if !ok {
		return errNotFound
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	for j := range s.txns {
		if s.txns[j].CategoryID == id {
			s.txns[j].CategoryID = core.DefaultCategoryID
		}
	}
	return nil
}

func (s *store) hasCategory(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, _, ok := s.categoryLocked(id)
	return ok
}

func (s *store) joinLocked(r txRecord) core.Transaction {
	tx := core.Transaction{
		ID:         r.ID,
		Date:       r.Date,
		Type:       r.Type,
		CategoryID: r.CategoryID,
		Amount:     r.Amount,
		Note:       r.Note,
	}
	if c, _, ok := s.categoryLocked(r.CategoryID); ok {
		tx.CategoryName, tx.CategoryColorHex = c.Name, c.ColorHex
	}
	return tx
}

func (s *store) listTransactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.txns))
	for _, r := range s.txns {
		out = append(out, s.joinLocked(r))
	}
	return out
}

func (s *store) createTransaction(r txRecord) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.txns {
		if existing.ID == r.ID {
			return core.Transaction{}, errDuplicate
		}
	}
	s.txns = append(s.txns, r)
	return s.joinLocked(r), nil
}

func (s *store) updateTransaction(r txRecord) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txns {
		if s.txns[i].ID == r.ID {
			s.txns[i] = r
			return s.joinLocked(r), nil
		}
	}
	return core.Transaction{}, errNotFound
}

func (s *store) deleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txns {
		if s.txns[i].ID == id {
			s.txns = append(s.txns[:i], s.txns[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (s *store) getBudget() *core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.budget == nil {
		return nil
	}
	b := *s.budget
	return &b
}

func (s *store) setBudget(amount decimal.Decimal) core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = &core.Budget{ID: "1", Amount: amount}
	return *s.budget
}
