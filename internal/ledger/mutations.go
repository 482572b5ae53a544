package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

// CreateTransaction assigns a new id, saves the transaction and reloads the
// transaction list.
func (s *Store) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	id := core.NewTransactionID(s.now())
	created, err := s.backend.CreateTransaction(ctx, id, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if err := s.refresh(ctx, refreshTransactions); err != nil {
		return core.Transaction{}, err
	}
	tx := s.resolveTransaction(id, created, in)
	s.audit.LogMutation(ctx, log.OpCreate, tx.ID, tx.CategoryID, tx.Amount.String())
	s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionCreated).WithTransaction(tx))
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.backend.UpdateTransaction(ctx, id, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := s.refresh(ctx, refreshTransactions); err != nil {
		return core.Transaction{}, err
	}
	tx := s.resolveTransaction(id, updated, in)
	s.audit.LogMutation(ctx, log.OpUpdate, tx.ID, tx.CategoryID, tx.Amount.String())
	s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionUpdated).WithTransaction(tx))
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return &core.ValidationError{Field: "id", Err: core.ErrEmptyField}
	}
	if err := s.backend.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := s.refresh(ctx, refreshTransactions); err != nil {
		return err
	}
	s.audit.LogMutation(ctx, log.OpDelete, id, "", "")
	s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionDeleted).WithTransactionID(id))
	return nil
}

// resolveTransaction prefers the reloaded copy, which carries the joined
// category fields, over whatever the write endpoint echoed back.
func (s *Store) resolveTransaction(id string, echoed core.Transaction, in core.TransactionInput) core.Transaction {
	if tx, ok := s.Transaction(id); ok {
		return tx
	}
	if echoed.ID != "" {
		return echoed
	}
	tx := core.Transaction{
		ID:         id,
		Date:       in.Date,
		Type:       in.Type,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Note:       in.Note,
	}
	if c, ok := s.Category(in.CategoryID); ok {
		tx.CategoryName, tx.CategoryColorHex = c.Name, c.ColorHex
	}
	return tx
}

func (s *Store) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.backend.CreateCategory(ctx, in)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	if err := s.refresh(ctx, refreshCategories); err != nil {
		return core.Category{}, err
	}
	if created.ID == "" {
		created = core.Category{Name: in.Name, ColorHex: in.ColorHex}
	}
	s.audit.LogMutation(ctx, log.OpCreate, "", created.ID, "")
	s.publish(ctx, amqp.NewLedgerEvent(amqp.CategoryCreated).WithCategory(created))
	return created, nil
}

// UpdateCategory also reloads transactions, whose joined name and color
// follow the category.
func (s *Store) UpdateCategory(ctx context.Context, id string, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	updated, err := s.backend.UpdateCategory(ctx, id, in)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := s.refresh(ctx, refreshCategories|refreshTransactions); err != nil {
		return core.Category{}, err
	}
	if c, ok := s.Category(id); ok {
		updated = c
	} else if updated.ID == "" {
		updated = core.Category{ID: id, Name: in.Name, ColorHex: in.ColorHex}
	}
	s.audit.LogMutation(ctx, log.OpUpdate, "", id, "")
	s.publish(ctx, amqp.NewLedgerEvent(amqp.CategoryUpdated).WithCategory(updated))
	return updated, nil
}

// DeleteCategory refuses the default category without contacting the
// backend.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if id == core.DefaultCategoryID {
		return core.ErrProtectedCategory
	}
	if id == "" {
		return &core.ValidationError{Field: "id", Err: core.ErrEmptyField}
	}
	if err := s.backend.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := s.refresh(ctx, refreshCategories|refreshTransactions); err != nil {
		return err
	}
	s.audit.LogMutation(ctx, log.OpDelete, "", id, "")
	s.publish(ctx, amqp.NewLedgerEvent(amqp.CategoryDeleted).WithCategory(core.Category{ID: id}))
	return nil
}

func (s *Store) SetBudget(ctx context.Context, amount decimal.Decimal) (core.Budget, error) {
	if err := core.ValidateBudgetAmount(amount); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.backend.SetBudget(ctx, amount); err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if err := s.refresh(ctx, refreshBudget); err != nil {
		return core.Budget{}, err
	}
	b := s.Budget()
	s.audit.LogMutation(ctx, log.OpUpdate, "", "", b.Amount.String())
	s.publish(ctx, amqp.NewLedgerEvent(amqp.BudgetUpdated).WithBudget(b))
	return b, nil
}
