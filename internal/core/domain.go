package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// DefaultCategoryID is the backend's built-in category. It cannot be deleted.
const DefaultCategoryID = "1"

// DefaultCategoryColor is shown for transactions whose category has no color.
const DefaultCategoryColor = "#9E9E9E"

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

type (
	TxType string

	Transaction struct {
		ID               string          `json:"id"`
		Date             string          `json:"date"`
		Type             TxType          `json:"type"`
		CategoryID       string          `json:"category_id"`
		CategoryName     string          `json:"category_name"`
		CategoryColorHex string          `json:"category_color_hex"`
		Amount           decimal.Decimal `json:"amount"`
		Note             string          `json:"note,omitempty"`
	}

	Category struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		ColorHex string `json:"color_hex"`
	}

	Budget struct {
		ID     string          `json:"id"`
		Amount decimal.Decimal `json:"amount"`
	}

	// TransactionInput is what a user fills in when adding or editing a
	// transaction. The id is assigned separately on create.
	TransactionInput struct {
		Date       string
		Type       TxType
		CategoryID string
		Amount     decimal.Decimal
		Note       string
	}

	CategoryInput struct {
		Name     string
		ColorHex string
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidColor      = errors.New("invalid color")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyField        = errors.New("required field missing")
	ErrProtectedCategory = errors.New("default category cannot be deleted")
)

// ValidationError reports a client-side form problem on a single field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// DefaultBudget is used when the backend has no budget on record.
func DefaultBudget() Budget {
	return Budget{ID: "1", Amount: decimal.Zero}
}

// NewTransactionID derives a transaction id from the creation time so that
// ids sort by recency.
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("txn-%d", now.UnixMilli())
}

// ParseDate accepts YYYY-MM-DD and full RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Valid reports whether t is one of the known transaction types.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// Sign returns the display prefix used in front of amounts.
func (t TxType) Sign() string {
	if t == Income {
		return "+"
	}
	return "-"
}

// Protected reports whether the category may not be deleted.
func (c Category) Protected() bool {
	return c.ID == DefaultCategoryID
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Date) == "" {
		return invalid("date", ErrEmptyField)
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(in.Date)); err != nil {
		return invalid("date", ErrInvalidDate)
	}
	if !in.Type.Valid() {
		return invalid("type", ErrInvalidType)
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return invalid("category_id", ErrEmptyField)
	}
	if !in.Amount.IsPositive() {
		return invalid("amount", ErrInvalidAmount)
	}
	return nil
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if !ValidColorHex(in.ColorHex) {
		return invalid("color_hex", ErrInvalidColor)
	}
	return nil
}

// ValidateBudgetAmount rejects negative budgets. Zero is allowed.
func ValidateBudgetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return invalid("amount", ErrInvalidAmount)
	}
	return nil
}

// ValidColorHex reports whether s looks like #rgb or #rrggbb.
func ValidColorHex(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
