package core

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MonthlySummary is the dashboard aggregate for one calendar month.
type MonthlySummary struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Budget  decimal.Decimal
	// Remaining is Budget minus Expense and may be negative.
	Remaining decimal.Decimal
	// Percent is Remaining as a rounded percentage of Budget. It is not
	// clamped, so overspending shows up as a negative value.
	Percent int64
	// ProgressWidth is the same ratio clamped to [0, 100] for bar rendering.
	ProgressWidth decimal.Decimal
}

// Summarize aggregates the transactions dated in the given month against
// the budget. Transactions with unparseable dates are ignored.
func Summarize(txns []Transaction, year int, month time.Month, budget Budget) MonthlySummary {
	s := MonthlySummary{
		Year:          year,
		Month:         month,
		Income:        decimal.Zero,
		Expense:       decimal.Zero,
		Budget:        budget.Amount,
		ProgressWidth: decimal.Zero,
	}

	for _, t := range txns {
		d, err := ParseDate(t.Date)
		if err != nil || d.Year() != year || d.Month() != month {
			continue
		}
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}

	s.Remaining = budget.Amount.Sub(s.Expense)
	if budget.Amount.IsPositive() {
		ratio := s.Remaining.Div(budget.Amount).Mul(hundred)
		// Half-up toward +Inf, matching the rounding users see elsewhere.
		s.Percent = ratio.Add(decimal.NewFromFloat(0.5)).Floor().IntPart()
		s.ProgressWidth = decimal.Max(decimal.Zero, decimal.Min(hundred, ratio))
	}
	return s
}

// BudgetStatus classifies how much of the budget is left.
type BudgetStatus string

const (
	BudgetHealthy BudgetStatus = "healthy"
	BudgetWarning BudgetStatus = "warning"
	BudgetDanger  BudgetStatus = "danger"
)

// BudgetThresholds holds the percent-remaining cut-offs for the warning
// and danger states.
type BudgetThresholds struct {
	Danger  int64
	Warning int64
}

func DefaultBudgetThresholds() BudgetThresholds {
	return BudgetThresholds{Danger: 20, Warning: 50}
}

// Status maps a remaining percentage to a BudgetStatus.
func (b BudgetThresholds) Status(percent int64) BudgetStatus {
	switch {
	case percent < b.Danger:
		return BudgetDanger
	case percent < b.Warning:
		return BudgetWarning
	default:
		return BudgetHealthy
	}
}

// CategoryTotal is the expense sum of one category within a month.
type CategoryTotal struct {
	CategoryID string
	Name       string
	ColorHex   string
	Amount     decimal.Decimal
}

// ExpensesByCategory groups the month's expenses by category, in order of
// first appearance.
func ExpensesByCategory(txns []Transaction, year int, month time.Month) []CategoryTotal {
	index := map[string]int{}
	var out []CategoryTotal
	for _, t := range txns {
		if t.Type != Expense {
			continue
		}
		d, err := ParseDate(t.Date)
		if err != nil || d.Year() != year || d.Month() != month {
			continue
		}
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, CategoryTotal{
				CategoryID: t.CategoryID,
				Name:       t.CategoryName,
				ColorHex:   t.CategoryColorHex,
				Amount:     decimal.Zero,
			})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// InMonth returns the transactions dated within the given month.
func InMonth(txns []Transaction, year int, month time.Month) []Transaction {
	var out []Transaction
	for _, t := range txns {
		d, err := ParseDate(t.Date)
		if err != nil || d.Year() != year || d.Month() != month {
			continue
		}
		out = append(out, t)
	}
	return out
}
