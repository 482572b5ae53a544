package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func tx(id, date string, typ TxType, amount int64) Transaction {
	return Transaction{ID: id, Date: date, Type: typ, CategoryID: "2", Amount: decimal.NewFromInt(amount)}
}

func TestSummarize(t *testing.T) {
	txns := []Transaction{
		tx("txn-1", "2025-03-02", Income, 3000),
		tx("txn-2", "2025-03-05", Expense, 500),
		tx("txn-3", "2025-03-31", Expense, 300),
		tx("txn-4", "2025-02-28", Expense, 999), // previous month
		tx("txn-5", "2024-03-10", Expense, 999), // same month, other year
		tx("txn-6", "not-a-date", Expense, 999),
	}
	budget := Budget{ID: "1", Amount: decimal.NewFromInt(1000)}

	s := Summarize(txns, 2025, time.March, budget)

	if !s.Income.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Income = %s, want 3000", s.Income)
	}
	if !s.Expense.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Expense = %s, want 800", s.Expense)
	}
	if !s.Remaining.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Remaining = %s, want 200", s.Remaining)
	}
	if s.Percent != 20 {
		t.Errorf("Percent = %d, want 20", s.Percent)
	}
	if !s.ProgressWidth.Equal(decimal.NewFromInt(20)) {
		t.Errorf("ProgressWidth = %s, want 20", s.ProgressWidth)
	}
}

func TestSummarizeMatchesManualFilter(t *testing.T) {
	txns := []Transaction{
		tx("a-1", "2025-07-01", Income, 10),
		tx("a-2", "2025-07-15", Income, 15),
		tx("a-3", "2025-07-20", Expense, 7),
		tx("a-4", "2025-08-01", Expense, 100),
		tx("a-5", "2025-06-30", Income, 100),
	}
	var wantIncome, wantExpense decimal.Decimal
	for _, tr := range txns {
		d, _ := ParseDate(tr.Date)
		if d.Year() != 2025 || d.Month() != time.July {
			continue
		}
		if tr.Type == Income {
			wantIncome = wantIncome.Add(tr.Amount)
		} else {
			wantExpense = wantExpense.Add(tr.Amount)
		}
	}

	s := Summarize(txns, 2025, time.July, DefaultBudget())
	if !s.Income.Equal(wantIncome) || !s.Expense.Equal(wantExpense) {
		t.Fatalf("got income=%s expense=%s, want %s %s", s.Income, s.Expense, wantIncome, wantExpense)
	}
}

func TestSummarizeZeroBudget(t *testing.T) {
	txns := []Transaction{tx("t-1", "2025-05-05", Expense, 450)}
	s := Summarize(txns, 2025, time.May, DefaultBudget())

	if s.Percent != 0 {
		t.Errorf("Percent = %d, want 0", s.Percent)
	}
	if !s.Remaining.Equal(decimal.NewFromInt(-450)) {
		t.Errorf("Remaining = %s, want -450", s.Remaining)
	}
	if !s.ProgressWidth.IsZero() {
		t.Errorf("ProgressWidth = %s, want 0", s.ProgressWidth)
	}
}

func TestSummarizeEmptyMonth(t *testing.T) {
	s := Summarize(nil, 2025, time.January, Budget{Amount: decimal.NewFromInt(100)})
	if !s.Income.IsZero() || !s.Expense.IsZero() {
		t.Fatalf("expected zero sums, got %s %s", s.Income, s.Expense)
	}
	if s.Percent != 100 {
		t.Fatalf("Percent = %d, want 100", s.Percent)
	}
}

func TestSummarizeOverspendIsNotClamped(t *testing.T) {
	txns := []Transaction{tx("t-1", "2025-05-05", Expense, 1500)}
	s := Summarize(txns, 2025, time.May, Budget{Amount: decimal.NewFromInt(1000)})

	if s.Percent != -50 {
		t.Errorf("Percent = %d, want -50", s.Percent)
	}
	if !s.ProgressWidth.IsZero() {
		t.Errorf("ProgressWidth = %s, want 0", s.ProgressWidth)
	}
}

func TestSummarizeRoundsHalfUp(t *testing.T) {
	// remaining/budget = 1/8 => 12.5%
	txns := []Transaction{tx("t-1", "2025-05-05", Expense, 7)}
	s := Summarize(txns, 2025, time.May, Budget{Amount: decimal.NewFromInt(8)})
	if s.Percent != 13 {
		t.Fatalf("Percent = %d, want 13", s.Percent)
	}

	// -1/8 => -12.5% rounds toward +Inf
	txns = []Transaction{tx("t-1", "2025-05-05", Expense, 9)}
	s = Summarize(txns, 2025, time.May, Budget{Amount: decimal.NewFromInt(8)})
	if s.Percent != -12 {
		t.Fatalf("Percent = %d, want -12", s.Percent)
	}
}

func TestBudgetThresholdsStatus(t *testing.T) {
	th := DefaultBudgetThresholds()
	cases := []struct {
		percent int64
		want    BudgetStatus
	}{
		{-10, BudgetDanger},
		{19, BudgetDanger},
		{20, BudgetWarning},
		{49, BudgetWarning},
		{50, BudgetHealthy},
		{120, BudgetHealthy},
	}
	for _, tc := range cases {
		if got := th.Status(tc.percent); got != tc.want {
			t.Errorf("Status(%d) = %s, want %s", tc.percent, got, tc.want)
		}
	}

	custom := BudgetThresholds{Danger: 5, Warning: 10}
	if got := custom.Status(7); got != BudgetWarning {
		t.Errorf("custom Status(7) = %s, want warning", got)
	}
}

func TestExpensesByCategory(t *testing.T) {
	txns := []Transaction{
		{ID: "1", Date: "2025-04-01", Type: Expense, CategoryID: "2", CategoryName: "Food", Amount: decimal.NewFromInt(10)},
		{ID: "2", Date: "2025-04-02", Type: Expense, CategoryID: "3", CategoryName: "Bus", Amount: decimal.NewFromInt(4)},
		{ID: "3", Date: "2025-04-03", Type: Expense, CategoryID: "2", CategoryName: "Food", Amount: decimal.NewFromInt(5)},
		{ID: "4", Date: "2025-04-03", Type: Income, CategoryID: "2", CategoryName: "Food", Amount: decimal.NewFromInt(50)},
		{ID: "5", Date: "2025-05-03", Type: Expense, CategoryID: "2", CategoryName: "Food", Amount: decimal.NewFromInt(50)},
	}
	got := ExpensesByCategory(txns, 2025, time.April)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].Name != "Food" || !got[0].Amount.Equal(decimal.NewFromInt(15)) {
		t.Errorf("unexpected first total: %+v", got[0])
	}
	if got[1].Name != "Bus" || !got[1].Amount.Equal(decimal.NewFromInt(4)) {
		t.Errorf("unexpected second total: %+v", got[1])
	}
}
