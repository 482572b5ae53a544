package view

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/api"
	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
)

func newRenderer(lang i18n.Lang) *Renderer {
	return New(&bytes.Buffer{}, lang, core.DefaultBudgetThresholds())
}

func TestProgressCells(t *testing.T) {
	tests := []struct {
		width  string
		filled int
	}{
		{"0", 0},
		{"50", 15},
		{"33.3333", 10},
		{"100", 30},
		{"-20", 0},
		{"140", 30},
	}
	for _, tt := range tests {
		filled, empty := ProgressCells(decimal.RequireFromString(tt.width), 30)
		if filled != tt.filled || filled+empty != 30 {
			t.Errorf("ProgressCells(%s) = %d,%d, want %d filled", tt.width, filled, empty, tt.filled)
		}
	}
}

func TestDashboard(t *testing.T) {
	s := core.MonthlySummary{
		Year:          2024,
		Month:         time.October,
		Income:        decimal.NewFromInt(5000),
		Expense:       decimal.NewFromInt(1200),
		Budget:        decimal.NewFromInt(1000),
		Remaining:     decimal.NewFromInt(-200),
		Percent:       -20,
		ProgressWidth: decimal.Zero,
	}
	out := newRenderer(i18n.EN).Dashboard(s)
	for _, want := range []string{"Budget Remaining", "$-200", "-20%", "Total Budget $1,000", "5,000", "1,200"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "█") {
		t.Errorf("overspent budget should render an empty bar:\n%s", out)
	}
}

func TestTransactions(t *testing.T) {
	v := newRenderer(i18n.ZH)

	empty := v.Transactions(time.October, nil)
	if !strings.Contains(empty, "10月 月收支") || !strings.Contains(empty, i18n.T(i18n.ZH, i18n.NoTransactions)) {
		t.Fatalf("unexpected empty list:\n%s", empty)
	}

	txns := []core.Transaction{
		{ID: "txn-2", Date: "2024-10-02", Type: core.Income, CategoryName: "薪水", CategoryColorHex: "#00FF00", Amount: decimal.NewFromInt(30000)},
		{ID: "txn-1", Date: "2024-10-01", Type: core.Expense, CategoryName: "餐飲", Amount: decimal.RequireFromString("120.5"), Note: "午餐"},
	}
	out := v.Transactions(time.October, txns)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected heading plus two rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "+30,000") || !strings.Contains(lines[1], "2024-10-02 · 薪水") {
		t.Errorf("income row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "-120.5") || !strings.Contains(lines[2], "午餐") || !strings.Contains(lines[2], "餐") {
		t.Errorf("expense row: %q", lines[2])
	}
}

func TestCategoriesMarksDefault(t *testing.T) {
	v := newRenderer(i18n.EN)
	out := v.Categories([]core.Category{
		{ID: "1", Name: "Uncategorized", ColorHex: "#9E9E9E"},
		{ID: "2", Name: "Food", ColorHex: "#FF5722"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "Cannot Delete") {
		t.Errorf("default category not marked: %q", lines[1])
	}
	if strings.Contains(lines[2], "Cannot Delete") {
		t.Errorf("regular category marked: %q", lines[2])
	}
}

func TestErrorMessage(t *testing.T) {
	v := newRenderer(i18n.EN)
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.RequestError{Status: 400, Message: "category not found"}, "category not found"},
		{"auth", &api.AuthError{Err: &api.RequestError{Status: 401, Message: "invalid token"}}, "invalid token"},
		{"wrapped", fmt.Errorf("load: %w", &api.RequestError{Status: 500, Message: "boom"}), "boom"},
		{"amount", &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}, "Please enter a valid amount"},
		{"date", &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}, "Please enter a valid date (YYYY-MM-DD)"},
		{"empty", &core.ValidationError{Field: "category_id", Err: core.ErrEmptyField}, "Please fill all required fields"},
		{"protected", fmt.Errorf("delete: %w", core.ErrProtectedCategory), "The default category cannot be deleted"},
		{"no server message", &api.RequestError{Status: 500, Message: "請求失敗", Fallback: true}, "Request failed"},
		{"plain", errors.New("dial tcp: refused"), "dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage = %q, want %q", got, tt.want)
			}
		})
	}

	if out := v.Error(errors.New("x")); !strings.Contains(out, "Error: x") {
		t.Errorf("error block: %q", out)
	}
}

func TestSetLang(t *testing.T) {
	v := newRenderer(i18n.EN)
	v.SetLang(i18n.ZH)
	if out := v.Success("ok"); !strings.Contains(out, "成功: ok") {
		t.Errorf("success block: %q", out)
	}
}
