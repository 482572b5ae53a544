// Package view renders the dashboard, lists and message blocks as styled
// terminal text.
package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"moneytracker/internal/api"
	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
)

// BarCells is the width of the budget progress bar in terminal cells.
const BarCells = 30

var (
	colorIncome  = lipgloss.Color("#5abf98")
	colorExpense = lipgloss.Color("#ff7675")
	colorWarning = lipgloss.Color("#fdcb6e")
	colorMuted   = lipgloss.Color("#9ca095")
)

type styles struct {
	title   lipgloss.Style
	card    lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	income  lipgloss.Style
	expense lipgloss.Style
	bar     map[core.BudgetStatus]lipgloss.Style
	track   lipgloss.Style
	errBox  lipgloss.Style
	okBox   lipgloss.Style
}

// Renderer builds output for one terminal. Styles degrade to plain text
// when the writer is not a color terminal.
type Renderer struct {
	r          *lipgloss.Renderer
	lang       i18n.Lang
	thresholds core.BudgetThresholds
	s          styles
}

// New returns a Renderer for w.
func New(w io.Writer, lang i18n.Lang, thresholds core.BudgetThresholds) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		r:          r,
		lang:       lang,
		thresholds: thresholds,
		s: styles{
			title:   r.NewStyle().Bold(true),
			card:    r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2),
			label:   r.NewStyle().Foreground(colorMuted),
			muted:   r.NewStyle().Foreground(colorMuted),
			income:  r.NewStyle().Foreground(colorIncome),
			expense: r.NewStyle().Foreground(colorExpense),
			bar: map[core.BudgetStatus]lipgloss.Style{
				core.BudgetHealthy: r.NewStyle().Foreground(colorIncome),
				core.BudgetWarning: r.NewStyle().Foreground(colorWarning),
				core.BudgetDanger:  r.NewStyle().Foreground(colorExpense),
			},
			track:  r.NewStyle().Foreground(colorMuted),
			errBox: r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorExpense).Padding(0, 1),
			okBox:  r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorIncome).Padding(0, 1),
		},
	}
}

// SetLang switches the language of subsequent output.
func (v *Renderer) SetLang(l i18n.Lang) { v.lang = l }

func (v *Renderer) t(key i18n.Key) string { return i18n.T(v.lang, key) }

func (v *Renderer) num(d decimal.Decimal) string { return i18n.FormatNumber(v.lang, d) }

// Dashboard renders the budget card and the month's income and expense.
func (v *Renderer) Dashboard(s core.MonthlySummary) string {
	status := v.thresholds.Status(s.Percent)
	filled, empty := ProgressCells(s.ProgressWidth, BarCells)
	bar := v.s.bar[status].Render(strings.Repeat("█", filled)) +
		v.s.track.Render(strings.Repeat("░", empty))

	budget := lipgloss.JoinVertical(lipgloss.Left,
		v.s.label.Render(v.t(i18n.BudgetRemaining)),
		v.s.title.Render("$"+v.num(s.Remaining)),
		fmt.Sprintf("%s %d%%", bar, s.Percent),
		v.s.label.Render(v.t(i18n.TotalBudget)+" $"+v.num(s.Budget)),
	)

	totals := lipgloss.JoinVertical(lipgloss.Left,
		v.s.label.Render(v.t(i18n.MonthlyIncome)),
		v.s.income.Render(v.num(s.Income)),
		v.s.label.Render(v.t(i18n.MonthlyExpense)),
		v.s.expense.Render(v.num(s.Expense)),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, v.s.card.Render(budget), v.s.card.Render(totals))
}

// ProgressCells splits cells into filled and empty parts for a width in
// [0, 100].
func ProgressCells(width decimal.Decimal, cells int) (filled, empty int) {
	w := decimal.Max(decimal.Zero, decimal.Min(decimal.NewFromInt(100), width))
	filled = int(w.Mul(decimal.NewFromInt(int64(cells))).Div(decimal.NewFromInt(100)).Round(0).IntPart())
	return filled, cells - filled
}

// Transactions renders the list under its month heading. txns are expected
// to be ordered already.
func (v *Renderer) Transactions(month time.Month, txns []core.Transaction) string {
	heading := v.s.title.Render(i18n.MonthLabel(v.lang, month) + " " + v.t(i18n.MonthTransactions))
	if len(txns) == 0 {
		return heading + "\n" + v.s.muted.Render(v.t(i18n.NoTransactions))
	}

	lines := []string{heading}
	for _, t := range txns {
		note := t.Note
		if note == "" {
			note = t.CategoryName
		}
		amount := t.Type.Sign() + v.num(t.Amount)
		if t.Type == core.Income {
			amount = v.s.income.Render(amount)
		} else {
			amount = v.s.expense.Render(amount)
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s  %s  %s",
			v.badge(t.CategoryName, t.CategoryColorHex),
			note,
			v.s.muted.Render(t.Date+" · "+t.CategoryName),
			amount,
			v.s.muted.Render(t.ID),
		))
	}
	return strings.Join(lines, "\n")
}

// badge is the first letter of the category on its color.
func (v *Renderer) badge(name, hex string) string {
	if !core.ValidColorHex(hex) {
		hex = core.DefaultCategoryColor
	}
	initial := "?"
	if r := []rune(name); len(r) > 0 {
		initial = string(r[0])
	}
	return v.r.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color("#ffffff")).
		Padding(0, 1).
		Render(initial)
}

// Categories lists categories. The protected default category carries no
// delete hint.
func (v *Renderer) Categories(cats []core.Category) string {
	lines := []string{v.s.title.Render(v.t(i18n.ExistingCategory))}
	for _, c := range cats {
		line := fmt.Sprintf("%s %s  %s", v.badge(c.Name, c.ColorHex), c.Name, v.s.muted.Render(c.ColorHex+" #"+c.ID))
		if c.Protected() {
			line += "  " + v.s.muted.Render("("+v.t(i18n.CannotDelete)+")")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Error renders err as the localized error block.
func (v *Renderer) Error(err error) string {
	return v.ErrorText(v.ErrorMessage(err))
}

// ErrorText renders msg inside the error block.
func (v *Renderer) ErrorText(msg string) string {
	return v.s.errBox.Render(v.t(i18n.Error) + ": " + msg)
}

// ErrorMessage picks the text shown to the user for err. Client-side form
// problems and the protected category are localized; backend messages are
// shown verbatim.
func (v *Renderer) ErrorMessage(err error) string {
	var verr *core.ValidationError
	switch {
	case errors.Is(err, core.ErrProtectedCategory):
		return v.t(i18n.ProtectedCategory)
	case errors.As(err, &verr):
		switch {
		case errors.Is(verr.Err, core.ErrInvalidAmount):
			return v.t(i18n.InvalidAmount)
		case errors.Is(verr.Err, core.ErrInvalidDate):
			return v.t(i18n.InvalidDate)
		case errors.Is(verr.Err, core.ErrInvalidColor):
			return v.t(i18n.InvalidColor)
		}
		return v.t(i18n.FillRequired)
	}
	if msg := api.Message(err); msg != "" {
		return msg
	}
	return v.t(i18n.RequestFailed)
}

// Success renders a localized success block around msg.
func (v *Renderer) Success(msg string) string {
	return v.s.okBox.Render(v.t(i18n.Success) + ": " + msg)
}

// Notice renders a plain muted line.
func (v *Renderer) Notice(msg string) string {
	return v.s.muted.Render(msg)
}
