package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"moneytracker/internal/charts"
	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
	"moneytracker/internal/prompt"
	"moneytracker/internal/sheets"
)

// DefaultNewCategoryColor pre-fills the color of the add-category form.
const DefaultNewCategoryColor = "#5abf98"

func (a *App) registerCommands() {
	for _, c := range []Command{
		{Name: "login", Args: "[--username u] [--password p]", Run: a.login},
		{Name: "logout", Args: "[--yes]", Run: a.logout},
		{Name: "status", Run: a.status},
		{Name: "dashboard", Args: "[--offline] [--month-only] [--year y --month m]", Run: a.dashboard},
		{Name: "add", Args: "[--date d] [--type t] [--category c] [--amount n] [--note s]", Auth: true, Run: a.addTransaction},
		{Name: "edit", Args: "<id> [--date d] [--type t] [--category c] [--amount n] [--note s]", Auth: true, Run: a.editTransaction},
		{Name: "delete", Args: "<id> [--yes]", Auth: true, Run: a.deleteTransaction},
		{Name: "categories", Auth: true, Run: a.listCategories},
		{Name: "category-add", Args: "[--name s] [--color #rrggbb]", Auth: true, Run: a.addCategory},
		{Name: "category-edit", Args: "<id> [--name s] [--color #rrggbb]", Auth: true, Run: a.editCategory},
		{Name: "category-delete", Args: "<id> [--yes]", Auth: true, Run: a.deleteCategory},
		{Name: "budget", Args: "[amount]", Auth: true, Run: a.setBudget},
		{Name: "lang", Args: "[zh|en]", Run: a.setLang},
		{Name: "export", Args: "[--year y --month m]", Auth: true, Run: a.export},
		{Name: "chart", Args: "[--out file] [--year y --month m]", Auth: true, Run: a.chart},
		{Name: "help", Run: func(context.Context, []string) error { a.help(); return nil }},
	} {
		if err := a.registry.Register(c); err != nil {
			panic(err)
		}
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	username := fs.String("username", "", "account name")
	password := fs.String("password", "", "account password")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = a.prompt.Ask(a.t(i18n.Username), ""); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompt.Password(a.t(i18n.Password)); err != nil {
			return err
		}
	}
	if *username == "" || *password == "" {
		return &core.ValidationError{Field: "username", Err: core.ErrEmptyField}
	}

	if err := a.session.Login(ctx, *username, *password); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.LoginSuccess)))
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	fs := a.flagSet("logout")
	yes := fs.Bool("yes", false, "skip confirmation")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*yes {
		ok, err := a.prompt.Confirm(a.t(i18n.LogoutConfirm), a.t(i18n.Yes), a.t(i18n.No), false)
		if err != nil || !ok {
			return err
		}
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.println(a.view.Notice(a.t(i18n.LoggedOut)))
	return nil
}

func (a *App) status(ctx context.Context, _ []string) error {
	if !a.session.LoggedIn() {
		return errNotLoggedIn
	}
	if !a.session.ValidateToken(ctx) {
		return &userError{key: i18n.SessionExpired}
	}
	name := a.session.Username()
	if name == "" {
		name = "?"
	}
	a.println(a.view.Notice(a.t(i18n.VaultOpen) + " · " + a.tf(i18n.LoggedInAs, name)))
	return nil
}

func (a *App) dashboard(ctx context.Context, args []string) error {
	fs := a.flagSet("dashboard")
	offline := fs.Bool("offline", false, "render the last saved data without contacting the backend")
	monthOnly := fs.Bool("month-only", false, "list only the selected month's transactions")
	year, month := a.monthFlags(fs)
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	m, err := checkMonth(*month)
	if err != nil {
		return err
	}

	if *offline {
		savedAt, err := a.ledger.Restore(ctx)
		if errors.Is(err, ledger.ErrNoSnapshot) {
			return &userError{key: i18n.NoCachedData}
		}
		if err != nil {
			return err
		}
		a.println(a.view.Notice(a.tf(i18n.CachedData, savedAt.Local().Format("2006-01-02 15:04"))))
	} else {
		if !a.session.LoggedIn() {
			return errNotLoggedIn
		}
		if err := a.ledger.Load(ctx); err != nil {
			return err
		}
	}

	txns := a.ledger.Transactions()
	if *monthOnly {
		txns = core.InMonth(txns, *year, m)
	}
	a.println(a.view.Dashboard(a.ledger.Summary(*year, m)))
	a.println(a.view.Transactions(m, txns))
	return nil
}

type txFlags struct {
	date, typ, category, amount, note *string
}

func (a *App) transactionFlags(name string) (*flag.FlagSet, txFlags) {
	fs := a.flagSet(name)
	return fs, txFlags{
		date:     fs.String("date", "", "YYYY-MM-DD"),
		typ:      fs.String("type", "", "expense or income"),
		category: fs.String("category", "", "category id or name"),
		amount:   fs.String("amount", "", "amount"),
		note:     fs.String("note", "", "note"),
	}
}

// transactionForm fills every field not given on the command line from
// the prompt, offering base as the defaults.
func (a *App) transactionForm(set map[string]bool, f txFlags, base core.TransactionInput) (core.TransactionInput, error) {
	in := base
	var err error

	if set["date"] {
		in.Date = strings.TrimSpace(*f.date)
	} else if in.Date, err = a.prompt.Ask(a.t(i18n.Date), base.Date); err != nil {
		return in, err
	}

	if set["type"] {
		in.Type = core.TxType(strings.ToLower(strings.TrimSpace(*f.typ)))
	} else {
		typ, err := a.prompt.Choose(a.t(i18n.Type), []prompt.Option{
			{Value: string(core.Expense), Label: a.t(i18n.Expense)},
			{Value: string(core.Income), Label: a.t(i18n.Income)},
		}, string(base.Type))
		if err != nil {
			return in, err
		}
		in.Type = core.TxType(typ)
	}

	cats := a.ledger.Categories()
	if set["category"] {
		in.CategoryID = resolveCategory(cats, *f.category)
	} else if len(cats) > 0 {
		def := base.CategoryID
		if def == "" {
			def = cats[0].ID
		}
		opts := make([]prompt.Option, 0, len(cats))
		for _, c := range cats {
			opts = append(opts, prompt.Option{Value: c.ID, Label: c.Name})
		}
		if in.CategoryID, err = a.prompt.Choose(a.t(i18n.Category), opts, def); err != nil {
			return in, err
		}
	}

	raw := *f.amount
	if !set["amount"] {
		def := ""
		if base.Amount.IsPositive() {
			def = base.Amount.String()
		}
		if raw, err = a.prompt.Ask(a.t(i18n.Amount), def); err != nil {
			return in, err
		}
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return in, &core.ValidationError{Field: "amount", Err: err}
	}
	in.Amount = amount

	if set["note"] {
		in.Note = *f.note
	} else if in.Note, err = a.prompt.Ask(a.t(i18n.Note), base.Note); err != nil {
		return in, err
	}
	return in, nil
}

// formDate turns a stored date into the form's YYYY-MM-DD. Values that do
// not parse are offered unchanged.
func formDate(raw string) string {
	d, err := core.ParseDate(raw)
	if err != nil {
		return raw
	}
	return d.Format(core.DateLayout)
}

// resolveCategory accepts a category id or, failing that, a name. Unknown
// values are passed through for the backend to judge.
func resolveCategory(cats []core.Category, v string) string {
	v = strings.TrimSpace(v)
	for _, c := range cats {
		if c.ID == v {
			return c.ID
		}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, v) {
			return c.ID
		}
	}
	return v
}

func (a *App) addTransaction(ctx context.Context, args []string) error {
	fs, f := a.transactionFlags("add")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.ledger.Load(ctx); err != nil {
		return err
	}
	base := core.TransactionInput{
		Date: a.now().Format(core.DateLayout),
		Type: core.Expense,
	}
	in, err := a.transactionForm(setFlags(fs), f, base)
	if err != nil {
		return err
	}
	a.println(a.view.Notice(a.t(i18n.Adding)))
	if _, err := a.ledger.CreateTransaction(ctx, in); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.AddSuccess)))
	return nil
}

func (a *App) editTransaction(ctx context.Context, args []string) error {
	fs, f := a.transactionFlags("edit")
	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	id, err := oneID(positional)
	if err != nil {
		return err
	}
	if err := a.ledger.Load(ctx); err != nil {
		return err
	}
	tx, ok := a.ledger.Transaction(id)
	if !ok {
		return notFound(id)
	}
	a.println(a.view.Notice(a.t(i18n.EditTransaction) + " · " + id))

	base := core.TransactionInput{
		Date:       formDate(tx.Date),
		Type:       tx.Type,
		CategoryID: tx.CategoryID,
		Amount:     tx.Amount,
		Note:       tx.Note,
	}
	in, err := a.transactionForm(setFlags(fs), f, base)
	if err != nil {
		return err
	}
	a.println(a.view.Notice(a.t(i18n.Updating)))
	if _, err := a.ledger.UpdateTransaction(ctx, id, in); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.UpdateSuccess)))
	return nil
}

func (a *App) deleteTransaction(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	yes := fs.Bool("yes", false, "skip confirmation")
	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	id, err := oneID(positional)
	if err != nil {
		return err
	}
	if !*yes {
		a.println(a.view.Notice(a.t(i18n.DeleteTxWarning)))
		ok, err := a.prompt.Confirm(a.t(i18n.DeleteConfirm), a.t(i18n.Yes), a.t(i18n.No), false)
		if err != nil || !ok {
			return err
		}
	}
	if err := a.ledger.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.Deleted) + " " + a.t(i18n.DeleteSuccess)))
	return nil
}

func (a *App) listCategories(ctx context.Context, _ []string) error {
	if err := a.ledger.Load(ctx); err != nil {
		return err
	}
	a.println(a.view.Categories(a.ledger.Categories()))
	return nil
}

// categoryForm fills name and color from flags or the prompt.
func (a *App) categoryForm(set map[string]bool, name, color *string, base core.CategoryInput) (core.CategoryInput, error) {
	in := base
	var err error
	if set["name"] {
		in.Name = strings.TrimSpace(*name)
	} else if in.Name, err = a.prompt.Ask(a.t(i18n.CategoryName), base.Name); err != nil {
		return in, err
	}
	if set["color"] {
		in.ColorHex = strings.TrimSpace(*color)
	} else if in.ColorHex, err = a.prompt.Ask(a.t(i18n.CategoryColor), base.ColorHex); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) addCategory(ctx context.Context, args []string) error {
	fs := a.flagSet("category-add")
	name := fs.String("name", "", "category name")
	color := fs.String("color", "", "#rrggbb")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	in, err := a.categoryForm(setFlags(fs), name, color, core.CategoryInput{ColorHex: DefaultNewCategoryColor})
	if err != nil {
		return err
	}
	if _, err := a.ledger.CreateCategory(ctx, in); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.AddSuccess)))
	return nil
}

func (a *App) editCategory(ctx context.Context, args []string) error {
	fs := a.flagSet("category-edit")
	name := fs.String("name", "", "category name")
	color := fs.String("color", "", "#rrggbb")
	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	id, err := oneID(positional)
	if err != nil {
		return err
	}
	if err := a.ledger.Load(ctx); err != nil {
		return err
	}
	cat, ok := a.ledger.Category(id)
	if !ok {
		return notFound(id)
	}
	a.println(a.view.Notice(a.t(i18n.EditCategory) + " · " + cat.Name))

	in, err := a.categoryForm(setFlags(fs), name, color, core.CategoryInput{Name: cat.Name, ColorHex: cat.ColorHex})
	if err != nil {
		return err
	}
	if _, err := a.ledger.UpdateCategory(ctx, id, in); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.UpdateSuccess)))
	return nil
}

func (a *App) deleteCategory(ctx context.Context, args []string) error {
	fs := a.flagSet("category-delete")
	yes := fs.Bool("yes", false, "skip confirmation")
	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	id, err := oneID(positional)
	if err != nil {
		return err
	}
	if (core.Category{ID: id}).Protected() {
		return fmt.Errorf("delete category %s: %w", id, core.ErrProtectedCategory)
	}
	if !*yes {
		a.println(a.view.Notice(a.t(i18n.DeleteCatWarning)))
		ok, err := a.prompt.Confirm(a.t(i18n.DeleteCatConfirm), a.t(i18n.Yes), a.t(i18n.No), false)
		if err != nil || !ok {
			return err
		}
	}
	if err := a.ledger.DeleteCategory(ctx, id); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.Deleted) + " " + a.t(i18n.DeleteSuccess)))
	return nil
}

func (a *App) setBudget(ctx context.Context, args []string) error {
	fs := a.flagSet("budget")
	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	var raw string
	switch len(positional) {
	case 0:
		if err := a.ledger.Load(ctx); err != nil {
			return err
		}
		a.println(a.view.Notice(a.t(i18n.SetBudget)))
		if raw, err = a.prompt.Ask(a.t(i18n.BudgetAmount), a.ledger.Budget().Amount.String()); err != nil {
			return err
		}
	case 1:
		raw = positional[0]
	default:
		return &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}

	amount, err := core.ParseAmount(raw)
	if err != nil {
		return &core.ValidationError{Field: "amount", Err: err}
	}
	if _, err := a.ledger.SetBudget(ctx, amount); err != nil {
		return err
	}
	a.println(a.view.Success(a.t(i18n.UpdateSuccess)))
	return nil
}

func (a *App) setLang(ctx context.Context, args []string) error {
	next := a.lang.Toggle()
	if len(args) > 0 {
		l, ok := i18n.ParseLang(args[0])
		if !ok {
			return &userError{key: i18n.UnsupportedLang, args: []any{args[0]}}
		}
		next = l
	}
	if err := a.prefs.Set(ctx, LangKey, string(next)); err != nil {
		return fmt.Errorf("save language: %w", err)
	}
	a.lang = next
	a.view.SetLang(next)
	a.println(a.view.Success(a.t(i18n.LanguageSet)))
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	year, month := a.monthFlags(fs)
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	m, err := checkMonth(*month)
	if err != nil {
		return err
	}
	if a.exporter == nil {
		return errors.New("google sheets export is not configured (GOOGLE_SPREADSHEET_ID and service account)")
	}
	if err := a.ledger.Load(ctx); err != nil {
		return err
	}

	rows := sheets.ExportRows(core.InMonth(a.ledger.Transactions(), *year, m))
	if len(rows) == 0 {
		a.println(a.view.Notice(a.t(i18n.NoTransactions)))
		return nil
	}
	ref, err := a.exporter.AppendRows(ctx, a.exportSheet, sheets.ExportHeader, rows)
	if err != nil {
		return fmt.Errorf("export to sheets: %w", err)
	}
	a.logger.InfoContext(ctx, "Exported transactions",
		log.FieldOperation, log.OpExport, log.FieldCount, len(rows), log.FieldSheetsRef, ref)
	a.println(a.view.Success(a.tf(i18n.ExportSuccess, len(rows))))
	return nil
}

func (a *App) chart(ctx context.Context, args []string) error {
	fs := a.flagSet("chart")
	out := fs.String("out", "", "PNG file to write (default expenses-YYYY-MM.png)")
	year, month := a.monthFlags(fs)
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	m, err := checkMonth(*month)
	if err != nil {
		return err
	}
	if err := a.ledger.Load(ctx); err != nil {
		return err
	}

	totals := core.ExpensesByCategory(a.ledger.Transactions(), *year, m)
	img, err := charts.ExpenseBreakdown(totals, charts.Options{
		Title:      fmt.Sprintf("%d %s %s", *year, i18n.MonthLabel(a.lang, m), a.t(i18n.MonthlyExpense)),
		OtherLabel: a.t(i18n.Other),
		Format: func(v float64) string {
			return i18n.FormatNumber(a.lang, decimal.NewFromFloat(v))
		},
	})
	if errors.Is(err, charts.ErrNoData) {
		a.println(a.view.Notice(a.t(i18n.NoChartData)))
		return nil
	}
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("expenses-%04d-%02d.png", *year, int(m))
	}
	if err := os.WriteFile(path, img, 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	a.logger.WithComponent(log.ComponentCharts).InfoContext(ctx, "Chart written", log.FieldOperation, log.OpRender, "path", path)
	a.println(a.view.Success(a.tf(i18n.ChartSaved, path)))
	return nil
}
