// Package app is the terminal view controller: it dispatches commands,
// drives the load, aggregate and render cycle, and reports outcomes.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"moneytracker/internal/api"
	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
	"moneytracker/internal/prompt"
	"moneytracker/internal/session"
	"moneytracker/internal/sheets"
	"moneytracker/internal/storage"
	"moneytracker/internal/view"
)

// LangKey is the storage key of the language preference.
const LangKey = "lang"

// PrefStore persists small client preferences.
type PrefStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Options struct {
	Session *session.Manager
	Ledger  *ledger.Store
	Prefs   PrefStore
	// Exporter is optional; export fails with a configuration error without it.
	Exporter    sheets.RowAppender
	ExportSheet string

	Lang       i18n.Lang
	Thresholds core.BudgetThresholds

	In     io.Reader
	Out    io.Writer
	Now    func() time.Time
	Logger *log.Logger
}

type App struct {
	session     *session.Manager
	ledger      *ledger.Store
	prefs       PrefStore
	exporter    sheets.RowAppender
	exportSheet string

	lang   i18n.Lang
	out    io.Writer
	view   *view.Renderer
	prompt *prompt.Prompter
	now    func() time.Time
	logger *log.Logger

	registry *Registry
}

// New builds the controller. A stored language preference overrides
// opts.Lang.
func New(ctx context.Context, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Lang == "" {
		opts.Lang = i18n.Default
	}
	if opts.Thresholds == (core.BudgetThresholds{}) {
		opts.Thresholds = core.DefaultBudgetThresholds()
	}

	a := &App{
		session:     opts.Session,
		ledger:      opts.Ledger,
		prefs:       opts.Prefs,
		exporter:    opts.Exporter,
		exportSheet: opts.ExportSheet,
		lang:        opts.Lang,
		out:         opts.Out,
		prompt:      prompt.New(opts.In, opts.Out),
		now:         opts.Now,
		logger:      opts.Logger.WithComponent(log.ComponentApp),
		registry:    NewRegistry(),
	}

	if stored, err := a.prefs.Get(ctx, LangKey); err == nil {
		if l, ok := i18n.ParseLang(stored); ok {
			a.lang = l
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		a.logger.WarnContext(ctx, "Failed to read language preference", log.FieldError, err)
	}

	a.view = view.New(opts.Out, a.lang, opts.Thresholds)
	a.registerCommands()
	return a
}

func (a *App) Registry() *Registry { return a.registry }

func (a *App) Lang() i18n.Lang { return a.lang }

func (a *App) t(key i18n.Key) string { return i18n.T(a.lang, key) }

func (a *App) tf(key i18n.Key, args ...any) string { return i18n.Tf(a.lang, key, args...) }

func (a *App) println(s string) { fmt.Fprintln(a.out, s) }

// Run executes args[0] with the remaining arguments and returns the
// process exit code. Without arguments it runs the startup flow.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		if err := a.start(ctx); err != nil {
			a.report(ctx, "dashboard", err)
			return 1
		}
		return 0
	}

	name := args[0]
	if _, ok := a.registry.Lookup(name); !ok {
		a.println(a.view.ErrorText(a.tf(i18n.UnknownCommand, name)))
		a.help()
		return 2
	}
	if err := a.Execute(ctx, name, args[1:]); err != nil {
		a.report(ctx, name, err)
		return 1
	}
	return 0
}

// Execute runs a registered command and returns its error unrendered.
func (a *App) Execute(ctx context.Context, name string, args []string) error {
	cmd, ok := a.registry.Lookup(name)
	if !ok {
		return &userError{key: i18n.UnknownCommand, args: []any{name}}
	}
	if cmd.Auth && !a.session.LoggedIn() {
		return errNotLoggedIn
	}
	err := cmd.Run(ctx, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// start validates the stored token and shows the dashboard when it is
// still accepted.
func (a *App) start(ctx context.Context) error {
	if !a.session.LoggedIn() {
		a.println(a.view.Notice(a.t(i18n.AppTitle) + " · " + a.t(i18n.AppSubtitle)))
		a.println(a.view.Notice(a.t(i18n.NotLoggedIn)))
		return nil
	}
	if !a.session.ValidateToken(ctx) {
		a.println(a.view.ErrorText(a.t(i18n.SessionExpired)))
		return nil
	}
	return a.Execute(ctx, "dashboard", nil)
}

// report renders err the way the user sees it. An auth failure outside of
// login means the token is no longer accepted, so the session is dropped.
func (a *App) report(ctx context.Context, name string, err error) {
	a.logger.DebugContext(ctx, "Command failed", "command", name, log.FieldError, err)

	var ue *userError
	switch {
	case errors.Is(err, prompt.ErrAborted):
		a.println(a.view.Notice(a.t(i18n.Cancel)))
	case errors.As(err, &ue):
		a.println(a.view.ErrorText(a.tf(ue.key, ue.args...)))
	case api.IsAuth(err) && name == "login":
		a.println(a.view.ErrorText(a.t(i18n.LoginFailed) + ": " + a.view.ErrorMessage(err)))
	case api.IsAuth(err):
		if lerr := a.session.Logout(ctx); lerr != nil {
			a.logger.WarnContext(ctx, "Failed to clear token", log.FieldError, lerr)
		}
		a.logger.InfoContext(ctx, "Session dropped after auth failure", "command", name)
		a.println(a.view.ErrorText(a.t(i18n.SessionExpired)))
	default:
		a.println(a.view.Error(err))
	}
}

// userError is a failure detected by the controller itself, shown through
// the translation table.
type userError struct {
	key  i18n.Key
	args []any
}

func (e *userError) Error() string {
	return i18n.Tf(i18n.EN, e.key, e.args...)
}

var errNotLoggedIn = &userError{key: i18n.NotLoggedIn}

func notFound(id string) error {
	return &userError{key: i18n.NotFound, args: []any{id}}
}

func (a *App) help() {
	a.println(a.t(i18n.Commands) + ":")
	for _, c := range a.registry.Commands() {
		a.println("  " + c.Usage())
	}
}

// parseFlags parses fs out of args, allowing flags before, between and
// after positional arguments. It returns the positional arguments.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// setFlags reports which flags were given explicitly.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// oneID extracts the single required id argument.
func oneID(positional []string) (string, error) {
	if len(positional) != 1 || strings.TrimSpace(positional[0]) == "" {
		return "", &core.ValidationError{Field: "id", Err: core.ErrEmptyField}
	}
	return strings.TrimSpace(positional[0]), nil
}

// monthFlags registers --year and --month defaulting to the current month.
func (a *App) monthFlags(fs *flag.FlagSet) (year, month *int) {
	now := a.now()
	year = fs.Int("year", now.Year(), "calendar year")
	month = fs.Int("month", int(now.Month()), "calendar month (1-12)")
	return year, month
}

func checkMonth(month int) (time.Month, error) {
	if month < 1 || month > 12 {
		return 0, &core.ValidationError{Field: "month", Err: core.ErrInvalidDate}
	}
	return time.Month(month), nil
}
