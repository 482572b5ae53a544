package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/api"
	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/ledger"
	"moneytracker/internal/mockapi"
	"moneytracker/internal/session"
	"moneytracker/internal/sheets/memory"
	"moneytracker/internal/storage"
)

var today = time.Date(2024, time.October, 15, 9, 30, 0, 0, time.UTC)

type harness struct {
	t        *testing.T
	state    *storage.State
	client   *api.Client
	sess     *session.Manager
	store    *ledger.Store
	exporter *memory.Store
	ticks    atomic.Int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := mockapi.NewServer(mockapi.Config{
		Username:               "demo",
		Password:               "demo",
		JWTSecret:              []byte("test-secret"),
		LoginAttemptsPerMinute: 100,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	state, err := storage.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { state.Close() })

	h := &harness{t: t, state: state, client: api.New(ts.URL), exporter: memory.New()}
	h.resetSession()
	h.resetLedger()
	return h
}

// resetSession rebuilds the session from whatever token is stored.
func (h *harness) resetSession() {
	h.t.Helper()
	sess, err := session.New(context.Background(), h.state, h.client, nil)
	if err != nil {
		h.t.Fatalf("session.New: %v", err)
	}
	h.client.SetTokenSource(sess)
	h.sess = sess
}

// resetLedger drops the in-memory caches, keeping saved snapshots.
func (h *harness) resetLedger() {
	clock := func() time.Time {
		return today.Add(time.Duration(h.ticks.Add(1)) * time.Millisecond)
	}
	h.store = ledger.New(h.client, ledger.WithSnapshots(h.state), ledger.WithClock(clock))
}

func (h *harness) app(input string, out io.Writer) *App {
	return New(context.Background(), Options{
		Session:     h.sess,
		Ledger:      h.store,
		Prefs:       h.state,
		Exporter:    h.exporter,
		ExportSheet: "Transactions",
		Lang:        i18n.EN,
		In:          strings.NewReader(input),
		Out:         out,
		Now:         func() time.Time { return today },
	})
}

func (h *harness) run(input string, args ...string) (string, int) {
	h.t.Helper()
	var out bytes.Buffer
	code := h.app(input, &out).Run(context.Background(), args)
	return out.String(), code
}

func (h *harness) mustRun(input string, args ...string) string {
	h.t.Helper()
	out, code := h.run(input, args...)
	if code != 0 {
		h.t.Fatalf("%v exited %d:\n%s", args, code, out)
	}
	return out
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun("", "login", "--username", "demo", "--password", "demo")
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestRegistryHasEveryCommand(t *testing.T) {
	h := newHarness(t)
	var names []string
	for _, c := range h.app("", io.Discard).Registry().Commands() {
		names = append(names, c.Name)
	}
	want := []string{
		"login", "logout", "status", "dashboard", "add", "edit", "delete",
		"categories", "category-add", "category-edit", "category-delete",
		"budget", "lang", "export", "chart", "help",
	}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("commands = %v\nwant %v", names, want)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	noop := func(context.Context, []string) error { return nil }
	if err := r.Register(Command{Name: "x", Run: noop}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(Command{Name: "x", Run: noop}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := r.Register(Command{Name: "y"}); err == nil {
		t.Fatal("expected error for missing handler")
	}
	if c, ok := r.Lookup("x"); !ok || c.Usage() != "x" {
		t.Fatalf("Lookup(x) = %+v, %v", c, ok)
	}
}

func TestParseFlagsInterleaved(t *testing.T) {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	amount := fs.String("amount", "", "")
	yes := fs.Bool("yes", false, "")

	positional, err := parseFlags(fs, []string{"--yes", "txn-1", "--amount", "5"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !reflect.DeepEqual(positional, []string{"txn-1"}) || *amount != "5" || !*yes {
		t.Fatalf("positional=%v amount=%q yes=%v", positional, *amount, *yes)
	}
	if set := setFlags(fs); !set["amount"] || !set["yes"] || set["note"] {
		t.Fatalf("setFlags = %v", set)
	}
}

func TestStartWithoutToken(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("")
	assertContains(t, out, "Money Tracker", "Not logged in")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	out, code := h.run("", "frobnicate")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	assertContains(t, out, "Unknown command: frobnicate", "category-delete <id> [--yes]")
}

func TestLoginStatusLogout(t *testing.T) {
	h := newHarness(t)

	out, code := h.run("", "login", "--username", "demo", "--password", "nope")
	if code != 1 {
		t.Fatalf("bad login exit code = %d", code)
	}
	assertContains(t, out, "Login failed")
	if h.sess.LoggedIn() {
		t.Fatal("logged in after rejected credentials")
	}

	out = h.mustRun("demo\ndemo\n", "login")
	assertContains(t, out, "Login successful!")

	out = h.mustRun("", "status")
	assertContains(t, out, "Logged in as demo")

	// Declining keeps the session.
	h.mustRun("n\n", "logout")
	if !h.sess.LoggedIn() {
		t.Fatal("declined logout cleared the token")
	}

	out = h.mustRun("", "logout", "--yes")
	assertContains(t, out, "Logged out")
	if _, err := h.state.Get(context.Background(), session.TokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("token still persisted: %v", err)
	}

	out, code = h.run("", "status")
	if code != 1 {
		t.Fatalf("status exit code = %d", code)
	}
	assertContains(t, out, "Not logged in")
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"add", "categories", "budget", "export", "chart", "dashboard"} {
		out, code := h.run("", name)
		if code != 1 || !strings.Contains(out, "Not logged in") {
			t.Errorf("%s: code=%d out=%q", name, code, out)
		}
	}
}

func TestTransactionLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("", "add", "--date", "2024-10-03", "--type", "expense", "--category", "1", "--amount", "120", "--note", "lunch")
	assertContains(t, out, "Added successfully!")

	h.mustRun("", "budget", "1000")
	out = h.mustRun("", "dashboard")
	assertContains(t, out, "$880", "88%", "Total Budget $1,000", "lunch", "-120", "October Transactions")

	txns := h.store.Transactions()
	if len(txns) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txns))
	}
	id := txns[0].ID

	// Keep every field but the amount.
	out = h.mustRun("\n\n\n200\n\n", "edit", id)
	assertContains(t, out, "Updated successfully!")
	tx, ok := h.store.Transaction(id)
	if !ok || !tx.Amount.Equal(decimal.RequireFromString("200")) || tx.Note != "lunch" || tx.Date != "2024-10-03" || tx.Type != core.Expense {
		t.Fatalf("edited transaction = %+v", tx)
	}

	out, code := h.run("", "edit", "txn-404", "--amount", "1")
	if code != 1 {
		t.Fatalf("edit unknown exit code = %d", code)
	}
	assertContains(t, out, "Not found: txn-404")

	out = h.mustRun("y\n", "delete", id)
	assertContains(t, out, "Deleted!")
	if len(h.store.Transactions()) != 0 {
		t.Fatal("transaction still listed after delete")
	}
}

func TestAddPromptsWithDefaults(t *testing.T) {
	h := newHarness(t)
	h.login()

	// date, type and category take their defaults.
	h.mustRun("\n\n\n45.5\ncoffee\n", "add")
	txns := h.store.Transactions()
	if len(txns) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txns))
	}
	tx := txns[0]
	if tx.Date != "2024-10-15" || tx.Type != core.Expense || tx.CategoryID != core.DefaultCategoryID || tx.Note != "coffee" {
		t.Fatalf("created transaction = %+v", tx)
	}
}

func TestAddAcceptsLongNote(t *testing.T) {
	h := newHarness(t)
	h.login()

	note := strings.Repeat("午餐", 40)
	h.mustRun("", "add", "--date", "2024-10-03", "--type", "expense", "--category", "1", "--amount", "5", "--note", note)
	txns := h.store.Transactions()
	if len(txns) != 1 || txns[0].Note != note {
		t.Fatalf("transactions = %+v", txns)
	}
}

func TestFormDate(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"2024-10-03", "2024-10-03"},
		{"2024-10-03T00:00:00Z", "2024-10-03"},
		{"2024-10-03T22:15:00-05:00", "2024-10-03"},
		{"someday", "someday"},
	}
	for _, tt := range tests {
		if got := formDate(tt.raw); got != tt.want {
			t.Errorf("formDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
	in := core.TransactionInput{Date: formDate("2024-10-03T00:00:00Z"), Type: core.Expense, CategoryID: "1", Amount: decimal.NewFromInt(5)}
	if err := in.Validate(); err != nil {
		t.Fatalf("pre-filled date rejected: %v", err)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	h := newHarness(t)
	h.login()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"amount", []string{"--amount", "abc"}, "Please enter a valid amount"},
		{"zero amount", []string{"--amount", "0"}, "Please enter a valid amount"},
		{"date", []string{"--amount", "5", "--date", "2024-13-01"}, "Please enter a valid date (YYYY-MM-DD)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"add", "--date", "2024-10-01", "--type", "expense", "--category", "1", "--note", ""}, tt.args...)
			out, code := h.run("", args...)
			if code != 1 {
				t.Fatalf("exit code = %d", code)
			}
			assertContains(t, out, tt.want)
		})
	}

	out, code := h.run("", "add", "--date", "2024-10-01", "--type", "expense", "--category", "999", "--amount", "5", "--note", "")
	if code != 1 {
		t.Fatalf("unknown category exit code = %d:\n%s", code, out)
	}
	if len(h.store.Transactions()) != 0 {
		t.Fatal("invalid input created a transaction")
	}
}

func TestCategoryCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, code := h.run("", "category-delete", "1", "--yes")
	if code != 1 {
		t.Fatalf("protected delete exit code = %d", code)
	}
	assertContains(t, out, "The default category cannot be deleted")

	h.mustRun("", "category-add", "--name", "Food", "--color", "#FF5722")
	out = h.mustRun("", "categories")
	assertContains(t, out, "Food", "#FF5722", "Cannot Delete")

	var food core.Category
	for _, c := range h.store.Categories() {
		if c.Name == "Food" {
			food = c
		}
	}
	if food.ID == "" {
		t.Fatal("Food not created")
	}

	h.mustRun("\n#00FF00\n", "category-edit", food.ID)
	if c, _ := h.store.Category(food.ID); c.ColorHex != "#00FF00" || c.Name != "Food" {
		t.Fatalf("edited category = %+v", c)
	}

	out, code = h.run("", "category-add", "--name", "Bad", "--color", "red")
	if code != 1 {
		t.Fatalf("bad color exit code = %d", code)
	}
	assertContains(t, out, "Please enter a valid color (#RRGGBB)")

	h.mustRun("", "category-delete", food.ID, "--yes")
	if _, ok := h.store.Category(food.ID); ok {
		t.Fatal("category still listed after delete")
	}
}

func TestAuthFailureDropsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.state.Set(ctx, session.TokenKey, "stale-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	h.resetSession()
	if !h.sess.LoggedIn() {
		t.Fatal("stored token not restored")
	}

	out, code := h.run("", "dashboard")
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	assertContains(t, out, "Session expired")
	if h.sess.LoggedIn() {
		t.Fatal("token kept after auth failure")
	}
	if _, err := h.state.Get(ctx, session.TokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("token still persisted: %v", err)
	}
}

func TestStartupValidatesToken(t *testing.T) {
	h := newHarness(t)
	if err := h.state.Set(context.Background(), session.TokenKey, "stale-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	h.resetSession()

	out := h.mustRun("")
	assertContains(t, out, "Session expired")
	if h.sess.LoggedIn() {
		t.Fatal("invalid token survived startup")
	}

	h.login()
	out = h.mustRun("")
	assertContains(t, out, "Budget Remaining")
}

func TestOfflineDashboard(t *testing.T) {
	h := newHarness(t)

	out, code := h.run("", "dashboard", "--offline")
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	assertContains(t, out, "No offline data available")

	h.login()
	h.mustRun("", "add", "--date", "2024-10-05", "--type", "income", "--category", "1", "--amount", "3000", "--note", "salary")
	h.mustRun("", "dashboard")

	h.resetLedger()
	out = h.mustRun("", "dashboard", "--offline")
	assertContains(t, out, "Offline data", "salary", "+3,000")
}

func TestLanguagePreference(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "lang", "zh-TW")
	assertContains(t, out, "語言已切換為中文")
	if got := h.app("", io.Discard).Lang(); got != i18n.ZH {
		t.Fatalf("restored language = %q, want zh", got)
	}

	out = h.mustRun("", "lang")
	assertContains(t, out, "Language set to English")

	out, code := h.run("", "lang", "klingon")
	if code != 1 {
		t.Fatalf("unsupported language exit code = %d", code)
	}
	assertContains(t, out, "Unsupported language: klingon")
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mustRun("", "add", "--date", "2024-10-03", "--type", "expense", "--category", "1", "--amount", "12", "--note", "a")
	h.mustRun("", "add", "--date", "2024-10-04", "--type", "income", "--category", "1", "--amount", "50", "--note", "b")
	h.mustRun("", "add", "--date", "2024-09-30", "--type", "expense", "--category", "1", "--amount", "7", "--note", "c")

	out := h.mustRun("", "export", "--year", "2024", "--month", "10")
	assertContains(t, out, "Exported 2 transactions")

	rows := h.exporter.Rows("Transactions")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[1][4] != "b" || rows[2][4] != "a" {
		t.Fatalf("rows not in display order: %v", rows)
	}

	out = h.mustRun("", "export", "--year", "2023", "--month", "1")
	assertContains(t, out, "No transactions yet!")

	if _, code := h.run("", "export", "--month", "13"); code != 1 {
		t.Fatalf("invalid month exit code = %d", code)
	}
}

func TestChart(t *testing.T) {
	h := newHarness(t)
	h.login()

	// The English table has no entry for this message.
	out := h.mustRun("", "chart")
	assertContains(t, out, "本月沒有支出紀錄")

	h.mustRun("", "add", "--date", "2024-10-03", "--type", "expense", "--category", "1", "--amount", "12", "--note", "")
	path := filepath.Join(t.TempDir(), "out.png")
	out = h.mustRun("", "chart", "--out", path)
	assertContains(t, out, "Chart saved to "+path)

	img, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Fatal("chart is not a PNG")
	}
}
