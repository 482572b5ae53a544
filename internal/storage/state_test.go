package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestState(t *testing.T) *State {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	s := openTestState(t)

	if _, err := s.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "token", "a"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "token", "b"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "token")
	if err != nil || got != "b" {
		t.Fatalf("Get = %q, %v; want b", got, err)
	}
	if err := s.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "token"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := s.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v", err)
	}
}

func TestReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set(ctx, "lang", "en"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if got, _ := s.Get(ctx, "lang"); got != "en" {
		t.Fatalf("lang after reopen = %q", got)
	}
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := openTestState(t)
	at := time.Date(2024, 10, 5, 8, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	if _, _, err := s.LoadSnapshot(ctx, "ledger"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadSnapshot on empty store = %v", err)
	}
	if err := s.SaveSnapshot(ctx, "ledger", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := s.SaveSnapshot(ctx, "ledger", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("SaveSnapshot overwrite: %v", err)
	}
	payload, savedAt, err := s.LoadSnapshot(ctx, "ledger")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if string(payload) != `{"v":2}` {
		t.Errorf("payload = %s", payload)
	}
	if !savedAt.Equal(at) {
		t.Errorf("savedAt = %v, want %v", savedAt, at)
	}
}
