// Package session owns the bearer token: obtaining it, persisting it and
// dropping it when the backend stops accepting it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"moneytracker/internal/log"
	"moneytracker/internal/storage"
)

// TokenKey is the storage key the token is persisted under.
const TokenKey = "token"

// PrefStore is the durable key-value storage the manager persists into.
type PrefStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend is the part of the API client the session needs.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	// Probe performs any authenticated request; success means the token
	// is still good.
	Probe(ctx context.Context) error
}

type Manager struct {
	mu      sync.RWMutex
	token   string
	prefs   PrefStore
	backend Backend
	logger  *log.Logger
}

// New restores a persisted token, if any.
func New(ctx context.Context, prefs PrefStore, backend Backend, logger *log.Logger) (*Manager, error) {
	if logger == nil {
		logger = log.Discard()
	}
	m := &Manager{prefs: prefs, backend: backend, logger: logger.WithComponent(log.ComponentSession)}
	tok, err := prefs.Get(ctx, TokenKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("restore token: %w", err)
	default:
		m.token = tok
	}
	return m, nil
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}

// Login replaces the current token. On failure the previous state is kept
// and the error is the backend's *api.AuthError.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	tok, err := m.backend.Login(ctx, username, password)
	if err != nil {
		m.logger.WarnContext(ctx, "Login rejected", log.FieldOperation, log.OpLogin, log.FieldError, err)
		return err
	}
	if err := m.prefs.Set(ctx, TokenKey, tok); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()
	m.logger.InfoContext(ctx, "Logged in", log.FieldOperation, log.OpLogin)
	return nil
}

// ValidateToken reports whether the stored token is still accepted. Any
// failure of the probe request clears the token. Calling it repeatedly
// without a token is a no-op returning false.
func (m *Manager) ValidateToken(ctx context.Context) bool {
	if !m.LoggedIn() {
		return false
	}
	if err := m.backend.Probe(ctx); err != nil {
		m.logger.InfoContext(ctx, "Stored token rejected", log.FieldOperation, log.OpValidate, log.FieldError, err)
		if err := m.Logout(ctx); err != nil {
			m.logger.WarnContext(ctx, "Failed to clear token", log.FieldError, err)
		}
		return false
	}
	return true
}

// Logout forgets the token in memory and in storage.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	if err := m.prefs.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Username reads the display name out of the token's claims without
// verifying the signature. Returns "" for opaque tokens.
func (m *Manager) Username() string {
	tok := m.Token()
	if tok == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return ""
	}
	if name, ok := claims["username"].(string); ok && name != "" {
		return name
	}
	sub, _ := claims.GetSubject()
	return sub
}
