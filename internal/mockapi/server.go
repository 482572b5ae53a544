// Package mockapi is a development backend implementing the Money Tracker
// REST contract with an in-memory ledger and a single configured user.
package mockapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"moneytracker/internal/log"
	"moneytracker/internal/middleware/ratelimit"
	"moneytracker/internal/middleware/trace"
)

type Config struct {
	Username  string
	Password  string
	JWTSecret []byte
	TokenTTL  time.Duration
	// LoginAttemptsPerMinute limits POST /auth/login per client address.
	LoginAttemptsPerMinute int
	Logger                 *log.Logger
}

type Server struct {
	cfg          Config
	passwordHash []byte
	store        *store
	limiter      *ratelimit.Limiter
	trace        *trace.Middleware
	logger       *log.Logger
	now          func() time.Time
	router       chi.Router
}

type ctxKey string

const usernameKey ctxKey = "username"

func NewServer(cfg Config) (*Server, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("mockapi: username and password are required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("mockapi: JWT secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	logger := cfg.Logger.WithComponent(log.ComponentMockAPI)
	s := &Server{
		cfg:          cfg,
		passwordHash: hash,
		store:        newStore(),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{Limit: cfg.LoginAttemptsPerMinute, Window: time.Minute}),
		trace:        trace.NewMiddleware(logger),
		logger:       logger,
		now:          time.Now,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.trace.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.FromRequest))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.With(s.limiter.Middleware(ratelimit.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
	})).Post("/auth/login", s.handleLogin)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Put("/categories/{id}", s.handleUpdateCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		r.Get("/budget", s.handleGetBudget)
		r.Put("/budget", s.handleSetBudget)
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Metrics exposes request counters for the shutdown log line.
func (s *Server) Metrics() trace.Metrics {
	return s.trace.GetMetrics()
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected", log.FieldOperation, log.OpLogin)
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	tok, err := s.issueToken(req.Username)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to sign token", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) issueToken(username string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"username": username,
		"sub":      username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
}

// requireToken rejects requests without a valid bearer token with 401.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.cfg.JWTSecret, nil
		}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		username, _ := claims["username"].(string)
		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
