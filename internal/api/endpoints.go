package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

type (
	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	loginResponse struct {
		Token string `json:"token"`
	}

	categoryRequest struct {
		Name     string `json:"name"`
		ColorHex string `json:"color_hex"`
	}

	transactionRequest struct {
		ID         string      `json:"id,omitempty"`
		Date       string      `json:"date"`
		Type       core.TxType `json:"type"`
		CategoryID string      `json:"category_id"`
		Amount     json.Number `json:"amount"`
		Note       string      `json:"note"`
	}

	budgetRequest struct {
		Amount json.Number `json:"amount"`
	}

	listEnvelope[T any] struct {
		Data []T `json:"data"`
	}

	itemEnvelope[T any] struct {
		Data *T `json:"data"`
	}
)

// Login exchanges credentials for a bearer token. Every failure is an
// *AuthError.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.Do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		var ae *AuthError
		if errors.As(err, &ae) {
			return "", err
		}
		return "", &AuthError{Err: err}
	}
	if resp.Token == "" {
		return "", &AuthError{Err: &RequestError{Status: http.StatusOK, Message: c.fallback}}
	}
	return resp.Token, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var env listEnvelope[core.Category]
	if err := c.Do(ctx, http.MethodGet, "/api/categories", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []core.Category{}, nil
	}
	return env.Data, nil
}

func (c *Client) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	return doItem[core.Category](ctx, c, http.MethodPost, "/api/categories", categoryRequest(in))
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in core.CategoryInput) (core.Category, error) {
	return doItem[core.Category](ctx, c, http.MethodPut, "/api/categories/"+url.PathEscape(id), categoryRequest(in))
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var env listEnvelope[core.Transaction]
	if err := c.Do(ctx, http.MethodGet, "/api/transactions", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []core.Transaction{}, nil
	}
	return env.Data, nil
}

// CreateTransaction posts a new transaction under the client-generated id.
func (c *Client) CreateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	req := newTransactionRequest(in)
	req.ID = id
	return doItem[core.Transaction](ctx, c, http.MethodPost, "/api/transactions", req)
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	return doItem[core.Transaction](ctx, c, http.MethodPut, "/api/transactions/"+url.PathEscape(id), newTransactionRequest(in))
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
}

// GetBudget returns the stored budget, or false when the backend has none.
func (c *Client) GetBudget(ctx context.Context) (core.Budget, bool, error) {
	var env itemEnvelope[core.Budget]
	if err := c.Do(ctx, http.MethodGet, "/api/budget", nil, &env); err != nil {
		return core.Budget{}, false, err
	}
	if env.Data == nil {
		return core.Budget{}, false, nil
	}
	return *env.Data, true, nil
}

func (c *Client) SetBudget(ctx context.Context, amount decimal.Decimal) (core.Budget, error) {
	return doItem[core.Budget](ctx, c, http.MethodPut, "/api/budget", budgetRequest{Amount: json.Number(amount.String())})
}

func newTransactionRequest(in core.TransactionInput) transactionRequest {
	return transactionRequest{
		Date:       in.Date,
		Type:       in.Type,
		CategoryID: in.CategoryID,
		Amount:     json.Number(in.Amount.String()),
		Note:       in.Note,
	}
}

// doItem decodes either a bare entity or one wrapped in {"data": ...}.
func doItem[T any](ctx context.Context, c *Client, method, endpoint string, body any) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := c.Do(ctx, method, endpoint, body, &raw); err != nil {
		return zero, err
	}
	if len(raw) == 0 {
		return zero, nil
	}
	var env itemEnvelope[T]
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		return *env.Data, nil
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return zero, fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return item, nil
}

// Probe issues the cheapest authenticated request to check the token.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.ListCategories(ctx)
	return err
}
