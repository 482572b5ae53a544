package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

type categoryBody struct {
	Name     string `json:"name"`
	ColorHex string `json:"color_hex"`
}

type transactionBody struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	Type       core.TxType     `json:"type"`
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.store.listCategories()})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if !decodeBody(w, r, &body) {
		return
	}
	in := core.CategoryInput{Name: strings.TrimSpace(body.Name), ColorHex: body.ColorHex}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.store.createCategory(in))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if !decodeBody(w, r, &body) {
		return
	}
	in := core.CategoryInput{Name: strings.TrimSpace(body.Name), ColorHex: body.ColorHex}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.store.updateCategory(chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := s.store.deleteCategory(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, core.ErrProtectedCategory):
		writeError(w, http.StatusBadRequest, "default category cannot be deleted")
	case err != nil:
		writeError(w, http.StatusNotFound, "category not found")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.store.listTransactions()})
}

// validTransaction checks the body the way the client does and additionally
// that the category exists.
func (s *Server) validTransaction(w http.ResponseWriter, body transactionBody) bool {
	in := core.TransactionInput{
		Date:       body.Date,
		Type:       body.Type,
		CategoryID: body.CategoryID,
		Amount:     body.Amount,
		Note:       body.Note,
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if !s.store.hasCategory(body.CategoryID) {
		writeError(w, http.StatusBadRequest, "category does not exist")
		return false
	}
	return true
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body transactionBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ID == "" {
		body.ID = core.NewTransactionID(s.now())
	}
	if !s.validTransaction(w, body) {
		return
	}
	tx, err := s.store.createTransaction(txRecord(body))
	if err != nil {
		writeError(w, http.StatusConflict, "transaction already exists")
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldTransactionID, tx.ID, log.FieldAmount, tx.Amount.String())
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var body transactionBody
	if !decodeBody(w, r, &body) {
		return
	}
	body.ID = chi.URLParam(r, "id")
	if !s.validTransaction(w, body) {
		return
	}
	tx, err := s.store.updateTransaction(txRecord(body))
	if err != nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.deleteTransaction(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.store.getBudget()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount *decimal.Decimal `json:"amount"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}
	if err := core.ValidateBudgetAmount(*body.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.store.setBudget(*body.Amount)})
}
