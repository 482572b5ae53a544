// Package memory is an in-process RowAppender used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"moneytracker/internal/sheets"
)

var _ sheets.RowAppender = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]any
}

func New() *Store {
	return &Store{sheets: map[string][][]any{}}
}

// AppendRows stores rows and returns a synthetic A1 range reference.
func (s *Store) AppendRows(_ context.Context, sheet string, header []any, rows [][]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sheets[sheet]
	if !ok && len(header) > 0 {
		existing = append(existing, header)
	}
	first := len(existing) + 1
	existing = append(existing, rows...)
	s.sheets[sheet] = existing
	return fmt.Sprintf("%s!A%d:A%d", sheet, first, len(existing)), nil
}

// Rows returns a copy of everything written to sheet, header included.
func (s *Store) Rows(sheet string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.sheets[sheet]...)
}
