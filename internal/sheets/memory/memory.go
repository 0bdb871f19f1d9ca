package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ports "fintrack/internal/sheets"
)

var (
	_ ports.TableWriter = (*Store)(nil)
	_ ports.TableReader = (*Store)(nil)
)

// Store keeps spreadsheet tabs in memory. It backs the mirror worker when no
// spreadsheet is configured and in tests.
type Store struct {
	mu     sync.Mutex
	sheets map[string][][]string
	writes int
}

func New() *Store {
	return &Store{sheets: make(map[string][][]string)}
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// ReplaceSheet overwrites the tab with a copy of rows.
func (s *Store) ReplaceSheet(_ context.Context, title string, rows [][]string) error {
	if title == "" {
		return fmt.Errorf("sheet title is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[title] = copyRows(rows)
	s.writes++
	return nil
}

// ReadSheet returns a copy of the tab, or an error when it does not exist.
func (s *Store) ReadSheet(_ context.Context, title string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[title]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", title)
	}
	return copyRows(rows), nil
}

// Titles lists existing tabs in name order.
func (s *Store) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.sheets))
	for t := range s.sheets {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Writes counts ReplaceSheet calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
