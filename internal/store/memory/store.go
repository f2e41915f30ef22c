// Package memory is an in-process RecordStore used by tests and by
// STORE_DRIVER=memory development runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"aspataal/internal/apperr"
	"aspataal/internal/store/repositories"
)

type table struct {
	rows   []repositories.Record
	nextID int64
}

// Store keeps every table as a slice of records.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

var _ repositories.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{tables: map[string]*table{}}
}

// Seed appends rows to a table. Integer values should be int64 so they compare
// like values produced by entity parsing.
func (s *Store) Seed(name string, rows ...repositories.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.table(name)
	for _, r := range rows {
		t.rows = append(t.rows, clone(r))
	}
}

func (s *Store) table(name string) *table {
	t, ok := s.tables[name]
	if !ok {
		t = &table{nextID: 1}
		s.tables[name] = t
	}
	return t
}

func (s *Store) Count(_ context.Context, q repositories.ListQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.match(q))), nil
}

func (s *Store) Fetch(_ context.Context, q repositories.ListQuery) ([]repositories.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.match(q)
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i][q.OrderBy], rows[j][q.OrderBy])
		if c == 0 && q.TieBreak != "" {
			c = compare(rows[i][q.TieBreak], rows[j][q.TieBreak])
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	start := q.Offset
	if start > uint64(len(rows)) {
		start = uint64(len(rows))
	}
	end := uint64(len(rows))
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	out := make([]repositories.Record, 0, end-start)
	for _, r := range rows[start:end] {
		out = append(out, project(r, q.Columns))
	}
	return out, nil
}

func (s *Store) match(q repositories.ListQuery) []repositories.Record {
	t, ok := s.tables[q.Table]
	if !ok {
		return nil
	}
	var out []repositories.Record
	for _, r := range t.rows {
		if q.Filter != nil && compare(r[q.Filter.Column], q.Filter.Value) != 0 {
			continue
		}
		if q.Search != nil && !contains(r, q.Search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func contains(r repositories.Record, s *repositories.Search) bool {
	term := strings.ToLower(s.Term)
	for _, col := range s.Columns {
		v, ok := r[col].(string)
		if ok && strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func (s *Store) FindOne(_ context.Context, name string, columns []string, key string, id any) (repositories.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if ok {
		for _, r := range t.rows {
			if compare(r[key], id) == 0 {
				return project(r, columns), nil
			}
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *Store) Insert(_ context.Context, name string, values repositories.Record, key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.table(name)
	row := clone(values)
	if row[key] == nil {
		for _, r := range t.rows {
			if n, ok := r[key].(int64); ok && n >= t.nextID {
				t.nextID = n + 1
			}
		}
		row[key] = t.nextID
		t.nextID++
	}
	t.rows = append(t.rows, row)
	return row[key], nil
}

func (s *Store) Update(_ context.Context, name string, key string, id any, values repositories.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return 0, nil
	}
	var n int64
	for _, r := range t.rows {
		if compare(r[key], id) != 0 {
			continue
		}
		for k, v := range values {
			r[k] = v
		}
		n++
	}
	return n, nil
}

func (s *Store) Delete(_ context.Context, name string, key string, ids []any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return 0, nil
	}
	kept := t.rows[:0]
	var n int64
	for _, r := range t.rows {
		if anyEqual(r[key], ids) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return n, nil
}

func (s *Store) Exists(_ context.Context, name, column string, value any, exceptKey string, exceptID any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return false, nil
	}
	for _, r := range t.rows {
		if exceptKey != "" && compare(r[exceptKey], exceptID) == 0 {
			continue
		}
		if compare(r[column], value) == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Options(_ context.Context, q repositories.OptionQuery) ([]repositories.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[q.Table]
	if !ok {
		return []repositories.Option{}, nil
	}
	rows := make([]repositories.Record, len(t.rows))
	copy(rows, t.rows)
	if q.OrderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			c := compare(rows[i][q.OrderBy], rows[j][q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	out := make([]repositories.Option, 0, len(rows))
	seen := map[string]bool{}
	for _, r := range rows {
		if q.Distinct {
			k := fmt.Sprintf("%v\x00%v", r[q.Value], r[q.Label])
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, repositories.Option{Value: r[q.Value], Label: r[q.Label]})
	}
	return out, nil
}

func anyEqual(v any, ids []any) bool {
	for _, id := range ids {
		if compare(v, id) == 0 {
			return true
		}
	}
	return false
}

func project(r repositories.Record, columns []string) repositories.Record {
	out := make(repositories.Record, len(columns))
	for _, c := range columns {
		out[c] = r[c]
	}
	return out
}

func clone(r repositories.Record) repositories.Record {
	out := make(repositories.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// compare orders nil first, numbers numerically, times chronologically and
// everything else by its string form.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
