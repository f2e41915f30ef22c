package repositories

import (
	"context"
	"errors"
	"time"
)

// Record is one row keyed by column name.
type Record map[string]any

// Equality is a single column = value predicate.
type Equality struct {
	Column string
	Value  any
}

// Search is a case-insensitive contains match OR-ed across string columns.
type Search struct {
	Columns []string
	Term    string
}

// ListQuery is a validated list request ready for a store. Every column in it
// has already been checked against the entity descriptor.
type ListQuery struct {
	Table    string
	Columns  []string
	Filter   *Equality
	Search   *Search
	OrderBy  string
	Desc     bool
	TieBreak string // primary key appended to ORDER BY for a stable page order
	Limit    uint64
	Offset   uint64
}

// OptionQuery selects value/label pairs for a form select.
type OptionQuery struct {
	Table    string
	Value    string
	Label    string
	Distinct bool
	OrderBy  string
	Desc     bool
}

// Option is one value/label pair.
type Option struct {
	Value any `json:"value"`
	Label any `json:"label"`
}

// RecordStore defines the contract for generic table access
type RecordStore interface {
	Count(ctx context.Context, q ListQuery) (int64, error)
	Fetch(ctx context.Context, q ListQuery) ([]Record, error)
	FindOne(ctx context.Context, table string, columns []string, key string, id any) (Record, error)
	Insert(ctx context.Context, table string, values Record, key string) (any, error)
	Update(ctx context.Context, table string, key string, id any, values Record) (int64, error)
	Delete(ctx context.Context, table string, key string, ids []any) (int64, error)
	// Exists reports whether a row has column = value; when exceptKey is set
	// the row whose exceptKey equals exceptID is ignored.
	Exists(ctx context.Context, table, column string, value any, exceptKey string, exceptID any) (bool, error)
	Options(ctx context.Context, q OptionQuery) ([]Option, error)
}

// DashboardStore computes the named home-page aggregates.
type DashboardStore interface {
	Dashboard(ctx context.Context, name string) (any, error)
	DashboardNames() []string
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
