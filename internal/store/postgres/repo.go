package postgres

import (
	"context"

	"aspataal/internal/store/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repo struct {
	db DB
}

var (
	_ repositories.RecordStore    = (*Repo)(nil)
	_ repositories.DashboardStore = (*Repo)(nil)
)

func NewRepo(db DB) *Repo { return &Repo{db: db} }
