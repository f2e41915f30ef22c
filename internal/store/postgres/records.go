package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aspataal/internal/apperr"
	"aspataal/internal/store/repositories"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ident quotes a descriptor-declared table or column name.
func ident(name string) string { return pgx.Identifier{name}.Sanitize() }

func idents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ident(n)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func listWhere(q repositories.ListQuery) sq.And {
	var where sq.And
	if q.Filter != nil {
		where = append(where, sq.Eq{ident(q.Filter.Column): q.Filter.Value})
	}
	if q.Search != nil && q.Search.Term != "" && len(q.Search.Columns) > 0 {
		pattern := containsPattern(q.Search.Term)
		var or sq.Or
		for _, col := range q.Search.Columns {
			or = append(or, sq.ILike{ident(col): pattern})
		}
		where = append(where, or)
	}
	return where
}

func countQuery(q repositories.ListQuery) sq.SelectBuilder {
	sb := psql.Select("COUNT(*)").From(ident(q.Table))
	if where := listWhere(q); len(where) > 0 {
		sb = sb.Where(where)
	}
	return sb
}

func fetchQuery(q repositories.ListQuery) sq.SelectBuilder {
	sb := psql.Select(idents(q.Columns)...).From(ident(q.Table))
	if where := listWhere(q); len(where) > 0 {
		sb = sb.Where(where)
	}
	dir := " ASC"
	if q.Desc {
		dir = " DESC"
	}
	order := []string{ident(q.OrderBy) + dir}
	if q.TieBreak != "" && q.TieBreak != q.OrderBy {
		order = append(order, ident(q.TieBreak)+dir)
	}
	return sb.OrderBy(order...).Limit(q.Limit).Offset(q.Offset)
}

func (r *Repo) Count(ctx context.Context, q repositories.ListQuery) (int64, error) {
	sqlStr, args, err := countQuery(q).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) Fetch(ctx context.Context, q repositories.ListQuery) ([]repositories.Record, error) {
	sqlStr, args, err := fetchQuery(q).ToSql()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, sqlStr, args)
}

func (r *Repo) collect(ctx context.Context, sqlStr string, args []any) ([]repositories.Record, error) {
	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]repositories.Record, len(maps))
	for i, m := range maps {
		out[i] = normalize(m)
	}
	return out, nil
}

// normalize turns driver-specific values into plain JSON-friendly ones.
func normalize(m map[string]any) repositories.Record {
	for k, v := range m {
		if n, ok := v.(pgtype.Numeric); ok {
			if !n.Valid {
				m[k] = nil
				continue
			}
			if f, err := n.Float64Value(); err == nil {
				m[k] = f.Float64
			}
		}
	}
	return repositories.Record(m)
}

func (r *Repo) FindOne(ctx context.Context, table string, columns []string, key string, id any) (repositories.Record, error) {
	sqlStr, args, err := psql.Select(idents(columns)...).
		From(ident(table)).
		Where(sq.Eq{ident(key): id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return normalize(m), nil
}

func quoted(values repositories.Record) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[ident(k)] = v
	}
	return out
}

func insertQuery(table string, values repositories.Record, key string) sq.InsertBuilder {
	return psql.Insert(ident(table)).SetMap(quoted(values)).Suffix("RETURNING " + ident(key))
}

func (r *Repo) Insert(ctx context.Context, table string, values repositories.Record, key string) (any, error) {
	sqlStr, args, err := insertQuery(table, values, key).ToSql()
	if err != nil {
		return nil, err
	}
	var id any
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		return nil, translate(err)
	}
	return id, nil
}

func (r *Repo) Update(ctx context.Context, table string, key string, id any, values repositories.Record) (int64, error) {
	sqlStr, args, err := psql.Update(ident(table)).
		SetMap(quoted(values)).
		Where(sq.Eq{ident(key): id}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) Delete(ctx context.Context, table string, key string, ids []any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	sqlStr, args, err := psql.Delete(ident(table)).Where(sq.Eq{ident(key): ids}).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func existsQuery(table, column string, value any, exceptKey string, exceptID any) sq.SelectBuilder {
	sb := psql.Select("1").From(ident(table)).Where(sq.Eq{ident(column): value})
	if exceptKey != "" {
		sb = sb.Where(sq.NotEq{ident(exceptKey): exceptID})
	}
	return sb.Limit(1).Prefix("SELECT EXISTS (").Suffix(")")
}

func (r *Repo) Exists(ctx context.Context, table, column string, value any, exceptKey string, exceptID any) (bool, error) {
	sqlStr, args, err := existsQuery(table, column, value, exceptKey, exceptID).ToSql()
	if err != nil {
		return false, err
	}
	var ok bool
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func optionsQuery(q repositories.OptionQuery) sq.SelectBuilder {
	sb := psql.Select(
		fmt.Sprintf("%s AS value", ident(q.Value)),
		fmt.Sprintf("%s AS label", ident(q.Label)),
	).From(ident(q.Table))
	if q.Distinct {
		sb = sb.Distinct()
	}
	if q.OrderBy != "" {
		dir := " ASC"
		if q.Desc {
			dir = " DESC"
		}
		sb = sb.OrderBy(ident(q.OrderBy) + dir)
	}
	return sb
}

func (r *Repo) Options(ctx context.Context, q repositories.OptionQuery) ([]repositories.Option, error) {
	sqlStr, args, err := optionsQuery(q).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repositories.Option, error) {
		var o repositories.Option
		err := row.Scan(&o.Value, &o.Label)
		return o, err
	})
}

// uniqueViolation is the SQLSTATE of a unique constraint failure.
const uniqueViolation = "23505"

// translate maps a unique violation that slipped past the pre-write check
// onto apperr.ErrConflict.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", apperr.ErrConflict, pgErr.Detail)
	}
	return err
}
