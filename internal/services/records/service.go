// Package records implements view, add, edit and delete for registered
// entities.
package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"aspataal/internal/apperr"
	"aspataal/internal/domain/entity"
	"aspataal/internal/store/repositories"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Payload is a decoded JSON request body.
type Payload map[string]any

type Service struct {
	store    repositories.RecordStore
	validate *validator.Validate
	now      func() time.Time
}

func NewService(store repositories.RecordStore) *Service {
	return &Service{store: store, validate: validator.New(), now: time.Now}
}

// HashPassword returns the bcrypt hash stored for hashed columns.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// ValidationError lists per-field failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == apperr.ErrInvalidParameter }

// ConflictError reports a unique column value that is already taken.
type ConflictError struct {
	Column string
	Value  any
}

func (e *ConflictError) Error() string { return fmt.Sprintf("%v already exist.", e.Value) }

func (e *ConflictError) Is(target error) bool { return target == apperr.ErrConflict }

func storeErr(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
		return err
	}
	return fmt.Errorf("records %s: %w: %w", op, apperr.ErrQuery, err)
}

func viewFields(d *entity.Descriptor) []string {
	if len(d.View) > 0 {
		return d.View
	}
	return d.List
}

// View returns the view projection of one record.
func (s *Service) View(ctx context.Context, d *entity.Descriptor, rawID string) (repositories.Record, error) {
	id, err := d.Parse(d.PrimaryKey(), rawID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.FindOne(ctx, d.Table, viewFields(d), d.PrimaryKey(), id)
	if err != nil {
		return nil, storeErr("view_"+d.Name, err)
	}
	return rec, nil
}

// EditForm returns the edit projection of one record.
func (s *Service) EditForm(ctx context.Context, d *entity.Descriptor, rawID string) (repositories.Record, error) {
	if d.ReadOnly || len(d.Edit) == 0 {
		return nil, fmt.Errorf("%w: %s", apperr.ErrReadOnly, d.Name)
	}
	id, err := d.Parse(d.PrimaryKey(), rawID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.FindOne(ctx, d.Table, d.Edit, d.PrimaryKey(), id)
	if err != nil {
		return nil, storeErr("edit_"+d.Name, err)
	}
	return rec, nil
}

// Add validates and inserts a record, returning its view projection.
func (s *Service) Add(ctx context.Context, d *entity.Descriptor, p Payload) (repositories.Record, error) {
	if d.ReadOnly {
		return nil, fmt.Errorf("%w: %s", apperr.ErrReadOnly, d.Name)
	}
	values, err := s.prepare(d, p, true)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, d, values, nil); err != nil {
		return nil, err
	}
	for col, raw := range d.Defaults {
		v, err := d.Parse(col, raw)
		if err != nil {
			return nil, err
		}
		values[col] = v
	}
	if d.Stamp != "" {
		values[d.Stamp] = s.now().UTC()
	}
	if err := hashColumns(d, values); err != nil {
		return nil, err
	}

	pk := d.PrimaryKey()
	if values[pk] == nil {
		delete(values, pk)
	}
	id, err := s.store.Insert(ctx, d.Table, values, pk)
	if err != nil {
		return nil, storeErr("add_"+d.Name, err)
	}
	rec, err := s.store.FindOne(ctx, d.Table, viewFields(d), pk, id)
	if err != nil {
		return nil, storeErr("add_"+d.Name, err)
	}
	return rec, nil
}

// Update applies the supplied editable fields and returns them, minus hashed
// columns.
func (s *Service) Update(ctx context.Context, d *entity.Descriptor, rawID string, p Payload) (repositories.Record, error) {
	if d.ReadOnly || len(d.Edit) == 0 {
		return nil, fmt.Errorf("%w: %s", apperr.ErrReadOnly, d.Name)
	}
	pk := d.PrimaryKey()
	id, err := d.Parse(pk, rawID)
	if err != nil {
		return nil, err
	}
	values, err := s.prepare(d, p, false)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no editable fields supplied", apperr.ErrInvalidParameter)
	}
	if _, err := s.store.FindOne(ctx, d.Table, []string{pk}, pk, id); err != nil {
		return nil, storeErr("update_"+d.Name, err)
	}
	if err := s.checkUnique(ctx, d, values, id); err != nil {
		return nil, err
	}

	applied := make(repositories.Record, len(values))
	for k, v := range values {
		if !d.IsHashed(k) {
			applied[k] = v
		}
	}
	if err := hashColumns(d, values); err != nil {
		return nil, err
	}
	if _, err := s.store.Update(ctx, d.Table, pk, id, values); err != nil {
		return nil, storeErr("update_"+d.Name, err)
	}
	return applied, nil
}

// Delete removes the records named by a comma separated id list and returns
// the parsed ids.
func (s *Service) Delete(ctx context.Context, d *entity.Descriptor, rawIDs string) ([]any, error) {
	if d.ReadOnly {
		return nil, fmt.Errorf("%w: %s", apperr.ErrReadOnly, d.Name)
	}
	pk := d.PrimaryKey()
	var ids []any
	for _, raw := range strings.Split(rawIDs, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, err := d.Parse(pk, raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no record id", apperr.ErrInvalidParameter)
	}
	n, err := s.store.Delete(ctx, d.Table, pk, ids)
	if err != nil {
		return nil, storeErr("delete_"+d.Name, err)
	}
	if n == 0 {
		return nil, apperr.ErrNotFound
	}
	return ids, nil
}

// prepare keeps writable columns, converts them to column types and runs the
// declared rules. On insert every ruled column is checked; on update only the
// supplied ones.
func (s *Service) prepare(d *entity.Descriptor, p Payload, insert bool) (repositories.Record, error) {
	fields := map[string]string{}
	values := repositories.Record{}
	for col, raw := range p {
		if !d.Writable(col, insert) {
			continue
		}
		v, err := d.Coerce(col, raw)
		if err != nil {
			fields[col] = strings.TrimPrefix(err.Error(), apperr.ErrInvalidParameter.Error()+": ")
			continue
		}
		values[col] = v
	}

	for col, tag := range d.Rules {
		v, supplied := values[col]
		if !supplied && (!insert || !d.Writable(col, true)) {
			continue
		}
		if _, bad := fields[col]; bad {
			continue
		}
		if v == nil {
			v = ""
		}
		if err := s.validate.Var(v, tag); err != nil {
			fields[col] = ruleMessage(err)
		}
	}

	for col, key := range d.Confirm {
		if _, supplied := values[col]; !supplied {
			continue
		}
		if fmt.Sprint(p[col]) != fmt.Sprint(p[key]) {
			fields[key] = "does not match " + col
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return values, nil
}

func ruleMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	return err.Error()
}

// checkUnique rejects values of unique columns that another record already
// holds. exceptID is the record being updated, nil on insert.
func (s *Service) checkUnique(ctx context.Context, d *entity.Descriptor, values repositories.Record, exceptID any) error {
	exceptKey := ""
	if exceptID != nil {
		exceptKey = d.PrimaryKey()
	}
	for _, col := range d.Unique {
		v, ok := values[col]
		if !ok || v == nil || d.IsHashed(col) {
			continue
		}
		taken, err := s.store.Exists(ctx, d.Table, col, v, exceptKey, exceptID)
		if err != nil {
			return storeErr("unique_"+d.Name, err)
		}
		if taken {
			return &ConflictError{Column: col, Value: v}
		}
	}
	return nil
}

func hashColumns(d *entity.Descriptor, values repositories.Record) error {
	for _, col := range d.Hashed {
		plain, ok := values[col].(string)
		if !ok || plain == "" {
			continue
		}
		h, err := HashPassword(plain)
		if err != nil {
			return fmt.Errorf("hash %s: %w", col, err)
		}
		values[col] = h
	}
	return nil
}
