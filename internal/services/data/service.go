package data

import (
	"context"
	"fmt"
	"strings"

	"aspataal/internal/apperr"
	"aspataal/internal/domain/entity"
	"aspataal/internal/store/repositories"
)

// Service runs list queries for any registered entity.
type Service struct {
	store repositories.RecordStore
	opts  Options
}

// NewService creates a new data service
func NewService(store repositories.RecordStore, opts Options) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	return &Service{store: store, opts: opts}
}

// Build validates raw parameters against the descriptor and produces the
// store query. Unknown filter columns and unconvertible filter values are
// rejected; bad paging and unknown sort columns fall back to defaults.
func (s *Service) Build(d *entity.Descriptor, listing string, p ListParams) (ListRequest, repositories.ListQuery, error) {
	fields, ok := d.Listing(listing)
	if !ok {
		return ListRequest{}, repositories.ListQuery{}, fmt.Errorf("%w: %s/%s", apperr.ErrUnknownEntity, d.Name, listing)
	}

	req := ListRequest{Desc: direction(p.OrderType, s.opts.DefaultDesc)}
	req.Page, req.Limit = normalizePaging(p, s.opts)

	q := repositories.ListQuery{
		Table:    d.Table,
		Columns:  fields,
		Desc:     req.Desc,
		TieBreak: d.PrimaryKey(),
		Limit:    uint64(req.Limit),
		Offset:   uint64(req.Page-1) * uint64(req.Limit),
	}

	if name := strings.TrimSpace(p.FieldName); name != "" {
		if !d.Filterable(name) {
			return req, q, fmt.Errorf("%w: unknown field %q", apperr.ErrInvalidParameter, name)
		}
		if p.FieldValue == "" {
			return req, q, fmt.Errorf("%w: fieldvalue is required with fieldname", apperr.ErrInvalidParameter)
		}
		v, err := d.Parse(name, p.FieldValue)
		if err != nil {
			return req, q, err
		}
		req.FieldName, req.Field = name, v
		q.Filter = &repositories.Equality{Column: name, Value: v}
	}

	if term := strings.TrimSpace(p.Search); term != "" {
		req.Search = term
		if len(d.Search) > 0 {
			q.Search = &repositories.Search{Columns: d.Search, Term: term}
		}
	}

	req.OrderBy = d.DefaultOrder()
	if col := strings.TrimSpace(p.OrderBy); col != "" && d.Filterable(col) {
		req.OrderBy = col
	}
	q.OrderBy = req.OrderBy

	return req, q, nil
}

// List returns one page of an entity listing.
func (s *Service) List(ctx context.Context, d *entity.Descriptor, listing string, p ListParams) (*Page, error) {
	req, q, err := s.Build(d, listing, p)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Count(ctx, q)
	if err != nil {
		return nil, &ServiceError{Op: "count_" + d.Name, Err: err}
	}
	records, err := s.store.Fetch(ctx, q)
	if err != nil {
		return nil, &ServiceError{Op: "list_" + d.Name, Err: err}
	}
	if records == nil {
		records = []repositories.Record{}
	}

	return &Page{
		Total:       total,
		Page:        req.Page,
		Limit:       req.Limit,
		TotalPages:  totalPages(total, req.Limit),
		RecordCount: len(records),
		Records:     records,
	}, nil
}

// ServiceError represents a data service error
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return "data service " + e.Op + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is reports store failures as apperr.ErrQuery.
func (e *ServiceError) Is(target error) bool {
	return target == apperr.ErrQuery
}
