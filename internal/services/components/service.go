// Package components serves the data behind form widgets and the home page:
// select option lists, uniqueness probes and dashboard aggregates.
package components

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aspataal/internal/apperr"
	"aspataal/internal/domain/entity"
	"aspataal/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

const cachePrefix = "dashboard:"

type Service struct {
	registry   *entity.Registry
	store      repositories.RecordStore
	dashboards repositories.DashboardStore // nil when the backend has no aggregates
	cache      repositories.Cache          // nil disables caching
	ttl        time.Duration
}

// NewService wires the components service. dashboards and cache may be nil.
func NewService(reg *entity.Registry, store repositories.RecordStore, dashboards repositories.DashboardStore, cache repositories.Cache, ttl time.Duration) *Service {
	return &Service{registry: reg, store: store, dashboards: dashboards, cache: cache, ttl: ttl}
}

// Options returns the value/label pairs of a named option list.
func (s *Service) Options(ctx context.Context, name string) ([]repositories.Option, error) {
	o, d, err := s.registry.Option(name)
	if err != nil {
		return nil, err
	}
	opts, err := s.store.Options(ctx, repositories.OptionQuery{
		Table:    d.Table,
		Value:    o.Value,
		Label:    o.Label,
		Distinct: o.Distinct,
		OrderBy:  o.OrderBy,
		Desc:     o.Desc,
	})
	if err != nil {
		return nil, fmt.Errorf("options %s: %w: %w", name, apperr.ErrQuery, err)
	}
	if opts == nil {
		opts = []repositories.Option{}
	}
	return opts, nil
}

// Exists reports whether any record of entityName holds value in column.
// Only unique columns may be probed.
func (s *Service) Exists(ctx context.Context, entityName, column, value string) (bool, error) {
	d, err := s.registry.Get(entityName)
	if err != nil {
		return false, err
	}
	if !d.IsUnique(column) {
		return false, fmt.Errorf("%w: %s is not a unique field of %s", apperr.ErrInvalidParameter, column, entityName)
	}
	v, err := d.Parse(column, value)
	if err != nil {
		return false, err
	}
	ok, err := s.store.Exists(ctx, d.Table, column, v, "", nil)
	if err != nil {
		return false, fmt.Errorf("exists %s.%s: %w: %w", entityName, column, apperr.ErrQuery, err)
	}
	return ok, nil
}

// Dashboard returns the JSON encoded aggregate, served from the cache when
// present.
func (s *Service) Dashboard(ctx context.Context, name string) (json.RawMessage, error) {
	if s.dashboards == nil {
		return nil, fmt.Errorf("%w: dashboard %s", apperr.ErrUnknownEntity, name)
	}
	if s.cache != nil {
		b, err := s.cache.Get(ctx, cachePrefix+name)
		switch {
		case err == nil:
			return b, nil
		case !errors.Is(err, repositories.ErrCacheMiss):
			log.Warn().Err(err).Str("dashboard", name).Msg("dashboard cache read failed")
		}
	}
	return s.compute(ctx, name)
}

// Refresh recomputes every dashboard aggregate into the cache.
func (s *Service) Refresh(ctx context.Context) error {
	if s.dashboards == nil || s.cache == nil {
		return nil
	}
	var errs []error
	for _, name := range s.dashboards.DashboardNames() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.compute(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) compute(ctx context.Context, name string) (json.RawMessage, error) {
	v, err := s.dashboards.Dashboard(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownEntity) {
			return nil, err
		}
		return nil, fmt.Errorf("dashboard %s: %w: %w", name, apperr.ErrQuery, err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode dashboard %s: %w", name, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cachePrefix+name, b, s.ttl); err != nil {
			log.Warn().Err(err).Str("dashboard", name).Msg("dashboard cache write failed")
		}
	}
	return b, nil
}
