package middlewarex

import (
	"context"

	"aspataal/internal/domain/entity"
)

type ctxKey string

const (
	ctxEntity ctxKey = "entity"
)

func WithEntity(ctx context.Context, d *entity.Descriptor) context.Context {
	return context.WithValue(ctx, ctxEntity, d)
}

func Entity(ctx context.Context) (*entity.Descriptor, bool) {
	d, ok := ctx.Value(ctxEntity).(*entity.Descriptor)
	return d, ok
}
