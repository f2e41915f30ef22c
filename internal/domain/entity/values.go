package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"aspataal/internal/apperr"
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parse converts a raw path or query string into the Go value stored in col.
func (d *Descriptor) Parse(col, raw string) (any, error) {
	typ, ok := d.Columns[col]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", apperr.ErrInvalidParameter, col)
	}
	raw = strings.TrimSpace(raw)
	switch typ {
	case TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", apperr.ErrInvalidParameter, col)
		}
		return n, nil
	case TypeDecimal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %s must be numeric", apperr.ErrInvalidParameter, col)
		}
		return f, nil
	case TypeDatetime:
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%w: %s must be a date", apperr.ErrInvalidParameter, col)
	default:
		return raw, nil
	}
}

// Coerce converts a decoded JSON value into the Go value stored in col.
// nil stays nil.
func (d *Descriptor) Coerce(col string, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if x == "" && d.Type(col) != TypeString {
			return nil, nil
		}
		return d.Parse(col, x)
	case json.Number:
		return d.Parse(col, x.String())
	case float64:
		switch d.Type(col) {
		case TypeInt:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("%w: %s must be an integer", apperr.ErrInvalidParameter, col)
			}
			return int64(x), nil
		case TypeDecimal:
			return x, nil
		case TypeString:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		}
	case bool:
		if d.Type(col) == TypeString {
			return strconv.FormatBool(x), nil
		}
	}
	if !d.HasColumn(col) {
		return nil, fmt.Errorf("%w: unknown field %q", apperr.ErrInvalidParameter, col)
	}
	return nil, fmt.Errorf("%w: unsupported value for %s", apperr.ErrInvalidParameter, col)
}
