package data

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"aspataal/internal/store/repositories"
)

// Query string keys of a list request.
const (
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamOrderBy   = "orderby"
	ParamOrderType = "ordertype"
	ParamSearch    = "search"
)

const DefaultPage = 1

// ListParams are the raw, untrusted inputs of a list call.
type ListParams struct {
	Page       string
	Limit      string
	OrderBy    string
	OrderType  string
	Search     string
	FieldName  string
	FieldValue string
}

// ParamsFromQuery reads the list parameters from a query string. The path
// filter is supplied separately by the router.
func ParamsFromQuery(q url.Values, fieldName, fieldValue string) ListParams {
	return ListParams{
		Page:       q.Get(ParamPage),
		Limit:      q.Get(ParamLimit),
		OrderBy:    q.Get(ParamOrderBy),
		OrderType:  q.Get(ParamOrderType),
		Search:     q.Get(ParamSearch),
		FieldName:  fieldName,
		FieldValue: fieldValue,
	}
}

// ListRequest represents a paginated list request
type ListRequest struct {
	Page      int
	Limit     int
	OrderBy   string
	Desc      bool
	Search    string
	FieldName string
	Field     any
}

// Options tune pagination defaults.
type Options struct {
	DefaultLimit int
	MaxLimit     int  // 0 means unbounded
	DefaultDesc  bool // direction when ordertype is absent or unknown
}

// positive parses s, returning fallback for anything that is not a positive
// integer.
func positive(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// normalizePaging clamps page and limit to usable values.
func normalizePaging(p ListParams, opts Options) (page, limit int) {
	page = positive(p.Page, DefaultPage)
	limit = positive(p.Limit, opts.DefaultLimit)
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		limit = opts.MaxLimit
	}
	// keep (page-1)*limit within int64
	if page > math.MaxInt64/limit {
		page = math.MaxInt64 / limit
	}
	return page, limit
}

// direction resolves ordertype; anything but asc/desc falls back to def.
func direction(orderType string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(orderType)) {
	case "asc":
		return false
	case "desc":
		return true
	}
	return def
}

// Page is the list response envelope.
type Page struct {
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Limit       int                   `json:"limit"`
	TotalPages  int64                 `json:"total_pages"`
	RecordCount int                   `json:"record_count"`
	Records     []repositories.Record `json:"records"`
}

func totalPages(total int64, limit int) int64 {
	if limit <= 0 || total == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
