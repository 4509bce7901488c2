package model

import (
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// DefaultSort is used when no sort is requested or the requested column
	// is not in the caller's allow-list.
	DefaultSort = "created_at"
)

// PageRequest is a validated page/limit/sort triple.
type PageRequest struct {
	Page  int
	Limit int
	Sort  string
	Desc  bool
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int { return (p.Page - 1) * p.Limit }

// DefaultPageRequest returns page 1, limit 20, newest first.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: DefaultPage, Limit: DefaultLimit, Sort: DefaultSort, Desc: true}
}

// ParsePageRequest validates raw query values. Empty page and limit take the
// defaults. Malformed or out-of-range values fail with *ErrValidation instead
// of being clamped. sort may be "col", "-col" or "col:asc|desc"; a column
// outside allowed falls back to created_at desc.
func ParsePageRequest(page, limit, sort string, allowed []string) (PageRequest, error) {
	req := DefaultPageRequest()

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return PageRequest{}, Invalid("page must be a positive integer")
		}
		req.Page = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxLimit {
			return PageRequest{}, Invalid("limit must be between 1 and 100")
		}
		req.Limit = n
	}

	req.Sort, req.Desc = parseSort(sort, allowed)
	return req, nil
}

func parseSort(raw string, allowed []string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, true
	}

	col, desc := raw, true
	if strings.HasPrefix(col, "-") {
		col = col[1:]
	} else if name, dir, ok := strings.Cut(col, ":"); ok {
		col = name
		desc = !strings.EqualFold(dir, "asc")
	} else {
		desc = false
	}

	if !slices.Contains(allowed, col) {
		return DefaultSort, true
	}
	return col, desc
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Current int   `json:"current"`
	Limit   int   `json:"limit"`
	Records int64 `json:"records"`
	Pages   int64 `json:"pages"`
}

// Page is the list envelope returned by every listing endpoint.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage builds the envelope for items out of total matching records.
// Data is never nil so an empty page serialises as [].
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	var pages int64
	if req.Limit > 0 {
		pages = (total + int64(req.Limit) - 1) / int64(req.Limit)
	}
	return Page[T]{
		Data: items,
		Pagination: Pagination{
			Current: req.Page,
			Limit:   req.Limit,
			Records: total,
			Pages:   pages,
		},
	}
}
