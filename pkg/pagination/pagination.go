package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit within int range for any limit up to MaxLimit.
	MaxPage = math.MaxInt / MaxLimit
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns the first page at the default size.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// FromRequest reads ?page= and ?limit= from an HTTP request. Unparsable or
// non-positive values fall back to defaults; limits above MaxLimit and pages
// above MaxPage are capped.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = min(v, MaxPage)
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 {
			p.Limit = min(v, MaxLimit)
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Meta describes where a page sits within the full result set.
type Meta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalUsers"`
	ItemsPerPage int  `json:"usersPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewMeta computes page metadata for totalCount items.
func NewMeta(totalCount int, params Params) Meta {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	totalPages := totalCount / limit
	if totalCount%limit > 0 {
		totalPages++
	}

	return Meta{
		CurrentPage:  params.Page,
		TotalPages:   totalPages,
		TotalItems:   totalCount,
		ItemsPerPage: limit,
		HasNextPage:  params.Page < totalPages,
		HasPrevPage:  params.Page > 1,
	}
}
