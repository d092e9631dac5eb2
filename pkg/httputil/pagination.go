package httputil

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Paginated is the envelope every list endpoint returns.
type Paginated struct {
	Items       interface{} `json:"items"`
	Total       int64       `json:"total"`
	NumOfPages  int64       `json:"numOfPages"`
	CurrentPage int64       `json:"currentPage"`
}

// NewPaginated wraps items in the standard list envelope.
func NewPaginated(items interface{}, total, page, limit int64) Paginated {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return Paginated{
		Items:       items,
		Total:       total,
		NumOfPages:  pages,
		CurrentPage: page,
	}
}

// PageParams reads page/limit query parameters, applying defaults and caps.
func PageParams(r *http.Request) (page, limit int64) {
	page = defaultPage
	limit = defaultLimit

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
