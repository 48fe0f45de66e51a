package handler

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type pageParams struct {
	Page  int
	Limit int
}

// parsePage validates the page/limit query parameters before anything is
// fetched; invalid values fail the request instead of being clamped
// silently.
func parsePage(r *http.Request) (pageParams, error) {
	p := pageParams{Page: defaultPage, Limit: defaultLimit}

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be a positive integer")
		}
		p.Page = n
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, fmt.Errorf("limit must be a positive integer")
		}
		if n > maxLimit {
			return p, fmt.Errorf("limit must not exceed %d", maxLimit)
		}
		p.Limit = n
	}
	return p, nil
}

// paginate slices the fetched result set to the requested window. A page
// past the end returns an empty slice, not an error.
func paginate[T any](items []T, p pageParams) []T {
	start := (p.Page - 1) * p.Limit
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
