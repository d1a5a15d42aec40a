// Package utils holds small query-string parsing helpers shared by the HTTP
// handlers. They are transport-adjacent but gin-free so list endpoints and
// tests can use them directly on raw values.
package utils

import "strconv"

// API-wide pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QueryInt parses a query-string integer. Empty or malformed input yields
// def; the result is clamped to [lo, hi].
func QueryInt(s string, def, lo, hi int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		n = def
	}
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return n
}

// PageParams interprets raw page and page_size query values with the
// API-wide defaults: pages start at 1, page size defaults to
// DefaultPageSize and caps at MaxPageSize.
func PageParams(pageStr, sizeStr string) (page, pageSize int) {
	page = QueryInt(pageStr, 1, 1, 1<<30)
	pageSize = QueryInt(sizeStr, DefaultPageSize, 1, MaxPageSize)
	return page, pageSize
}
