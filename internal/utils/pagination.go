// Package utils holds small parsing helpers shared by the HTTP handlers and
// the CLI.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
// Surrounding whitespace is not trimmed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageBounds parses page and limit query values. Missing or invalid values
// take the defaults; page is at least 1 and limit is within [1, maxLimit].
func PageBounds(pageStr, limitStr string, defLimit, maxLimit int) (page, limit int) {
	page = AtoiDefault(pageStr, 1)
	if page < 1 {
		page = 1
	}
	limit = AtoiDefault(limitStr, defLimit)
	if limit < 1 {
		limit = 1
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// TotalPages is ceil(total/limit), 0 for a non-positive limit.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// OptionalBool parses a tri-state flag: "" is nil, true/false (and the
// forms strconv.ParseBool accepts) are returned as a pointer.
func OptionalBool(s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
	return &b, nil
}
