package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// maxListValues keeps IN lists well under SQLite's bound-variable limit.
const maxListValues = 1000

// parseIntList reads a comma-separated list of integers from the query
// string. A missing or empty value yields nil.
func parseIntList(r *http.Request, key string) ([]int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxListValues {
		return nil, fmt.Errorf("%s: at most %d values allowed, got %d", key, maxListValues, len(parts))
	}
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("%s: empty value in list %q", key, raw)
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, p)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseLimit returns 0 when limit is absent so the configured default
// applies.
func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("limit: expected a positive integer, got %q", raw)
	}
	return v, nil
}
