package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Handlers only — routes remain in cmd/gateway/main.go.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// idParam parses a positive integer id out of a string.
func idParam(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// intList parses "1,2,3" query values into ids, dropping junk.
func intList(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		if id, ok := idParam(strings.TrimSpace(p)); ok {
			out = append(out, id)
		}
	}
	return out
}

// pagination reads page/page_size with the bank's defaults.
func pagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	ps := r.URL.Query().Get("page_size")
	if ps == "" {
		ps = r.URL.Query().Get("limit")
	}
	if v, err := strconv.Atoi(ps); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}
