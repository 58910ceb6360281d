package helper

import (
	"strings"

	"github.com/google/uuid"
)

// ParseIDList menerima []string / []any / "a,b,c" dan mengembalikan list
// yang sudah di-trim, tanpa string kosong dan tanpa duplikat.
func ParseIDList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return UniqueStrings(out)
}

// UniqueStrings keeps the first occurrence order.
func UniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func ContainsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func RemoveString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

// ParseUUIDParam parses a path/query id; the error is a 400 fiber error.
func ParseUUIDParam(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, badRequest("invalid " + field)
	}
	return id, nil
}

// ShortID returns the first 8 hex chars of id.
func ShortID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
