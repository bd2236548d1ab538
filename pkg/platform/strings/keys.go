// Package strings holds small string helpers shared by the command line tools.
package strings

import (
	"strings"
	"unicode"
)

// NormalizeKeys turns loosely typed identifiers into snake_case keys. Each value
// is trimmed and lowercased, and runs of spaces or hyphens become a single
// underscore, so "Low C3 ", "low-c3" and "low_c3" all yield "low_c3". Blank
// values are dropped and the first occurrence of each key wins.
func NormalizeKeys(values []string) []string {
	seen := make(map[string]bool, len(values))
	keys := make([]string, 0, len(values))
	for _, v := range values {
		key := toKey(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

func toKey(v string) string {
	fields := strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	return strings.Join(fields, "_")
}
