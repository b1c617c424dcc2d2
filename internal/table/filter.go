package table

import "strings"

// Filter keeps rows where term is a case-insensitive substring of at least
// one of fields. An empty term keeps everything.
func Filter[T any](rows []T, term string, fields ...func(T) string) []T {
	out := make([]T, 0, len(rows))
	if term == "" {
		return append(out, rows...)
	}
	needle := strings.ToLower(term)
	for _, row := range rows {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(row)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
