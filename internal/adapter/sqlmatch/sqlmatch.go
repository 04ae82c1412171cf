// Package sqlmatch builds LIKE patterns for case-insensitive substring search.
package sqlmatch

import "strings"

// Escape is the escape character the generated patterns use. Queries must
// declare it with ESCAPE '\'.
const Escape = `\`

var escaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains returns a pattern matching any value that contains query, compared
// against LOWER(column). Wildcards in query match literally.
func Contains(query string) string {
	return "%" + escaper.Replace(strings.ToLower(query)) + "%"
}
