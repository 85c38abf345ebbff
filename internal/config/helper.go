// FILE: companion/internal/config/helper.go
package config

import "strings"

// flattenMap converts nested tables to dot-notation paths.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if table, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(table, path) {
				flat[subPath] = subValue
			}
			continue
		}
		flat[path] = value
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// Intermediate tables are created, replacing any leaf value in the way.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		next, isMap := current[segment].(map[string]any)
		if !isMap {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}

	current[segments[len(segments)-1]] = value
}

// isValidKeySegment reports whether s is a TOML bare key (A-Za-z0-9_-).
func isValidKeySegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !isDigit && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
