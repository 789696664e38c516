package adapters

import "strings"

// NameKey is the lookup key for an index name: trimmed and lower-cased.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
