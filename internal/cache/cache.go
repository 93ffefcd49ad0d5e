// Package cache holds the in-memory sets and tables shared across one load pass
package cache

// Cache defines the interface for pass-scoped caching
type Cache interface {
	Add(key string, value string) bool
	Len() int
}

// Key builds a namespaced cache key
func Key(namespace, id string) string {
	return "wdgraph:" + namespace + ":" + id
}
