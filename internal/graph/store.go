// Package graph provides the property-graph node stores records are loaded into
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned when a store is used after Close
	ErrClosed = errors.New("store is closed")

	// ErrNodeExists is returned when creating a node whose key is taken
	ErrNodeExists = errors.New("node already exists")

	// ErrNodeNotFound is returned when updating or reading a missing node
	ErrNodeNotFound = errors.New("node not found")
)

// Store is the node-level interface of the graph store.
// Implementations are used by a single writer goroutine.
type Store interface {
	// NodeExists reports whether a node with key exists
	NodeExists(ctx context.Context, key int64) (bool, error)

	// CreateNode creates a node with the given properties and label
	CreateNode(ctx context.Context, key int64, props map[string]any, label string) error

	// SetNodeProperties replaces all properties of an existing node.
	// Label and relationships are left untouched.
	SetNodeProperties(ctx context.Context, key int64, props map[string]any) error

	// Close flushes pending writes and releases the store. It must be called exactly once.
	Close() error
}

// Node is a stored node, as read back for inspection
type Node struct {
	Key        int64
	Label      string
	Properties map[string]any
}

// Reader reads nodes back. Both built-in stores implement it.
type Reader interface {
	Node(ctx context.Context, key int64) (*Node, error)
	CountNodes(ctx context.Context) (int64, error)
}

// Options configures Open
type Options struct {
	Driver    string // sqlite, memory
	Path      string
	BatchSize int
}

// Open opens the store selected by opts.Driver
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "sqlite", "":
		return OpenSQLite(ctx, opts.Path, opts.BatchSize)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s (supported: sqlite, memory)", opts.Driver)
	}
}
