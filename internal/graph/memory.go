package graph

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// MemoryStore keeps nodes in memory. It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nodes  map[int64]*Node
	closed bool
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[int64]*Node)}
}

func (s *MemoryStore) NodeExists(ctx context.Context, key int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	_, ok := s.nodes[key]
	return ok, nil
}

func (s *MemoryStore) CreateNode(ctx context.Context, key int64, props map[string]any, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.nodes[key]; ok {
		return fmt.Errorf("%w: %d", ErrNodeExists, key)
	}
	s.nodes[key] = &Node{Key: key, Label: label, Properties: maps.Clone(props)}
	return nil
}

func (s *MemoryStore) SetNodeProperties(ctx context.Context, key int64, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	node, ok := s.nodes[key]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}
	node.Properties = maps.Clone(props)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

// Node returns a copy of the node stored under key
func (s *MemoryStore) Node(ctx context.Context, key int64) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}
	return &Node{Key: node.Key, Label: node.Label, Properties: maps.Clone(node.Properties)}, nil
}

// CountNodes returns the number of stored nodes
func (s *MemoryStore) CountNodes(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.nodes)), nil
}
