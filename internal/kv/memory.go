package kv

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. It is used when no redis server is
// reachable and in tests. Expiry is recorded but only checked on read.
type Memory struct {
	mu      sync.RWMutex
	strings map[string]entry
	hashes  map[string]map[string]string
	now     func() time.Time
}

type entry struct {
	value   []byte
	expires time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string]entry),
		hashes:  make(map[string]map[string]string),
		now:     time.Now,
	}
}

// Get returns the bytes at key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.strings[key]
	if !ok || (!e.expires.IsZero() && m.now().After(e.expires)) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value at key.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.strings[key] = e
	return nil
}

// HGet returns one hash field.
func (m *Memory) HGet(_ context.Context, key, field string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.hashes[key][field]
	if !ok {
		return "", fmt.Errorf("hget %s %s: %w", key, field, ErrNotFound)
	}
	return v, nil
}

// HGetAll returns a copy of the hash.
func (m *Memory) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

// HSet writes hash fields.
func (m *Memory) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// Keys returns the sorted keys matching a glob pattern.
func (m *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	add := func(k string) error {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			keys = append(keys, k)
		}
		return nil
	}
	for k := range m.strings {
		if err := add(k); err != nil {
			return nil, err
		}
	}
	for k := range m.hashes {
		if _, dup := m.strings[k]; dup {
			continue
		}
		if err := add(k); err != nil {
			return nil, err
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
