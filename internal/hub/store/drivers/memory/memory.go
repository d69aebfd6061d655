// Package memory is a map-backed KV driver for tests and throwaway runs.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aussiebroadwan/hub/internal/hub/store"
)

func init() {
	store.Register("memory", func(store.DriverConfig) (store.KV, error) {
		return New(), nil
	})
}

type Driver struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ store.KV = (*Driver)(nil)

func New() *Driver {
	return &Driver{data: make(map[string][]byte)}
}

func (d *Driver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, store.ErrClosed
	}
	v, ok := d.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(v), nil
}

func (d *Driver) Set(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return store.ErrClosed
	}
	d.data[key] = slices.Clone(value)
	return nil
}

func (d *Driver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return store.ErrClosed
	}
	delete(d.data, key)
	return nil
}

func (d *Driver) Ping(context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return store.ErrClosed
	}
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Keys returns the stored keys, sorted.
func (d *Driver) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Sorted(maps.Keys(d.data))
}
