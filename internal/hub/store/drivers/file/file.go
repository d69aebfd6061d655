// Package file implements a KV driver that keeps one file per key in a data
// directory. Writes are atomic (temp file + fsync + rename).
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/aussiebroadwan/hub/internal/hub/store"
)

func init() {
	store.Register("file", func(cfg store.DriverConfig) (store.KV, error) {
		return New(cfg.DataDir)
	})
}

const fileExt = ".dat"

var validKey = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Driver implements store.KV on the local filesystem.
type Driver struct {
	dataDir string
	mu      sync.RWMutex
	closed  bool
}

var _ store.KV = (*Driver)(nil)

// New creates dataDir if needed and returns a driver rooted there.
func New(dataDir string) (*Driver, error) {
	if dataDir == "" {
		return nil, errors.New("file: data dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("file: create data dir: %w", err)
	}
	return &Driver{dataDir: dataDir}, nil
}

func (d *Driver) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("file: invalid key %q", key)
	}
	return filepath.Join(d.dataDir, key+fileExt), nil
}

func (d *Driver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, store.ErrClosed
	}

	path, err := d.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	return data, err
}

func (d *Driver) Set(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return store.ErrClosed
	}

	path, err := d.path(key)
	if err != nil {
		return err
	}
	return writeAtomic(path, value)
}

func (d *Driver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return store.ErrClosed
	}

	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file: remove %s: %w", key, err)
	}
	return nil
}

func (d *Driver) Ping(_ context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return store.ErrClosed
	}
	info, err := os.Stat(d.dataDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("file: %s is not a directory", d.dataDir)
	}
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("file: create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("file: write temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("file: sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("file: close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("file: rename temp file: %w", err)
	}
	return nil
}
