// Package jsonstore persists a collection of records as one pretty-printed
// JSON array per file.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const filePerm = 0o644

type Record interface {
	RecordID() int64
}

// Collection is the whole-file store for one resource type. Every read loads
// the full file and every write replaces it. Update holds the collection lock
// across load, mutate and save, so concurrent writers cannot lose updates.
type Collection[T Record] struct {
	path string
	mu   sync.RWMutex
	ids  *IDGenerator
}

func New[T Record](path string) *Collection[T] {
	return &Collection[T]{path: path, ids: NewIDGenerator()}
}

// Load returns every record, creating an empty file first if none exists.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.load()
}

// Update loads the collection, passes it to fn and saves what fn returns.
// If fn fails nothing is written and its error is returned unchanged.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}

	records, err = fn(records)
	if err != nil {
		return err
	}
	return c.save(records)
}

// NextID returns an unused id for a record about to join records.
func (c *Collection[T]) NextID(records []T) int64 {
	var highest int64
	for _, r := range records {
		if id := r.RecordID(); id > highest {
			highest = id
		}
	}
	return c.ids.Next(highest)
}

// Ping checks that the file can be read and decoded.
func (c *Collection[T]) Ping(ctx context.Context) error {
	_, err := c.Load(ctx)
	return err
}

// Index returns the position of the record with the given id, or -1.
func Index[T Record](records []T, id int64) int {
	for i, r := range records {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) load() ([]T, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: c.path, Err: err}
	}

	// a concurrent first Load may see the file before "[]" lands in it
	if len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &StorageError{Op: "decode", Path: c.path, Err: err}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c *Collection[T]) ensure() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: c.path, Err: err}
	}

	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return &StorageError{Op: "create", Path: c.path, Err: err}
	}

	_, werr := f.Write([]byte("[]\n"))
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return &StorageError{Op: "create", Path: c.path, Err: err}
	}
	return nil
}

// save writes to a sibling temp file and renames it over the target so a
// reader never sees a half-written document.
func (c *Collection[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: c.path, Err: err}
	}
	data = append(data, '\n')

	dir, base := filepath.Split(c.path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		_ = os.Remove(tmp)
		return &StorageError{Op: "write", Path: c.path, Err: err}
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return &StorageError{Op: "write", Path: c.path, Err: err}
	}
	return nil
}
