// Package storage provides the versioned content store the review service
// loads models from and saves them to.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a path or revision does not exist.
var ErrNotFound = errors.New("content not found")

// ConflictError is returned by Put when the stored content no longer matches
// the expected hash.
type ConflictError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("conflict writing %s: path already exists", e.Path)
	}
	return fmt.Sprintf("conflict writing %s: expected %s, found %s", e.Path, e.Expected, e.Actual)
}

// StoreError marks a failure of the backing store itself, as opposed to a
// missing path or a write conflict.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Content is the payload of one revision of a path.
type Content struct {
	Path     string
	Data     []byte
	Hash     string
	Revision string
}

// Entry is one listing item.
type Entry struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	IsDir        bool      `json:"isDir"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified,omitempty"`
}

// Revision describes one stored version of a path, newest first in listings.
type Revision struct {
	ID           string    `json:"id"`
	Hash         string    `json:"hash"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	IsLatest     bool      `json:"isLatest"`
}

// ContentStore is a versioned key/value store with compare-and-swap writes.
type ContentStore interface {
	// Get returns a revision of path. An empty revision means the latest.
	Get(ctx context.Context, path, revision string) (Content, error)
	// Put writes data to path if its current hash equals expectedHash. An
	// empty expectedHash requires that path does not exist yet.
	Put(ctx context.Context, path string, data []byte, expectedHash string) (string, error)
	Revisions(ctx context.Context, path string) ([]Revision, error)
	// List returns the direct children of prefix.
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// IsConflict reports whether err is a *ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
