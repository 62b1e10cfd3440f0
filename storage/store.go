// Package storage keeps serialized pipeline state in a key/value store.
package storage

import (
	"context"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store persists opaque artifacts under string keys.
type Store interface {
	Name() string
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
