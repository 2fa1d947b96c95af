package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by Get when no document is stored under the key.
var ErrNotFound = errors.New("document not found")

// Store persists whole JSON documents under string keys. Documents are always
// read and written as a whole; there are no partial patches.
type Store interface {
	Get(ctx context.Context, key string, v any) error
	Put(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Supported drivers for Open.
const (
	DriverJSON   = "json"
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// Open creates the store selected by driver inside dir.
func Open(ctx context.Context, driver, dir string) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return OpenJSONDir(dir)
	case DriverBolt:
		return OpenBolt(filepath.Join(dir, "standup.db"))
	case DriverSQLite:
		return OpenSQLite(ctx, filepath.Join(dir, "standup.sqlite"))
	}
	return nil, fmt.Errorf("unknown store driver %q (want json, bolt or sqlite)", driver)
}
