// Package blob stores encrypted payloads under caller-supplied keys. Two
// backends implement the same Store contract: a MinIO object store and a
// local filesystem directory. The backend never inspects or rewrites keys.
package blob

import (
	"context"
	"errors"
	"fmt"
)

// ErrObjectNotFound signals that no blob exists under the requested key.
var ErrObjectNotFound = errors.New("blob not found")

// Store is the backend contract. Keys are globally unique and assigned by the
// caller. Delete of an absent key is not an error.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

func ioError(op, key string, err error) error {
	return fmt.Errorf("blob %s %q: %w", op, key, err)
}
