// Package storage persists whole JSON documents under string keys with
// optimistic concurrency. Every backend hands out an opaque version token on
// load and refuses a save whose token went stale.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no document exists under the key yet. Callers treat
	// it as an empty document, not a failure.
	ErrNotFound = errors.New("storage: document not found")

	// ErrConflict means the version token no longer matches the stored
	// document. The caller must reload and retry the whole operation.
	ErrConflict = errors.New("storage: version conflict")
)

// Client is the document store port. Save with an empty token creates the
// document; save with a token updates it and fails with ErrConflict when the
// stored version moved on.
type Client interface {
	Load(ctx context.Context, key string) (data []byte, token string, err error)
	Save(ctx context.Context, key string, data []byte, token string) (newToken string, err error)
}
