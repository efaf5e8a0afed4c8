// Package repository defines storage interfaces implemented by concrete backends.
package repository

import "context"

// DraftRepository is a durable key/value store for locally persisted drafts.
type DraftRepository interface {
	// Get loads the value stored under key; errs.ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
