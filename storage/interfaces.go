package storage

import (
	"context"

	"github.com/poiesic/titlegate/core"
)

// TitleRepository provides operations for the durable title record store.
// Implementations must be thread-safe and support concurrent access.
//
// The store enforces a uniqueness constraint on the normalized title text;
// AddTitle returns ErrDuplicateKey when the constraint is violated. The
// verification engine treats that as a no-op, not a failure.
type TitleRepository interface {
	// AddTitle persists a new approved title.
	// The record's ID is generated from a sequence and CreatedAt is set if
	// zero. Returns ErrDuplicateKey if a title with the same normalized
	// text already exists.
	AddTitle(ctx context.Context, text string) (*core.Title, error)

	// GetTitle retrieves a single title by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetTitle(ctx context.Context, id core.ID) (*core.Title, error)

	// ListApproved returns every approved title text, in insertion order.
	// Used by index hydration to reconcile the in-memory index against the
	// durable store.
	ListApproved(ctx context.Context) ([]string, error)

	// Close closes the repository and releases resources.
	Close() error
}
