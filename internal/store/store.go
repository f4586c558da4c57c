// Package store provides the storage backends for forum posts and
// comments. The default backend is MongoDB; a Postgres backend and an
// in-memory backend (used by tests and dependency-free runs) implement
// the same interface.
package store

import (
	"context"
	"errors"

	"github.com/ridglejessica55-prog/seren/internal/models"
)

var (
	// ErrConflict is returned when an insert reuses an existing id.
	ErrConflict = errors.New("record id already exists")

	// ErrNotFound is returned when an operation references a missing post.
	ErrNotFound = errors.New("record not found")
)

// Store is the interface for forum storage backends.
//
// Ids are supplied by the caller; timestamps and like counters are
// assigned by the store. Inserts reject duplicate ids with ErrConflict
// and never overwrite. There are no update-content or delete operations.
type Store interface {
	// ListPosts returns all posts, newest first.
	ListPosts(ctx context.Context) ([]models.Post, error)

	// InsertPost stores a new post with a store-assigned timestamp and a
	// like counter of zero, and returns the canonical stored row.
	InsertPost(ctx context.Context, id, author, content string) (*models.Post, error)

	// GetPost returns the post with the given id, or ErrNotFound.
	GetPost(ctx context.Context, id string) (*models.Post, error)

	// IncrementLikes atomically increments the post's like counter by one
	// and returns the updated row. Concurrent callers must all be
	// observed; no read-modify-write in two steps.
	IncrementLikes(ctx context.Context, id string) (*models.Post, error)

	// ListComments returns the post's comments, oldest first. A missing
	// post yields an empty slice, not an error; callers that need the
	// distinction call GetPost first.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)

	// InsertComment stores a new comment under an existing post. Returns
	// ErrNotFound when the post does not exist.
	InsertComment(ctx context.Context, id, postID, author, content string) (*models.Comment, error)

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}
