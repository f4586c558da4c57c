package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ridglejessica55-prog/seren/internal/models"
)

// Compile-time assertion that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store used by tests and for running the
// server without a database. Posts and comments are kept in insertion
// order and sorted on read.
type MemoryStore struct {
	mu       sync.RWMutex
	posts    []*models.Post
	comments []*models.Comment
	postIdx  map[string]*models.Post
	cmtIdx   map[string]*models.Comment
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		postIdx: make(map[string]*models.Post),
		cmtIdx:  make(map[string]*models.Comment),
	}
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, *p)
	}
	// Newest first; stable so equal timestamps keep insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) InsertPost(ctx context.Context, id, author, content string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.postIdx[id]; exists {
		return nil, ErrConflict
	}
	p := &models.Post{
		ID:        id,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Likes:     0,
	}
	s.posts = append(s.posts, p)
	s.postIdx[id] = p

	row := *p
	return &row, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.postIdx[id]
	if !ok {
		return nil, ErrNotFound
	}
	row := *p
	return &row, nil
}

func (s *MemoryStore) IncrementLikes(ctx context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postIdx[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Likes++

	row := *p
	return &row, nil
}

func (s *MemoryStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	// Oldest first; conversation reads top to bottom.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) InsertComment(ctx context.Context, id, postID, author, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cmtIdx[id]; exists {
		return nil, ErrConflict
	}
	if _, ok := s.postIdx[postID]; !ok {
		return nil, ErrNotFound
	}
	c := &models.Comment{
		ID:        id,
		PostID:    postID,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.comments = append(s.comments, c)
	s.cmtIdx[id] = c

	row := *c
	return &row, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
