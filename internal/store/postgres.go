package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridglejessica55-prog/seren/internal/models"
)

// Compile-time assertion that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// Postgres error codes mapped to store errors.
const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id        TEXT PRIMARY KEY,
	author    TEXT NOT NULL DEFAULT '',
	content   TEXT NOT NULL DEFAULT '',
	timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
	likes     BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS comments (
	id        TEXT PRIMARY KEY,
	post_id   TEXT NOT NULL REFERENCES posts(id),
	author    TEXT NOT NULL DEFAULT '',
	content   TEXT NOT NULL DEFAULT '',
	timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_comments_post_ts ON comments (post_id, timestamp);
`

// PostgresStore persists posts and comments in Postgres via a pgx pool.
// Duplicate ids and missing post references are enforced by the schema's
// primary key and foreign key constraints.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and applies the schema
// idempotently.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, author, content, timestamp, likes FROM posts ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Author, &p.Content, &p.Timestamp, &p.Likes); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) InsertPost(ctx context.Context, id, author, content string) (*models.Post, error) {
	var p models.Post
	err := s.pool.QueryRow(ctx,
		`INSERT INTO posts (id, author, content) VALUES ($1, $2, $3)
		 RETURNING id, author, content, timestamp, likes`,
		id, author, content,
	).Scan(&p.ID, &p.Author, &p.Content, &p.Timestamp, &p.Likes)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := s.pool.QueryRow(ctx,
		`SELECT id, author, content, timestamp, likes FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.Author, &p.Content, &p.Timestamp, &p.Likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) IncrementLikes(ctx context.Context, id string) (*models.Post, error) {
	// Single-statement increment; the row lock makes concurrent likes
	// serialize without lost updates.
	var p models.Post
	err := s.pool.QueryRow(ctx,
		`UPDATE posts SET likes = likes + 1 WHERE id = $1
		 RETURNING id, author, content, timestamp, likes`, id,
	).Scan(&p.ID, &p.Author, &p.Content, &p.Timestamp, &p.Likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("increment likes: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, post_id, author, content, timestamp FROM comments
		 WHERE post_id = $1 ORDER BY timestamp ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *PostgresStore) InsertComment(ctx context.Context, id, postID, author, content string) (*models.Comment, error) {
	var c models.Comment
	err := s.pool.QueryRow(ctx,
		`INSERT INTO comments (id, post_id, author, content) VALUES ($1, $2, $3, $4)
		 RETURNING id, post_id, author, content, timestamp`,
		id, postID, author, content,
	).Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.Timestamp)
	if err != nil {
		switch {
		case isPgCode(err, pgUniqueViolation):
			return nil, ErrConflict
		case isPgCode(err, pgFKViolation):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
