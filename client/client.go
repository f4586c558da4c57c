// Package client is a Go client for the forum backend. It keeps a local
// view of the post list (and the comment list of one selected post) in
// sync by combining HTTP snapshots with the websocket event stream.
//
// Lists are updated exclusively from broadcast events; the direct return
// value of a write is handed back to the caller (e.g. to clear a compose
// box) but never merged, so the creator and every other subscriber follow
// the same code path. Merges are idempotent under duplicate delivery.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ridglejessica55-prog/seren/dto"
	"github.com/ridglejessica55-prog/seren/internal/events"
	"github.com/ridglejessica55-prog/seren/internal/models"
)

// ErrUnknownPost is returned by Select when the id is not in the local
// post list. Snapshot first via Connect.
var ErrUnknownPost = errors.New("post not in local view")

// ErrConnected is returned by Connect when the client already holds a
// live websocket. Close first to reconnect.
var ErrConnected = errors.New("already connected")

// DefaultHTTPTimeout bounds every request/response call.
const DefaultHTTPTimeout = 10 * time.Second

// Config configures a Forum client.
type Config struct {
	// BaseURL is the server's HTTP base, e.g. "http://localhost:3000".
	BaseURL string
	// HTTPTimeout bounds each request. Defaults to DefaultHTTPTimeout.
	HTTPTimeout time.Duration
	// Logger is the logger to use. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Forum holds the synchronized local view.
type Forum struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	conn *websocket.Conn
	done chan struct{}

	mu       sync.RWMutex
	posts    []models.Post
	selected *models.Post
	comments []models.Comment
}

// New creates a client. Call Connect before reading the view.
func New(cfg Config) *Forum {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Forum{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     logger.WithGroup("forum"),
	}
}

// Connect subscribes to the event stream and then snapshots the post
// list, so nothing between subscribe and snapshot is missed. Events for
// records already in the snapshot are deduplicated by the merge rules.
// A Forum holds at most one connection; Connect on a live client
// returns ErrConnected.
func (f *Forum) Connect(ctx context.Context) error {
	f.mu.RLock()
	connected := f.conn != nil
	f.mu.RUnlock()
	if connected {
		return ErrConnected
	}

	wsURL, err := websocketURL(f.baseURL)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	var posts []models.Post
	if err := f.doJSON(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		conn.Close()
		return err
	}

	done := make(chan struct{})

	f.mu.Lock()
	if f.conn != nil {
		f.mu.Unlock()
		conn.Close()
		return ErrConnected
	}
	f.conn = conn
	f.done = done
	f.posts = posts
	f.mu.Unlock()

	go f.readLoop(conn, done)
	return nil
}

// Close tears down the websocket. The local view stays readable.
func (f *Forum) Close() error {
	f.mu.Lock()
	conn := f.conn
	done := f.done
	f.conn = nil
	f.mu.Unlock()

	if conn == nil {
		return nil
	}
	err := conn.Close()
	<-done
	return err
}

// CreatePost submits a new post with a generated id. The returned row is
// the direct call result; the local list updates via the broadcast.
func (f *Forum) CreatePost(ctx context.Context, author, content string) (*models.Post, error) {
	req := dto.CreatePostReq{
		ID:      "post-" + uuid.NewString(),
		Author:  author,
		Content: content,
	}
	var post models.Post
	if err := f.doJSON(ctx, http.MethodPost, "/api/posts", req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreateComment submits a new comment under the given post.
func (f *Forum) CreateComment(ctx context.Context, postID, author, content string) (*models.Comment, error) {
	req := dto.CreateCommentReq{
		ID:      "comment-" + uuid.NewString(),
		Author:  author,
		Content: content,
	}
	path := "/api/posts/" + url.PathEscape(postID) + "/comments"
	var comment models.Comment
	if err := f.doJSON(ctx, http.MethodPost, path, req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Like increments the post's like counter.
func (f *Forum) Like(ctx context.Context, postID string) (*models.Post, error) {
	path := "/api/posts/" + url.PathEscape(postID) + "/like"
	var post models.Post
	if err := f.doJSON(ctx, http.MethodPost, path, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Select marks a post as the current discussion and replaces the local
// comment list with a fresh snapshot (last fetch wins).
func (f *Forum) Select(ctx context.Context, postID string) error {
	f.mu.RLock()
	known := false
	for i := range f.posts {
		if f.posts[i].ID == postID {
			known = true
			break
		}
	}
	f.mu.RUnlock()
	if !known {
		return ErrUnknownPost
	}

	path := "/api/posts/" + url.PathEscape(postID) + "/comments"
	var comments []models.Comment
	if err := f.doJSON(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return err
	}

	// Re-read the post inside the lock so an update applied while the
	// snapshot was in flight is not lost.
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == postID {
			p := f.posts[i]
			f.selected = &p
			f.comments = comments
			return nil
		}
	}
	return ErrUnknownPost
}

// Deselect clears the current discussion.
func (f *Forum) Deselect() {
	f.mu.Lock()
	f.selected = nil
	f.comments = nil
	f.mu.Unlock()
}

// Posts returns a copy of the local post list, newest first.
func (f *Forum) Posts() []models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// Selected returns a copy of the selected post, or nil.
func (f *Forum) Selected() *models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.selected == nil {
		return nil
	}
	p := *f.selected
	return &p
}

// Comments returns a copy of the selected post's comment list, oldest
// first.
func (f *Forum) Comments() []models.Comment {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Comment, len(f.comments))
	copy(out, f.comments)
	return out
}

func (f *Forum) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			f.log.Debug("event stream closed", "error", err)
			return
		}
		e, err := events.Decode(data)
		if err != nil {
			f.log.Warn("bad event", "error", err)
			continue
		}
		f.apply(e)
	}
}

// apply merges one broadcast event into the local view. Safe to call
// with duplicates: a record whose id is already present is skipped.
func (f *Forum) apply(e events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch ev := e.(type) {
	case events.PostCreated:
		for i := range f.posts {
			if f.posts[i].ID == ev.Post.ID {
				return
			}
		}
		f.posts = append([]models.Post{ev.Post}, f.posts...)

	case events.PostUpdated:
		for i := range f.posts {
			if f.posts[i].ID == ev.Post.ID {
				f.posts[i] = ev.Post
			}
		}
		if f.selected != nil && f.selected.ID == ev.Post.ID {
			p := ev.Post
			f.selected = &p
		}

	case events.CommentCreated:
		if f.selected == nil || f.selected.ID != ev.PostID {
			return
		}
		for i := range f.comments {
			if f.comments[i].ID == ev.Comment.ID {
				return
			}
		}
		f.comments = append(f.comments, ev.Comment)
	}
}

// doJSON issues a request and decodes the JSON response, turning error
// statuses into errors carrying the server's message.
func (f *Forum) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func websocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	return u.String(), nil
}
