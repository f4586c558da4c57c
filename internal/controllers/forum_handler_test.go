package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/ridglejessica55-prog/seren/internal/events"
	"github.com/ridglejessica55-prog/seren/internal/hub"
	"github.com/ridglejessica55-prog/seren/internal/models"
	"github.com/ridglejessica55-prog/seren/internal/store"
)

// newTestApp wires the handler onto a fiber app backed by the in-memory
// store, mirroring the production route layout.
func newTestApp(t *testing.T) (*fiber.App, *hub.Hub) {
	t.Helper()

	h := hub.New(nil)
	forum := &ForumHandler{Store: store.NewMemoryStore(), Hub: h}

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/posts", forum.ListPosts)
	api.Post("/posts", forum.CreatePost)
	api.Get("/posts/:postId/comments", forum.ListComments)
	api.Post("/posts/:postId/comments", forum.CreateComment)
	api.Post("/posts/:postId/like", forum.LikePost)
	return app, h
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

func TestCreatePost_BroadcastsAndReturnsRow(t *testing.T) {
	app, h := newTestApp(t)
	sub := h.Subscribe()

	resp, data := doJSON(t, app, "POST", "/api/posts",
		`{"id":"p1","author":"Alice","content":"hi"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, data)
	}

	var post models.Post
	if err := json.Unmarshal(data, &post); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if post.ID != "p1" || post.Author != "Alice" || post.Likes != 0 {
		t.Errorf("response = %+v, want canonical row", post)
	}
	if post.Timestamp.IsZero() {
		t.Error("timestamp not assigned by store")
	}

	// Publish happens before the response is sent, so the event is
	// already buffered.
	select {
	case e := <-sub.C:
		pc, ok := e.(events.PostCreated)
		if !ok {
			t.Fatalf("event = %T, want PostCreated", e)
		}
		if pc.Post.ID != post.ID || pc.Post.Likes != post.Likes ||
			!pc.Post.Timestamp.Equal(post.Timestamp) {
			t.Errorf("broadcast row = %+v, want response row %+v", pc.Post, post)
		}
	default:
		t.Fatal("no broadcast for successful create")
	}
}

func TestCreatePost_Conflict(t *testing.T) {
	app, h := newTestApp(t)

	doJSON(t, app, "POST", "/api/posts", `{"id":"p1","author":"Alice","content":"hi"}`)

	sub := h.Subscribe()
	resp, _ := doJSON(t, app, "POST", "/api/posts",
		`{"id":"p1","author":"Mallory","content":"dup"}`)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}

	// A rejected write must not broadcast
	select {
	case e := <-sub.C:
		t.Fatalf("conflict broadcast an event: %+v", e)
	default:
	}

	// And must not alter the existing row
	_, data := doJSON(t, app, "GET", "/api/posts", "")
	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		t.Fatalf("unmarshal posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Author != "Alice" {
		t.Errorf("posts after conflict = %+v, want original only", posts)
	}
}

func TestCreatePost_Validation(t *testing.T) {
	app, h := newTestApp(t)
	sub := h.Subscribe()

	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"author":"Alice","content":"hi"}`},
		{"blank content", `{"id":"p1","author":"Alice","content":"  "}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, "POST", "/api/posts", tt.body)
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	select {
	case e := <-sub.C:
		t.Fatalf("rejected write broadcast an event: %+v", e)
	default:
	}
}

func TestLikePost(t *testing.T) {
	app, h := newTestApp(t)

	doJSON(t, app, "POST", "/api/posts", `{"id":"p1","author":"Alice","content":"hi"}`)

	sub := h.Subscribe()
	resp, data := doJSON(t, app, "POST", "/api/posts/p1/like", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, data)
	}

	var post models.Post
	if err := json.Unmarshal(data, &post); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if post.Likes != 1 {
		t.Errorf("likes = %d, want 1", post.Likes)
	}

	select {
	case e := <-sub.C:
		pu, ok := e.(events.PostUpdated)
		if !ok {
			t.Fatalf("event = %T, want PostUpdated", e)
		}
		if pu.Post.Likes != 1 {
			t.Errorf("broadcast likes = %d, want 1", pu.Post.Likes)
		}
	default:
		t.Fatal("no broadcast for like")
	}
}

func TestLikePost_NotFound(t *testing.T) {
	app, h := newTestApp(t)
	sub := h.Subscribe()

	resp, _ := doJSON(t, app, "POST", "/api/posts/missing/like", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	select {
	case e := <-sub.C:
		t.Fatalf("rejected like broadcast an event: %+v", e)
	default:
	}
}

func TestCreateComment(t *testing.T) {
	app, h := newTestApp(t)

	doJSON(t, app, "POST", "/api/posts", `{"id":"p1","author":"Alice","content":"hi"}`)

	sub := h.Subscribe()
	resp, data := doJSON(t, app, "POST", "/api/posts/p1/comments",
		`{"id":"c1","author":"Bob","content":"hello"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, data)
	}

	var comment models.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if comment.PostID != "p1" {
		t.Errorf("postId = %s, want p1 (bound from path)", comment.PostID)
	}

	select {
	case e := <-sub.C:
		cc, ok := e.(events.CommentCreated)
		if !ok {
			t.Fatalf("event = %T, want CommentCreated", e)
		}
		if cc.PostID != "p1" || cc.Comment.ID != comment.ID ||
			!cc.Comment.Timestamp.Equal(comment.Timestamp) {
			t.Errorf("broadcast = %+v, want {p1 %+v}", cc, comment)
		}
	default:
		t.Fatal("no broadcast for comment")
	}
}

func TestCreateComment_MissingPost(t *testing.T) {
	app, h := newTestApp(t)
	sub := h.Subscribe()

	resp, _ := doJSON(t, app, "POST", "/api/posts/missing/comments",
		`{"id":"c1","author":"Bob","content":"hello"}`)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	select {
	case e := <-sub.C:
		t.Fatalf("rejected comment broadcast an event: %+v", e)
	default:
	}
}

func TestListPosts_Empty(t *testing.T) {
	app, _ := newTestApp(t)

	resp, data := doJSON(t, app, "GET", "/api/posts", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("body = %s, want []", data)
	}
}

func TestEverySubscriberSeesEveryWrite(t *testing.T) {
	app, h := newTestApp(t)

	subs := []*hub.Subscriber{h.Subscribe(), h.Subscribe()}

	doJSON(t, app, "POST", "/api/posts", `{"id":"p1","author":"Alice","content":"hi"}`)
	doJSON(t, app, "POST", "/api/posts/p1/like", "")
	doJSON(t, app, "POST", "/api/posts/p1/comments", `{"id":"c1","author":"Bob","content":"hello"}`)

	for i, sub := range subs {
		wantOrder := []string{events.NamePostCreated, events.NamePostUpdated, events.NameCommentCreated}
		for _, want := range wantOrder {
			select {
			case e := <-sub.C:
				if e.Name() != want {
					t.Errorf("subscriber %d got %s, want %s", i, e.Name(), want)
				}
			default:
				t.Fatalf("subscriber %d missing %s", i, want)
			}
		}
		select {
		case e := <-sub.C:
			t.Errorf("subscriber %d got extra event %s", i, e.Name())
		default:
		}
	}
}
