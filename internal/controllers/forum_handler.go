package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ridglejessica55-prog/seren/dto"
	"github.com/ridglejessica55-prog/seren/internal/events"
	"github.com/ridglejessica55-prog/seren/internal/hub"
	"github.com/ridglejessica55-prog/seren/internal/store"
)

// DefaultWriteTimeout bounds a single write request so a stuck backend
// surfaces as 503 instead of hanging the caller's compose UI forever.
const DefaultWriteTimeout = 5 * time.Second

// ForumHandler exposes the store as request/response endpoints and is
// the only component that publishes to the hub. The ordering per write
// is: store commit, then publish, then the HTTP response.
type ForumHandler struct {
	Store        store.Store
	Hub          *hub.Hub
	WriteTimeout time.Duration
}

func (h *ForumHandler) writeCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	timeout := h.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return context.WithTimeout(c.Context(), timeout)
}

// errStatus maps store and context errors onto the response taxonomy:
// Conflict 409, NotFound 404, everything else Unavailable 503.
func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusServiceUnavailable
	}
}

// GET /api/posts

// ListPosts godoc
// @Summary      List all posts
// @Description  Return all posts, newest first
// @Tags         posts
// @Produce      json
// @Success      200  {array}  models.Post
// @Router       /api/posts [get]
func (h *ForumHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.Store.ListPosts(c.Context())
	if err != nil {
		return c.Status(errStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(posts)
}

// POST /api/posts

// CreatePost godoc
// @Summary      Create a post
// @Description  Store a new post and broadcast post:created to all subscribers
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body     dto.CreatePostReq  true  "Post payload"
// @Success      201   {object} models.Post
// @Failure      400   {object} dto.ErrorResponse
// @Failure      409   {object} dto.ErrorResponse
// @Router       /api/posts [post]
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	var body dto.CreatePostReq
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid body"})
	}
	if body.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "id is required"})
	}
	// Author may be blank (anonymous); content may not.
	if strings.TrimSpace(body.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "content is required"})
	}

	ctx, cancel := h.writeCtx(c)
	defer cancel()

	post, err := h.Store.InsertPost(ctx, body.ID, body.Author, body.Content)
	if err != nil {
		return c.Status(errStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	h.Hub.Publish(events.PostCreated{Post: *post})

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GET /api/posts/:postId/comments

// ListComments godoc
// @Summary      List comments of a post
// @Description  Return the post's comments, oldest first
// @Tags         comments
// @Produce      json
// @Param        postId  path  string  true  "Post ID"
// @Success      200  {array}  models.Comment
// @Router       /api/posts/{postId}/comments [get]
func (h *ForumHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.Store.ListComments(c.Context(), c.Params("postId"))
	if err != nil {
		return c.Status(errStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(comments)
}

// POST /api/posts/:postId/comments

// CreateComment godoc
// @Summary      Create a comment
// @Description  Store a new comment under the given post and broadcast comment:created
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        postId  path     string                true  "Post ID"
// @Param        body    body     dto.CreateCommentReq  true  "Comment payload"
// @Success      201     {object} models.Comment
// @Failure      400     {object} dto.ErrorResponse
// @Failure      404     {object} dto.ErrorResponse
// @Failure      409     {object} dto.ErrorResponse
// @Router       /api/posts/{postId}/comments [post]
func (h *ForumHandler) CreateComment(c *fiber.Ctx) error {
	postID := c.Params("postId")

	var body dto.CreateCommentReq
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid body"})
	}
	if body.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "id is required"})
	}
	if strings.TrimSpace(body.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "content is required"})
	}

	ctx, cancel := h.writeCtx(c)
	defer cancel()

	comment, err := h.Store.InsertComment(ctx, body.ID, postID, body.Author, body.Content)
	if err != nil {
		return c.Status(errStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	h.Hub.Publish(events.CommentCreated{PostID: postID, Comment: *comment})

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// POST /api/posts/:postId/like

// LikePost godoc
// @Summary      Like a post
// @Description  Atomically increment the like counter and broadcast post:updated
// @Tags         posts
// @Produce      json
// @Param        postId  path     string  true  "Post ID"
// @Success      200     {object} models.Post
// @Failure      404     {object} dto.ErrorResponse
// @Router       /api/posts/{postId}/like [post]
func (h *ForumHandler) LikePost(c *fiber.Ctx) error {
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	post, err := h.Store.IncrementLikes(ctx, c.Params("postId"))
	if err != nil {
		return c.Status(errStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	h.Hub.Publish(events.PostUpdated{Post: *post})

	return c.JSON(post)
}
