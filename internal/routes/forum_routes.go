package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ridglejessica55-prog/seren/internal/controllers"
)

// ForumRoutes registers the forum CRUD endpoints.
func ForumRoutes(app *fiber.App, h *controllers.ForumHandler) {
	api := app.Group("/api")

	// GET /api/posts — all posts, newest first
	api.Get("/posts", h.ListPosts)

	// POST /api/posts — create a post (client-generated id)
	api.Post("/posts", h.CreatePost)

	// GET /api/posts/:postId/comments — comments of a post, oldest first
	api.Get("/posts/:postId/comments", h.ListComments)

	// POST /api/posts/:postId/comments — create a comment under the post
	api.Post("/posts/:postId/comments", h.CreateComment)

	// POST /api/posts/:postId/like — increment the like counter
	api.Post("/posts/:postId/like", h.LikePost)
}

// StreamRoutes registers the websocket event stream.
func StreamRoutes(app *fiber.App, h *controllers.StreamHandler) {
	app.Get("/ws", h.Upgrade(), h.Stream())
}
