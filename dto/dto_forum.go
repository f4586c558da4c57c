package dto

// CreatePostReq is the body of POST /api/posts. The id is generated by
// the creating client and must be unique.
type CreatePostReq struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// CreateCommentReq is the body of POST /api/posts/:postId/comments.
type CreateCommentReq struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
