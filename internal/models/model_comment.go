package models

import "time"

// Comment belongs to exactly one post. Posts are never deleted, so there
// is no cascade to worry about.
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	PostID    string    `json:"postId" bson:"post_id"`
	Author    string    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
