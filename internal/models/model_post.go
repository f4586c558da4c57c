package models

import "time"

// Post is a forum post as stored in the posts collection.
// Ids are generated by the creating client and are immutable; Timestamp
// and Likes are assigned by the store at insert.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Author    string    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Likes     int64     `json:"likes" bson:"likes"`
}
