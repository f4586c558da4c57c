package bootstrap

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureForumIndexes creates the indexes the forum queries rely on.
// Record ids live in _id, so uniqueness needs no extra index.
func EnsureForumIndexes(db *mongo.Database) error {
	// posts are listed newest first
	_, err := db.Collection("posts").Indexes().CreateOne(
		context.Background(),
		mongo.IndexModel{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("posts_ts_desc"),
		},
	)
	if err != nil {
		return err
	}

	// comments are listed per post, oldest first
	_, err = db.Collection("comments").Indexes().CreateOne(
		context.Background(),
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "post_id", Value: 1},
				{Key: "timestamp", Value: 1},
			},
			Options: options.Index().SetName("comments_post_ts"),
		},
	)
	return err
}
