package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ridglejessica55-prog/seren/internal/models"
)

// Compile-time assertion that MongoStore implements Store.
var _ Store = (*MongoStore)(nil)

// MongoStore persists posts and comments in MongoDB. The client-supplied
// record id is the document _id, so duplicate inserts surface as
// duplicate-key write errors (code 11000).
type MongoStore struct {
	client   *mongo.Client
	posts    *mongo.Collection
	comments *mongo.Collection
}

// NewMongoStore wraps an already-connected client. The caller owns the
// connection until Close is called.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:   client,
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
	}
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *MongoStore) InsertPost(ctx context.Context, id, author, content string) (*models.Post, error) {
	doc := models.Post{
		ID:        id,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Likes:     0,
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}

	// Return the freshly read row rather than echoing the input.
	var stored models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&stored); err != nil {
		return nil, fmt.Errorf("read back post: %w", err)
	}
	return &stored, nil
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) IncrementLikes(ctx context.Context, id string) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	err := s.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		opts,
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("increment likes: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := s.comments.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cur.Close(ctx)

	comments := []models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *MongoStore) InsertComment(ctx context.Context, id, postID, author, content string) (*models.Comment, error) {
	// Mongo has no foreign keys; enforce the post reference here.
	if err := s.posts.FindOne(ctx, bson.M{"_id": postID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("check post: %w", err)
	}

	doc := models.Comment{
		ID:        id,
		PostID:    postID,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	var stored models.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&stored); err != nil {
		return nil, fmt.Errorf("read back comment: %w", err)
	}
	return &stored, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// isDuplicateKey reports whether err is a Mongo duplicate-key write error.
func isDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
