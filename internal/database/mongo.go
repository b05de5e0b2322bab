package database

import (
	"context"
	"fmt"
	"time"

	"github.com/comment-tree-api/internal/config"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ArticlesCollection = "articles"
	CommentsCollection = "comments"
)

// MongoDB wraps a connected mongo database handle
type MongoDB struct {
	*mongo.Database
	client *mongo.Client
	log    zerolog.Logger
}

// NewMongo connects to MongoDB and verifies the connection
func NewMongo(cfg *config.MongoConfig, log zerolog.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := &MongoDB{
		Database: client.Database(cfg.Database),
		client:   client,
		log:      log.With().Str("component", "mongo").Logger(),
	}

	db.log.Info().Str("database", cfg.Database).Msg("MongoDB connection established")

	return db, nil
}

// EnsureIndexes creates the indexes the entity store relies on.
// The unique article_id index backs the like and counter upserts.
func (db *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := db.Collection(ArticlesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "article_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create articles index: %w", err)
	}

	_, err = db.Collection(CommentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent", Value: 1}}},
		{Keys: bson.D{{Key: "article_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "article_id", Value: 1}, {Key: "likes_count", Value: -1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comments indexes: %w", err)
	}

	db.log.Info().Msg("MongoDB indexes ensured")
	return nil
}

// HealthCheck verifies the connection is healthy
func (db *MongoDB) HealthCheck(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

// Close disconnects the client
func (db *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}
