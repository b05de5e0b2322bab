package repository

import (
	"context"
	"errors"
	"time"

	"github.com/comment-tree-api/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoArticleRepo is the MongoDB implementation of ArticleRepository
type mongoArticleRepo struct {
	coll *mongo.Collection
}

// NewMongoArticleRepo creates an article repository over a mongo collection.
// The collection must carry a unique index on article_id.
func NewMongoArticleRepo(coll *mongo.Collection) ArticleRepository {
	return &mongoArticleRepo{coll: coll}
}

func (r *mongoArticleRepo) GetByArticleID(ctx context.Context, articleID string) (*models.Article, error) {
	return decodeArticle(r.coll.FindOne(ctx, bson.M{"article_id": articleID}))
}

// AddLike upserts on {article_id, likes != userID}. When the article exists
// and already holds userID the filter misses, the upsert collides with the
// unique index, and the duplicate key error is reported as "already liked".
func (r *mongoArticleRepo) AddLike(ctx context.Context, articleID, userID string) (*models.Article, error) {
	now := time.Now()
	filter := bson.M{"article_id": articleID, "likes": bson.M{"$ne": userID}}
	update := bson.M{
		"$push": bson.M{"likes": userID},
		"$inc":  bson.M{"likes_count": 1},
		"$set":  bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"_id":            uuid.New().String(),
			"comments_count": 0,
			"replies_count":  0,
			"created_at":     now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	article, err := decodeArticle(r.coll.FindOneAndUpdate(ctx, filter, update, opts))
	if mongo.IsDuplicateKeyError(err) {
		return nil, nil
	}
	return article, err
}

func (r *mongoArticleRepo) RemoveLike(ctx context.Context, articleID, userID string) (*models.Article, error) {
	filter := bson.M{"article_id": articleID, "likes": userID}
	update := bson.M{
		"$pull": bson.M{"likes": userID},
		"$inc":  bson.M{"likes_count": -1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeArticle(r.coll.FindOneAndUpdate(ctx, filter, update, opts))
}

func (r *mongoArticleRepo) UpsertCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error) {
	now := time.Now()
	update := bson.M{
		"$inc": bson.M{"comments_count": commentsDelta, "replies_count": repliesDelta},
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"_id":         uuid.New().String(),
			"likes":       []string{},
			"likes_count": 0,
			"created_at":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return decodeArticle(r.coll.FindOneAndUpdate(ctx, bson.M{"article_id": articleID}, update, opts))
}

func (r *mongoArticleRepo) IncrementCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error) {
	update := bson.M{
		"$inc": bson.M{"comments_count": commentsDelta, "replies_count": repliesDelta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeArticle(r.coll.FindOneAndUpdate(ctx, bson.M{"article_id": articleID}, update, opts))
}

// ReplaceCounters uses an update pipeline so likes_count is derived from the stored set
func (r *mongoArticleRepo) ReplaceCounters(ctx context.Context, articleID string, commentsCount, repliesCount int) (*models.Article, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "comments_count", Value: commentsCount},
			{Key: "replies_count", Value: repliesCount},
			{Key: "likes_count", Value: bson.D{{Key: "$size", Value: "$likes"}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeArticle(r.coll.FindOneAndUpdate(ctx, bson.M{"article_id": articleID}, pipeline, opts))
}

func (r *mongoArticleRepo) GetAllArticleIDs(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "article_id", bson.M{})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *mongoArticleRepo) Count(ctx context.Context) (int, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	return int(count), err
}

func decodeArticle(result *mongo.SingleResult) (*models.Article, error) {
	var article models.Article
	err := result.Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if article.Likes == nil {
		article.Likes = []string{}
	}
	return &article, nil
}
