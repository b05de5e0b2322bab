package repository

import (
	"context"
	"errors"
	"time"

	"github.com/comment-tree-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoCommentRepo is the MongoDB implementation of CommentRepository.
// Root comments omit the parent field; {"parent": nil} matches them.
type mongoCommentRepo struct {
	coll *mongo.Collection
}

// NewMongoCommentRepo creates a comment repository over a mongo collection
func NewMongoCommentRepo(coll *mongo.Collection) CommentRepository {
	return &mongoCommentRepo{coll: coll}
}

func (r *mongoCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	_, err := r.coll.InsertOne(ctx, comment)
	return err
}

func (r *mongoCommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return decodeComment(r.coll.FindOne(ctx, bson.M{"_id": id}))
}

func (r *mongoCommentRepo) List(ctx context.Context, q models.CommentQuery) ([]*models.Comment, error) {
	filter := bson.M{"article_id": q.ArticleID}
	if q.Parent != nil {
		if q.RootOnly() {
			filter["parent"] = nil
		} else {
			filter["parent"] = *q.Parent
		}
	}

	opts := options.Find().SetSkip(int64(q.Skip())).SetLimit(int64(q.Limit))
	if sort := sortDocument(q.SortBy); sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := make([]*models.Comment, 0, q.Limit)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	for _, c := range comments {
		normalizeComment(c)
	}
	return comments, nil
}

func (r *mongoCommentRepo) GetChildIDs(ctx context.Context, parentID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"parent": parentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (r *mongoCommentRepo) DeleteByID(ctx context.Context, id string) (*models.Comment, error) {
	return decodeComment(r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}))
}

func (r *mongoCommentRepo) IncrementReplies(ctx context.Context, id string, delta int) (*models.Comment, error) {
	update := bson.M{
		"$inc": bson.M{"replies_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	return r.findAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *mongoCommentRepo) AddLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	filter := bson.M{"_id": id, "likes": bson.M{"$ne": userID}}
	update := bson.M{
		"$push": bson.M{"likes": userID},
		"$inc":  bson.M{"likes_count": 1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return r.findAndUpdate(ctx, filter, update)
}

func (r *mongoCommentRepo) RemoveLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	filter := bson.M{"_id": id, "likes": userID}
	update := bson.M{
		"$pull": bson.M{"likes": userID},
		"$inc":  bson.M{"likes_count": -1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return r.findAndUpdate(ctx, filter, update)
}

func (r *mongoCommentRepo) UpdateBody(ctx context.Context, id, body string) (*models.Comment, error) {
	update := bson.M{"$set": bson.M{"body": body, "updated_at": time.Now()}}
	return r.findAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *mongoCommentRepo) CountByArticle(ctx context.Context, articleID string) (int, int, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{"article_id": articleID})
	if err != nil {
		return 0, 0, err
	}
	roots, err := r.coll.CountDocuments(ctx, bson.M{"article_id": articleID, "parent": nil})
	if err != nil {
		return 0, 0, err
	}
	return int(roots), int(total - roots), nil
}

// RepairCounters walks the article's comments and rewrites the ones whose
// stored counters disagree with their children and likes.
func (r *mongoCommentRepo) RepairCounters(ctx context.Context, articleID string) (int, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"article_id": articleID})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	repaired := 0
	for cursor.Next(ctx) {
		var comment models.Comment
		if err := cursor.Decode(&comment); err != nil {
			return repaired, err
		}

		children, err := r.coll.CountDocuments(ctx, bson.M{"parent": comment.ID})
		if err != nil {
			return repaired, err
		}
		if int(children) == comment.RepliesCount && len(comment.Likes) == comment.LikesCount {
			continue
		}

		update := bson.M{"$set": bson.M{
			"replies_count": int(children),
			"likes_count":   len(comment.Likes),
			"updated_at":    time.Now(),
		}}
		if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": comment.ID}, update); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, cursor.Err()
}

func (r *mongoCommentRepo) Count(ctx context.Context) (int, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	return int(count), err
}

func (r *mongoCommentRepo) StreamByArticle(ctx context.Context, articleID string, callback func(*models.Comment) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"article_id": articleID}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var comment models.Comment
		if err := cursor.Decode(&comment); err != nil {
			return err
		}
		normalizeComment(&comment)
		if err := callback(&comment); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (r *mongoCommentRepo) findAndUpdate(ctx context.Context, filter, update interface{}) (*models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeComment(r.coll.FindOneAndUpdate(ctx, filter, update, opts))
}

func sortDocument(sortBy models.SortOrder) bson.D {
	switch sortBy {
	case models.SortPopular:
		return bson.D{{Key: "likes_count", Value: -1}, {Key: "created_at", Value: -1}}
	case models.SortNewest:
		return bson.D{{Key: "created_at", Value: -1}}
	case models.SortOldest:
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return nil
	}
}

func decodeComment(result *mongo.SingleResult) (*models.Comment, error) {
	var comment models.Comment
	err := result.Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalizeComment(&comment)
	return &comment, nil
}

func normalizeComment(c *models.Comment) {
	if c.Likes == nil {
		c.Likes = []string{}
	}
}
