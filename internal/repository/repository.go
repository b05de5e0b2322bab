package repository

import (
	"context"

	"github.com/comment-tree-api/internal/database"
	"github.com/comment-tree-api/internal/models"
)

// ArticleRepository defines the interface for article aggregate operations.
//
// Methods that return *models.Article return nil with a nil error when the
// filter matched no document.
type ArticleRepository interface {
	GetByArticleID(ctx context.Context, articleID string) (*models.Article, error)
	// AddLike appends userID and increments likes_count in one update, creating
	// the article if it does not exist. It returns nil if userID already liked it.
	AddLike(ctx context.Context, articleID, userID string) (*models.Article, error)
	// RemoveLike removes userID and decrements likes_count in one update.
	// It returns nil if the article is missing or userID had not liked it.
	RemoveLike(ctx context.Context, articleID, userID string) (*models.Article, error)
	// UpsertCounters adds the deltas to the comment counters, creating the
	// article seeded with the deltas if it does not exist.
	UpsertCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error)
	// IncrementCounters adds the deltas to an existing article only.
	IncrementCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error)
	// ReplaceCounters overwrites the comment counters and recomputes likes_count from likes.
	ReplaceCounters(ctx context.Context, articleID string, commentsCount, repliesCount int) (*models.Article, error)
	GetAllArticleIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	List(ctx context.Context, query models.CommentQuery) ([]*models.Comment, error)
	GetChildIDs(ctx context.Context, parentID string) ([]string, error)
	// DeleteByID removes the comment and returns the deleted document, or nil
	// if it was already gone.
	DeleteByID(ctx context.Context, id string) (*models.Comment, error)
	IncrementReplies(ctx context.Context, id string, delta int) (*models.Comment, error)
	// AddLike and RemoveLike behave like their ArticleRepository counterparts
	// but never create the comment.
	AddLike(ctx context.Context, id, userID string) (*models.Comment, error)
	RemoveLike(ctx context.Context, id, userID string) (*models.Comment, error)
	UpdateBody(ctx context.Context, id, body string) (*models.Comment, error)
	// CountByArticle returns the number of root comments and replies of an article
	CountByArticle(ctx context.Context, articleID string) (roots int, replies int, err error)
	// RepairCounters recomputes replies_count and likes_count for every comment
	// of the article and returns how many comments were changed.
	RepairCounters(ctx context.Context, articleID string) (int, error)
	Count(ctx context.Context) (int, error)
	StreamByArticle(ctx context.Context, articleID string, callback func(*models.Comment) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Comment CommentRepository
}

// New creates PostgreSQL-backed repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(db),
		Comment: NewCommentRepo(db),
	}
}

// NewMongo creates MongoDB-backed repositories
func NewMongo(db *database.MongoDB) *Repositories {
	return &Repositories{
		Article: NewMongoArticleRepo(db.Collection(database.ArticlesCollection)),
		Comment: NewMongoCommentRepo(db.Collection(database.CommentsCollection)),
	}
}
