package service

import (
	"context"
	"io"

	"github.com/comment-tree-api/internal/config"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/repository"
	"github.com/comment-tree-api/internal/validation"
	"github.com/rs/zerolog"
)

// LikeService toggles likes on articles and comments
type LikeService interface {
	LikeArticle(ctx context.Context, req *models.LikeRequest) (*models.Article, error)
	UnlikeArticle(ctx context.Context, req *models.LikeRequest) (*models.Article, error)
	LikeComment(ctx context.Context, req *models.CommentLikeRequest) (*models.Comment, error)
	UnlikeComment(ctx context.Context, req *models.CommentLikeRequest) (*models.Comment, error)
}

// CommentService maintains the comment forest and its counters
type CommentService interface {
	Create(ctx context.Context, req *models.CreateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, commentID string) (*models.Article, error)
	UpdateBody(ctx context.Context, req *models.UpdateCommentRequest) (*models.Comment, error)
	List(ctx context.Context, q models.CommentQuery) ([]*models.Comment, error)
	Get(ctx context.Context, commentID string) (*models.Comment, error)
}

// ArticleService reads and repairs article aggregates
type ArticleService interface {
	Get(ctx context.Context, articleID string) (*models.Article, error)
	Reconcile(ctx context.Context, articleID string) (*models.ReconcileResult, error)
}

// ReconcileService periodically repairs counters of every article
type ReconcileService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	ReconcileAll(ctx context.Context) (int, error)
}

// ExportService streams comment threads
type ExportService interface {
	StreamThread(ctx context.Context, w io.Writer, articleID, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Like      LikeService
	Comment   CommentService
	Article   ArticleService
	Reconcile ReconcileService
	Export    ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	validator := validation.NewValidator(cfg.Comments.MaxBodyWords)
	articleSvc := newArticleService(repos, log)

	return &Services{
		Like:      newLikeService(repos, validator, log),
		Comment:   newCommentService(repos, validator, log),
		Article:   articleSvc,
		Reconcile: newReconcileService(repos.Article, articleSvc, cfg.Reconcile, log),
		Export:    newExportService(repos, log),
	}
}
