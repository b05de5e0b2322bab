package service

import (
	"context"
	"fmt"

	"github.com/comment-tree-api/internal/metrics"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/repository"
	"github.com/comment-tree-api/internal/validation"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles repository.ArticleRepository
	comments repository.CommentRepository
	log      zerolog.Logger
}

func newArticleService(repos *repository.Repositories, log zerolog.Logger) *articleService {
	return &articleService{
		articles: repos.Article,
		comments: repos.Comment,
		log:      log.With().Str("service", "article").Logger(),
	}
}

// Get returns the article aggregate, or nil if it has never been liked or commented on
func (s *articleService) Get(ctx context.Context, articleID string) (*models.Article, error) {
	if articleID == "" {
		return nil, newValidationError([]validation.ValidationError{{Field: "article_id", Message: "article_id is required"}})
	}

	article, err := s.articles.GetByArticleID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// Reconcile recomputes every counter of an article from the stored comments and likes
func (s *articleService) Reconcile(ctx context.Context, articleID string) (result *models.ReconcileResult, err error) {
	if articleID == "" {
		return nil, newValidationError([]validation.ValidationError{{Field: "article_id", Message: "article_id is required"}})
	}
	defer func() {
		repaired := 0
		if result != nil {
			repaired = result.CommentsRepaired
		}
		metrics.ObserveReconcile(err, repaired)
	}()

	existing, err := s.articles.GetByArticleID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if existing == nil {
		return nil, ErrArticleNotFound
	}

	repaired, err := s.comments.RepairCounters(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("repair comment counters: %w", err)
	}

	roots, replies, err := s.comments.CountByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	article, err := s.articles.ReplaceCounters(ctx, articleID, roots, replies)
	if err != nil {
		return nil, fmt.Errorf("replace article counters: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	if repaired > 0 || existing.CommentsCount != roots || existing.RepliesCount != replies || existing.LikesCount != len(existing.Likes) {
		s.log.Info().
			Str("article_id", articleID).
			Int("comments_repaired", repaired).
			Int("comments_count", roots).
			Int("replies_count", replies).
			Msg("Article counters reconciled")
	}

	return &models.ReconcileResult{Article: article, CommentsRepaired: repaired}, nil
}
