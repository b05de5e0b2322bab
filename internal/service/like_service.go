package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/comment-tree-api/internal/metrics"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/repository"
	"github.com/comment-tree-api/internal/validation"
	"github.com/rs/zerolog"
)

// likeService is the concrete implementation of LikeService.
// Membership is checked on a fresh read, then the mutation is applied by a
// store update that re-checks membership, so a concurrent toggle that wins the
// race surfaces as ErrAlreadyLiked or ErrNotLiked.
type likeService struct {
	articles  repository.ArticleRepository
	comments  repository.CommentRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newLikeService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *likeService {
	return &likeService{
		articles:  repos.Article,
		comments:  repos.Comment,
		validator: validator,
		log:       log.With().Str("service", "like").Logger(),
	}
}

// LikeArticle adds req.UserID to the article likes, creating the article on first touch
func (s *likeService) LikeArticle(ctx context.Context, req *models.LikeRequest) (article *models.Article, err error) {
	defer func() { observeLike("article", "like", err) }()

	if err := newValidationError(s.validator.ValidateArticleLike(req)); err != nil {
		return nil, err
	}

	existing, err := s.articles.GetByArticleID(ctx, req.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if existing != nil && existing.LikedBy(req.UserID) {
		return nil, ErrAlreadyLiked
	}

	article, err = s.articles.AddLike(ctx, req.ArticleID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("like article: %w", err)
	}
	if article == nil {
		return nil, ErrAlreadyLiked
	}

	s.log.Debug().Str("article_id", req.ArticleID).Str("user_id", req.UserID).Int("likes", article.LikesCount).Msg("Article liked")
	return article, nil
}

// UnlikeArticle removes req.UserID from the article likes
func (s *likeService) UnlikeArticle(ctx context.Context, req *models.LikeRequest) (article *models.Article, err error) {
	defer func() { observeLike("article", "unlike", err) }()

	if err := newValidationError(s.validator.ValidateArticleLike(req)); err != nil {
		return nil, err
	}

	existing, err := s.articles.GetByArticleID(ctx, req.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if existing == nil {
		return nil, ErrArticleNotFound
	}
	if !existing.LikedBy(req.UserID) {
		return nil, ErrNotLiked
	}

	article, err = s.articles.RemoveLike(ctx, req.ArticleID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("unlike article: %w", err)
	}
	if article == nil {
		return nil, ErrNotLiked
	}

	s.log.Debug().Str("article_id", req.ArticleID).Str("user_id", req.UserID).Int("likes", article.LikesCount).Msg("Article unliked")
	return article, nil
}

// LikeComment adds req.UserID to the comment likes
func (s *likeService) LikeComment(ctx context.Context, req *models.CommentLikeRequest) (comment *models.Comment, err error) {
	defer func() { observeLike("comment", "like", err) }()

	if err := newValidationError(s.validator.ValidateCommentLike(req)); err != nil {
		return nil, err
	}

	existing, err := s.comments.GetByID(ctx, req.CommentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if existing == nil {
		return nil, ErrCommentNotFound
	}
	if existing.LikedBy(req.UserID) {
		return nil, ErrAlreadyLiked
	}

	comment, err = s.comments.AddLike(ctx, req.CommentID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("like comment: %w", err)
	}
	if comment == nil {
		return nil, ErrAlreadyLiked
	}
	return comment, nil
}

// UnlikeComment removes req.UserID from the comment likes
func (s *likeService) UnlikeComment(ctx context.Context, req *models.CommentLikeRequest) (comment *models.Comment, err error) {
	defer func() { observeLike("comment", "unlike", err) }()

	if err := newValidationError(s.validator.ValidateCommentLike(req)); err != nil {
		return nil, err
	}

	existing, err := s.comments.GetByID(ctx, req.CommentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if existing == nil {
		return nil, ErrCommentNotFound
	}
	if !existing.LikedBy(req.UserID) {
		return nil, ErrNotLiked
	}

	comment, err = s.comments.RemoveLike(ctx, req.CommentID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("unlike comment: %w", err)
	}
	if comment == nil {
		return nil, ErrNotLiked
	}
	return comment, nil
}

func observeLike(target, action string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyLiked):
		result = "already_liked"
	case errors.Is(err, ErrNotLiked):
		result = "not_liked"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrInvalidInput):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.ObserveLike(target, action, result)
}
