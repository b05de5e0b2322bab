package service

import (
	"context"
	"fmt"
	"time"

	"github.com/comment-tree-api/internal/metrics"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/repository"
	"github.com/comment-tree-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService.
// Multi-document updates run sequentially without a transaction: a failure
// part way leaves earlier writes applied and is reported to the caller.
type commentService struct {
	articles  repository.ArticleRepository
	comments  repository.CommentRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newCommentService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *commentService {
	return &commentService{
		articles:  repos.Article,
		comments:  repos.Comment,
		validator: validator,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// Create inserts a root comment or reply and bumps the parent and article counters
func (s *commentService) Create(ctx context.Context, req *models.CreateCommentRequest) (*models.Comment, error) {
	if err := newValidationError(s.validator.ValidateCreateComment(req)); err != nil {
		return nil, err
	}

	if req.Parent != nil {
		parent, err := s.comments.GetByID(ctx, *req.Parent)
		if err != nil {
			return nil, fmt.Errorf("get parent comment: %w", err)
		}
		if parent != nil && parent.ArticleID != req.ArticleID {
			return nil, newValidationError([]validation.ValidationError{{
				Field:   "parent",
				Message: "parent belongs to a different article",
				Value:   *req.Parent,
			}})
		}
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ID:        uuid.New().String(),
		ArticleID: req.ArticleID,
		Body:      req.CommentBody,
		Parent:    req.Parent,
		Likes:     []string{},
		Author:    req.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	rootDelta, replyDelta := 1, 0
	if !comment.IsRoot() {
		rootDelta, replyDelta = 0, 1

		parent, err := s.comments.IncrementReplies(ctx, *comment.Parent, 1)
		if err != nil {
			return nil, fmt.Errorf("increment parent replies: %w", err)
		}
		if parent == nil {
			s.log.Warn().
				Str("comment_id", comment.ID).
				Str("parent_id", *comment.Parent).
				Msg("Parent comment not found, reply stored without parent counter update")
		}
	}

	if _, err := s.articles.UpsertCounters(ctx, comment.ArticleID, rootDelta, replyDelta); err != nil {
		return nil, fmt.Errorf("update article counters: %w", err)
	}

	metrics.ObserveCommentCreated(comment.IsRoot())
	s.log.Info().
		Str("comment_id", comment.ID).
		Str("article_id", comment.ArticleID).
		Bool("root", comment.IsRoot()).
		Msg("Comment created")

	return comment, nil
}

// Delete removes a comment and its whole subtree, then decrements the parent
// and article counters. The updated article is returned.
func (s *commentService) Delete(ctx context.Context, commentID string) (*models.Article, error) {
	if err := newValidationError(s.validator.ValidateCommentID(&models.CommentIDRequest{CommentID: commentID})); err != nil {
		return nil, err
	}

	target, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if target == nil {
		return nil, ErrCommentNotFound
	}

	roots, replies, err := s.deleteSubtree(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	metrics.ObserveSubtreeDeleted(roots, replies)

	if target.Parent != nil {
		parent, err := s.comments.IncrementReplies(ctx, *target.Parent, -1)
		if err != nil {
			return nil, fmt.Errorf("decrement parent replies: %w", err)
		}
		if parent == nil {
			s.log.Warn().Str("parent_id", *target.Parent).Msg("Parent comment not found while decrementing replies")
		}
	}

	article, err := s.articles.IncrementCounters(ctx, target.ArticleID, -roots, -replies)
	if err != nil {
		return nil, fmt.Errorf("update article counters: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	s.log.Info().
		Str("comment_id", commentID).
		Str("article_id", target.ArticleID).
		Int("roots_deleted", roots).
		Int("replies_deleted", replies).
		Msg("Comment subtree deleted")

	return article, nil
}

// deleteSubtree removes rootID and all its descendants using an explicit stack.
// It returns how many root comments and replies were removed.
func (s *commentService) deleteSubtree(ctx context.Context, rootID string) (int, int, error) {
	roots, replies := 0, 0
	stack := []string{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		deleted, err := s.comments.DeleteByID(ctx, id)
		if err != nil {
			return roots, replies, fmt.Errorf("%w: delete comment %s: %v", ErrDeletionFailed, id, err)
		}
		if deleted == nil {
			return roots, replies, fmt.Errorf("%w: comment %s no longer exists", ErrDeletionFailed, id)
		}

		if deleted.IsRoot() {
			roots++
		} else {
			replies++
		}

		children, err := s.comments.GetChildIDs(ctx, id)
		if err != nil {
			return roots, replies, fmt.Errorf("list children of %s: %w", id, err)
		}
		stack = append(stack, children...)
	}

	return roots, replies, nil
}

// UpdateBody replaces the text of a comment
func (s *commentService) UpdateBody(ctx context.Context, req *models.UpdateCommentRequest) (*models.Comment, error) {
	if err := newValidationError(s.validator.ValidateCommentUpdate(req)); err != nil {
		return nil, err
	}

	comment, err := s.comments.UpdateBody(ctx, req.CommentID, req.Update)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// List returns one page of an article's comments
func (s *commentService) List(ctx context.Context, q models.CommentQuery) ([]*models.Comment, error) {
	if q.ArticleID == "" {
		return nil, newValidationError([]validation.ValidationError{{Field: "article_id", Message: "article_id is required"}})
	}
	if q.Page < 1 || q.Limit < 1 {
		return nil, ErrInvalidPagination
	}
	q.SortBy = models.ParseSortOrder(string(q.SortBy))

	comments, err := s.comments.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Get retrieves a single comment
func (s *commentService) Get(ctx context.Context, commentID string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
