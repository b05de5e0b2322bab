package api

import (
	"net/http"

	"github.com/comment-tree-api/internal/config"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/service"
	"github.com/comment-tree-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services     *service.Services
	defaultLimit int
	log          zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	defaultLimit := cfg.Comments.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &CommentHandler{
		services:     services,
		defaultLimit: defaultLimit,
		log:          log.With().Str("handler", "comment").Logger(),
	}
}

// ListComments handles GET /comments?article_id=...&sort_by=...&parent=...&page=...&limit=...
//
// Without a parent parameter every comment of the article is listed; an empty
// parent or "null" lists root comments; any other value lists direct children.
func (h *CommentHandler) ListComments(c *gin.Context) {
	articleID := c.Query("article_id")
	if articleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id parameter is required"})
		return
	}

	page, limit, errs := validation.ParsePagination(c.Query("page"), c.Query("limit"), h.defaultLimit)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidPagination.Error(), "details": errs})
		return
	}

	query := models.CommentQuery{
		ArticleID: articleID,
		SortBy:    models.ParseSortOrder(c.Query("sort_by")),
		Page:      page,
		Limit:     limit,
	}
	if parent, ok := c.GetQuery("parent"); ok {
		if parent == "null" {
			parent = ""
		}
		query.Parent = &parent
	}

	comments, err := h.services.Comment.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment handles POST /comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /comments and returns the updated article
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	var req models.CommentIDRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.services.Comment.Delete(c.Request.Context(), req.CommentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// UpdateComment handles PATCH /comments
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req models.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Comment.UpdateBody(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// LikeComment handles POST /comments/like
func (h *CommentHandler) LikeComment(c *gin.Context) {
	var req models.CommentLikeRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Like.LikeComment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// UnlikeComment handles POST /comments/unlike
func (h *CommentHandler) UnlikeComment(c *gin.Context) {
	var req models.CommentLikeRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Like.UnlikeComment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}
