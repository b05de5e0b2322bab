package api

import (
	"net/http"

	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// GetArticle handles GET /articles?article_id=...
// An article that was never liked or commented on yields 204.
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	articleID := c.Query("article_id")
	if articleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id parameter is required"})
		return
	}

	article, err := h.services.Article.Get(c.Request.Context(), articleID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if article == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, article)
}

// LikeArticle handles POST /articles/like
func (h *ArticleHandler) LikeArticle(c *gin.Context) {
	var req models.LikeRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.services.Like.LikeArticle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// UnlikeArticle handles POST /articles/unlike
func (h *ArticleHandler) UnlikeArticle(c *gin.Context) {
	var req models.LikeRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.services.Like.UnlikeArticle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Reconcile handles POST /articles/reconcile
func (h *ArticleHandler) Reconcile(c *gin.Context) {
	var req struct {
		ArticleID string `json:"article_id"`
	}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.services.Article.Reconcile(c.Request.Context(), req.ArticleID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("article_id", req.ArticleID).
		Int("comments_repaired", result.CommentsRepaired).
		Msg("Reconciliation requested")

	c.JSON(http.StatusOK, result)
}
