package api

import (
	"net/http"

	"github.com/comment-tree-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles thread export
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamThread handles GET /comments/export?article_id=...&format=...
// Streams the article's comments directly to the response
func (h *ExportHandler) StreamThread(c *gin.Context) {
	articleID := c.Query("article_id")
	if articleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id parameter is required"})
		return
	}

	format := c.DefaultQuery("format", service.FormatNDJSON)
	if err := service.ValidateExportFormat(format); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}

	contentType := "application/x-ndjson"
	if format == service.FormatJSON {
		contentType = "application/json"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename=comments."+format)
	c.Status(http.StatusOK)

	if err := h.services.Export.StreamThread(c.Request.Context(), c.Writer, articleID, format); err != nil {
		// Can't return error JSON after streaming has started
		h.log.Error().Err(err).Str("article_id", articleID).Msg("Export failed")
	}
}
