package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/comment-tree-api/internal/config"
	"github.com/comment-tree-api/internal/metrics"
	"github.com/comment-tree-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger, checks ...HealthChecker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	router.GET("/health", healthCheck(checks))
	router.GET("/stats", statsHandler(services))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	articles := router.Group("/articles")
	{
		articles.GET("", articleHandler.GetArticle)
		articles.POST("/like", articleHandler.LikeArticle)
		articles.POST("/unlike", articleHandler.UnlikeArticle)
		articles.POST("/reconcile", articleHandler.Reconcile)
	}

	comments := router.Group("/comments")
	{
		comments.GET("", commentHandler.ListComments)
		comments.POST("", commentHandler.CreateComment)
		comments.DELETE("", commentHandler.DeleteComment)
		comments.PATCH("", commentHandler.UpdateComment)
		comments.POST("/like", commentHandler.LikeComment)
		comments.POST("/unlike", commentHandler.UnlikeComment)
		comments.GET("/export", exportHandler.StreamThread)
	}

	return router
}

// healthCheck returns the health status, 503 if a store is unreachable
func healthCheck(checks []HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unhealthy",
					"error":     err.Error(),
					"timestamp": time.Now().Format(time.RFC3339),
					"service":   "comment-tree-api",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "comment-tree-api",
		})
	}
}

// statsHandler returns entity counts
func statsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		articlesCount, _ := services.Export.GetCount(ctx, "articles")
		commentsCount, _ := services.Export.GetCount(ctx, "comments")

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"articles": articlesCount,
				"comments": commentsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware propagates or generates a request id
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("Request completed")
	}
}

// metricsMiddleware records request counts and latency
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		timer := metrics.NewTimer()
		metrics.HTTPRequestsInFlight.Inc()

		c.Next()

		metrics.HTTPRequestsInFlight.Dec()

		// Route templates keep label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		timer.ObserveDuration(metrics.HTTPRequestDuration.WithLabelValues(method, path))
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
