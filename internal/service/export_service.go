package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/comment-tree-api/internal/metrics"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/repository"
	"github.com/rs/zerolog"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

// flushEvery is the number of comments written between flushes
const flushEvery = 100

type flusher interface {
	Flush()
}

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamThread writes every comment of an article in creation order.
// The format must be validated before the caller commits response headers.
func (s *exportService) StreamThread(ctx context.Context, w io.Writer, articleID, format string) error {
	if err := ValidateExportFormat(format); err != nil {
		return err
	}

	s.log.Info().Str("article_id", articleID).Str("format", format).Msg("Starting thread export")

	var (
		count int
		err   error
	)
	switch format {
	case FormatNDJSON:
		count, err = s.streamNDJSON(ctx, w, articleID)
	case FormatJSON:
		count, err = s.streamJSON(ctx, w, articleID)
	}

	metrics.ObserveExport(format, err, count)
	s.log.Info().Str("article_id", articleID).Int("count", count).Msg("Thread export completed")
	return err
}

// ValidateExportFormat rejects unsupported export formats
func ValidateExportFormat(format string) error {
	switch format {
	case FormatNDJSON, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: unsupported format: %s", ErrInvalidInput, format)
	}
}

func (s *exportService) streamNDJSON(ctx context.Context, w io.Writer, articleID string) (int, error) {
	f, _ := w.(flusher)
	count := 0

	err := s.repos.Comment.StreamByArticle(ctx, articleID, func(comment *models.Comment) error {
		data, err := json.Marshal(comment)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
		count++

		if count%flushEvery == 0 && f != nil {
			f.Flush()
		}
		return nil
	})
	return count, err
}

func (s *exportService) streamJSON(ctx context.Context, w io.Writer, articleID string) (int, error) {
	if _, err := w.Write([]byte("[")); err != nil {
		return 0, err
	}
	count := 0

	err := s.repos.Comment.StreamByArticle(ctx, articleID, func(comment *models.Comment) error {
		if count > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}

		data, err := json.Marshal(comment)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		count++
		return nil
	})

	if _, werr := w.Write([]byte("]")); err == nil {
		err = werr
	}
	return count, err
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "articles":
		return s.repos.Article.Count(ctx)
	case "comments":
		return s.repos.Comment.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
