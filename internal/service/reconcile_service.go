package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/comment-tree-api/internal/config"
	"github.com/comment-tree-api/internal/repository"
	"github.com/rs/zerolog"
)

// reconcileService is the concrete implementation of ReconcileService
type reconcileService struct {
	articles repository.ArticleRepository
	article  ArticleService
	interval time.Duration
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	running  bool
	mu       sync.Mutex
	// Semaphore: buffered channel bounding concurrent article reconciliations
	sem chan struct{}
}

func newReconcileService(articles repository.ArticleRepository, article ArticleService, cfg config.ReconcileConfig, log zerolog.Logger) *reconcileService {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &reconcileService{
		articles: articles,
		article:  article,
		interval: cfg.Interval,
		log:      log.With().Str("service", "reconcile").Logger(),
		sem:      make(chan struct{}, workers),
	}
}

// StartProcessor launches a sweep every interval until the context is
// cancelled or StopProcessor is called. The loop is registered before
// StartProcessor returns, so a following StopProcessor always stops it.
func (s *reconcileService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.interval <= 0 {
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.log.Info().Dur("interval", s.interval).Int("workers", cap(s.sem)).Msg("Reconciler started")
	go s.run(s.ctx, s.done)
}

func (s *reconcileService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Reconciler stopping")
			return
		case <-ticker.C:
			if _, err := s.ReconcileAll(ctx); err != nil {
				s.log.Error().Err(err).Msg("Reconciliation sweep failed")
			}
		}
	}
}

// StopProcessor cancels the sweep loop and waits for in-flight work
func (s *reconcileService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.running = false
	s.log.Info().Msg("Reconciler stopped")
}

// ReconcileAll reconciles every known article on the bounded worker pool and
// returns how many were reconciled successfully. Individual failures are logged.
func (s *reconcileService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.articles.GetAllArticleIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list articles: %w", err)
	}

	var (
		wg        sync.WaitGroup
		succeeded int64
	)

	for _, id := range ids {
		// Acquire a slot; blocks while all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return int(succeeded), ctx.Err()
		}

		wg.Add(1)
		go func(articleID string) {
			defer wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("article_id", articleID).
						Msg("Reconciliation panicked - recovered")
				}
			}()

			if _, err := s.article.Reconcile(ctx, articleID); err != nil {
				s.log.Error().Err(err).Str("article_id", articleID).Msg("Article reconciliation failed")
				return
			}
			atomic.AddInt64(&succeeded, 1)
		}(id)
	}

	wg.Wait()
	s.log.Debug().Int("articles", len(ids)).Int64("reconciled", succeeded).Msg("Reconciliation sweep finished")
	return int(succeeded), nil
}
