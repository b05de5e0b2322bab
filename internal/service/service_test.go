package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/comment-tree-api/internal/config"
	"github.com/comment-tree-api/internal/mocks"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *service.Services
	articles *mocks.MockArticleRepository
	comments *mocks.MockCommentRepository
}

func testConfig() *config.Config {
	return &config.Config{
		Comments:  config.CommentsConfig{DefaultLimit: 10, MaxBodyWords: models.MaxCommentWords},
		Reconcile: config.ReconcileConfig{Interval: 0, Workers: 4},
	}
}

func newFixture() *fixture {
	repos, articles, comments := mocks.NewRepositories()
	return &fixture{
		svc:      service.NewServices(repos, testConfig(), zerolog.Nop()),
		articles: articles,
		comments: comments,
	}
}

func strPtr(s string) *string { return &s }

func author(id string) models.Author {
	return models.Author{ID: id, Name: "User " + id}
}

func (f *fixture) root(t *testing.T, articleID, body string) *models.Comment {
	t.Helper()
	c, err := f.svc.Comment.Create(context.Background(), &models.CreateCommentRequest{
		ArticleID:   articleID,
		CommentBody: body,
		Author:      author("u1"),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) reply(t *testing.T, parent *models.Comment, body string) *models.Comment {
	t.Helper()
	c, err := f.svc.Comment.Create(context.Background(), &models.CreateCommentRequest{
		ArticleID:   parent.ArticleID,
		CommentBody: body,
		Parent:      strPtr(parent.ID),
		Author:      author("u2"),
	})
	require.NoError(t, err)
	return c
}

// seed stores a comment directly with a fixed creation time and like count
func (f *fixture) seed(t *testing.T, id, articleID string, parent *string, likes int, createdAt time.Time) {
	t.Helper()
	likers := make([]string, likes)
	for i := range likers {
		likers[i] = id + "-liker-" + string(rune('a'+i))
	}
	require.NoError(t, f.comments.Create(context.Background(), &models.Comment{
		ID:         id,
		ArticleID:  articleID,
		Body:       "body " + id,
		Parent:     parent,
		Likes:      likers,
		LikesCount: likes,
		Author:     author("seed"),
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}))
}

// assertTreeConsistent checks the stored counters against the stored comments
func (f *fixture) assertTreeConsistent(t *testing.T, articleID string) {
	t.Helper()
	ctx := context.Background()

	roots, replies, err := f.comments.CountByArticle(ctx, articleID)
	require.NoError(t, err)

	article, err := f.articles.GetByArticleID(ctx, articleID)
	require.NoError(t, err)
	if article == nil {
		require.Zero(t, roots+replies, "comments exist without an article")
		return
	}
	require.Equal(t, roots, article.CommentsCount, "comments_count")
	require.Equal(t, replies, article.RepliesCount, "replies_count")
	require.Equal(t, len(article.Likes), article.LikesCount, "article likes_count")

	for _, id := range f.comments.IDs() {
		c := f.comments.Snapshot(id)
		if c == nil || c.ArticleID != articleID {
			continue
		}
		children, err := f.comments.GetChildIDs(ctx, id)
		require.NoError(t, err)
		require.Equal(t, len(children), c.RepliesCount, "replies_count of %s", id)
		require.Equal(t, len(c.Likes), c.LikesCount, "likes_count of %s", id)
	}
}
