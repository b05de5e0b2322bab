package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/comment-tree-api/internal/mocks"
	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The contract below runs against every CommentRepository/ArticleRepository
// implementation. Article ids are random so suites can share a database.

func TestInMemoryRepositories(t *testing.T) {
	repos, _, _ := mocks.NewRepositories()
	runRepositoryContract(t, repos)
}

func runRepositoryContract(t *testing.T, repos *repository.Repositories) {
	t.Run("ArticleLikes", func(t *testing.T) { testArticleLikes(t, repos.Article) })
	t.Run("ArticleCounters", func(t *testing.T) { testArticleCounters(t, repos.Article) })
	t.Run("CommentCRUD", func(t *testing.T) { testCommentCRUD(t, repos.Comment) })
	t.Run("CommentLikes", func(t *testing.T) { testCommentLikes(t, repos.Comment) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, repos.Comment) })
	t.Run("ListSorting", func(t *testing.T) { testListSorting(t, repos.Comment) })
	t.Run("CountAndRepair", func(t *testing.T) { testCountAndRepair(t, repos.Comment) })
	t.Run("StreamByArticle", func(t *testing.T) { testStreamByArticle(t, repos.Comment) })
}

func newArticleID() string {
	return "article-" + uuid.New().String()
}

func newComment(articleID string, parent *string, createdAt time.Time) *models.Comment {
	return &models.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		Body:      "body",
		Parent:    parent,
		Likes:     []string{},
		Author:    models.Author{ID: "author-1", Name: "Author"},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func mustCreate(t *testing.T, repo repository.CommentRepository, c *models.Comment) *models.Comment {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func testArticleLikes(t *testing.T, repo repository.ArticleRepository) {
	ctx := context.Background()
	articleID := newArticleID()

	missing, err := repo.GetByArticleID(ctx, articleID)
	require.NoError(t, err)
	require.Nil(t, missing, "unknown article")

	// First like creates the article
	article, err := repo.AddLike(ctx, articleID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, 1, article.LikesCount)
	assert.Equal(t, []string{"user-1"}, article.Likes)

	// Duplicate like is rejected by the store
	dup, err := repo.AddLike(ctx, articleID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, dup, "duplicate like")

	_, err = repo.AddLike(ctx, articleID, "user-2")
	require.NoError(t, err)

	article, err = repo.RemoveLike(ctx, articleID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, 1, article.LikesCount)
	assert.False(t, article.LikedBy("user-1"))
	assert.True(t, article.LikedBy("user-2"))

	again, err := repo.RemoveLike(ctx, articleID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, again, "unliking twice")

	gone, err := repo.RemoveLike(ctx, newArticleID(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, gone, "RemoveLike must not create articles")
}

func testArticleCounters(t *testing.T, repo repository.ArticleRepository) {
	ctx := context.Background()
	articleID := newArticleID()

	// IncrementCounters never creates
	article, err := repo.IncrementCounters(ctx, articleID, 1, 0)
	require.NoError(t, err)
	require.Nil(t, article, "unknown article")

	article, err = repo.UpsertCounters(ctx, articleID, 1, 0)
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, 1, article.CommentsCount)
	assert.Equal(t, 0, article.RepliesCount)
	assert.Equal(t, 0, article.LikesCount)

	article, err = repo.UpsertCounters(ctx, articleID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, article.CommentsCount)
	assert.Equal(t, 2, article.RepliesCount)

	article, err = repo.IncrementCounters(ctx, articleID, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, article.CommentsCount)
	assert.Equal(t, 1, article.RepliesCount)

	_, err = repo.AddLike(ctx, articleID, "user-1")
	require.NoError(t, err)

	article, err = repo.ReplaceCounters(ctx, articleID, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, article.CommentsCount)
	assert.Equal(t, 7, article.RepliesCount)
	assert.Equal(t, 1, article.LikesCount)

	ids, err := repo.GetAllArticleIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, articleID)
}

func testCommentCRUD(t *testing.T, repo repository.CommentRepository) {
	ctx := context.Background()
	articleID := newArticleID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	root := mustCreate(t, repo, newComment(articleID, nil, now))
	reply := mustCreate(t, repo, newComment(articleID, &root.ID, now.Add(time.Second)))

	stored, err := repo.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.Parent)
	assert.Equal(t, root.ID, *stored.Parent)

	children, err := repo.GetChildIDs(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reply.ID}, children)

	updated, err := repo.IncrementReplies(ctx, root.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RepliesCount)

	updated, err = repo.UpdateBody(ctx, root.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Body)

	deleted, err := repo.DeleteByID(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, reply.ID, deleted.ID)

	deleted, err = repo.DeleteByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted, "second delete")

	missing, err := repo.UpdateBody(ctx, reply.ID, "x")
	require.NoError(t, err)
	assert.Nil(t, missing, "updating a deleted comment")
}

func testCommentLikes(t *testing.T, repo repository.CommentRepository) {
	ctx := context.Background()
	c := mustCreate(t, repo, newComment(newArticleID(), nil, time.Now().UTC()))

	liked, err := repo.AddLike(ctx, c.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, liked)
	assert.Equal(t, 1, liked.LikesCount)

	dup, err := repo.AddLike(ctx, c.ID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, dup, "duplicate like")

	unliked, err := repo.RemoveLike(ctx, c.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, unliked)
	assert.Equal(t, 0, unliked.LikesCount)
	assert.Empty(t, unliked.Likes)

	again, err := repo.RemoveLike(ctx, c.ID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, again, "unliking twice")

	missing, err := repo.AddLike(ctx, uuid.New().String(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, missing, "AddLike must not create comments")
}

func testListFilters(t *testing.T, repo repository.CommentRepository) {
	ctx := context.Background()
	articleID := newArticleID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	r1 := mustCreate(t, repo, newComment(articleID, nil, base))
	r2 := mustCreate(t, repo, newComment(articleID, nil, base.Add(time.Second)))
	mustCreate(t, repo, newComment(articleID, &r1.ID, base.Add(2*time.Second)))
	mustCreate(t, repo, newComment(articleID, &r1.ID, base.Add(3*time.Second)))
	mustCreate(t, repo, newComment(newArticleID(), nil, base))

	empty := ""
	tests := []struct {
		name     string
		parent   *string
		expected int
	}{
		{"all comments", nil, 4},
		{"roots only", &empty, 2},
		{"children of r1", &r1.ID, 2},
		{"children of r2", &r2.ID, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, models.CommentQuery{
				ArticleID: articleID,
				Parent:    tt.parent,
				SortBy:    models.SortOldest,
				Page:      1,
				Limit:     10,
			})
			require.NoError(t, err)
			assert.Len(t, got, tt.expected)
		})
	}

	page2, err := repo.List(ctx, models.CommentQuery{ArticleID: articleID, SortBy: models.SortOldest, Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func testListSorting(t *testing.T, repo repository.CommentRepository) {
	ctx := context.Background()
	articleID := newArticleID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	var ids []string
	for i, likes := range []int{1, 3, 0, 3} {
		c := mustCreate(t, repo, newComment(articleID, nil, base.Add(time.Duration(i)*time.Second)))
		for u := 0; u < likes; u++ {
			_, err := repo.AddLike(ctx, c.ID, fmt.Sprintf("user-%d", u))
			require.NoError(t, err)
		}
		ids = append(ids, c.ID)
	}

	tests := []struct {
		sort     models.SortOrder
		expected []string
	}{
		// Equal like counts fall back to newest first
		{models.SortPopular, []string{ids[3], ids[1], ids[0], ids[2]}},
		{models.SortNewest, []string{ids[3], ids[2], ids[1], ids[0]}},
		{models.SortOldest, []string{ids[0], ids[1], ids[2], ids[3]}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got, err := repo.List(ctx, models.CommentQuery{ArticleID: articleID, SortBy: tt.sort, Page: 1, Limit: 10})
			require.NoError(t, err)

			gotIDs := make([]string, len(got))
			for i, c := range got {
				gotIDs[i] = c.ID
			}
			assert.Equal(t, tt.expected, gotIDs)
		})
	}
}

func testCountAndRepair(t *testing.T, repo repository.CommentRepository) {
	ctx := context.Background()
	articleID := newArticleID()
	now := time.Now().UTC()

	root := mustCreate(t, repo, newComment(articleID, nil, now))
	mustCreate(t, repo, newComment(articleID, &root.ID, now))
	mustCreate(t, repo, newComment(articleID, &root.ID, now))
	mustCreate(t, repo, newComment(articleID, nil, now))

	roots, replies, err := repo.CountByArticle(ctx, articleID)
	require.NoError(t, err)
	assert.Equal(t, 2, roots)
	assert.Equal(t, 2, replies)

	// replies_count was never incremented, so only the root with children drifts
	repaired, err := repo.RepairCounters(ctx, articleID)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	stored, err := repo.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RepliesCount)

	repaired, err = repo.RepairCounters(ctx, articleID)
	require.NoError(t, err)
	assert.Zero(t, repaired, "consistent article needs no repairs")
}

func testStreamByArticle(t *testing.T, repo repository.CommentRepository) {
	ctx := context.Background()
	articleID := newArticleID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	// Inserted out of order
	later := mustCreate(t, repo, newComment(articleID, nil, base.Add(time.Minute)))
	earlier := mustCreate(t, repo, newComment(articleID, nil, base))

	var streamed []string
	err := repo.StreamByArticle(ctx, articleID, func(c *models.Comment) error {
		streamed = append(streamed, c.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{earlier.ID, later.ID}, streamed)

	stop := errors.New("stop")
	calls := 0
	err = repo.StreamByArticle(ctx, articleID, func(c *models.Comment) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls, "streaming stops at the first callback error")
}
