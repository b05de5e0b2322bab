package validation

import (
	"strings"
	"testing"

	"github.com/comment-tree-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validCreateRequest() *models.CreateCommentRequest {
	return &models.CreateCommentRequest{
		ArticleID:   "article-1",
		CommentBody: "First!",
		Author:      models.Author{ID: "u1", Name: "Ada"},
	}
}

func TestValidateCreateComment(t *testing.T) {
	validator := NewValidator(models.MaxCommentWords)

	tests := []struct {
		name       string
		modify     func(r *models.CreateCommentRequest)
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid root comment",
			modify:     func(r *models.CreateCommentRequest) {},
			wantErrors: 0,
		},
		{
			name:       "valid reply",
			modify:     func(r *models.CreateCommentRequest) { r.Parent = strPtr("c1") },
			wantErrors: 0,
		},
		{
			name:       "missing article_id",
			modify:     func(r *models.CreateCommentRequest) { r.ArticleID = "" },
			wantErrors: 1,
			wantFields: []string{"article_id"},
		},
		{
			name:       "missing body",
			modify:     func(r *models.CreateCommentRequest) { r.CommentBody = "" },
			wantErrors: 1,
			wantFields: []string{"comment_body"},
		},
		{
			name:       "empty parent",
			modify:     func(r *models.CreateCommentRequest) { r.Parent = strPtr("") },
			wantErrors: 1,
			wantFields: []string{"parent"},
		},
		{
			name: "missing author",
			modify: func(r *models.CreateCommentRequest) {
				r.Author = models.Author{}
			},
			wantErrors: 2,
			wantFields: []string{"author.id", "author.name"},
		},
		{
			name: "everything missing",
			modify: func(r *models.CreateCommentRequest) {
				*r = models.CreateCommentRequest{}
			},
			wantErrors: 4,
			wantFields: []string{"article_id", "author.id", "author.name", "comment_body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.modify(req)

			errs := validator.ValidateCreateComment(req)
			require.Len(t, errs, tt.wantErrors, "errors: %v", errs)
			for i, field := range tt.wantFields {
				assert.Equal(t, field, errs[i].Field, "error %d", i)
			}
		})
	}
}

func TestValidateCreateComment_WordLimit(t *testing.T) {
	validator := NewValidator(5)

	req := validCreateRequest()
	req.CommentBody = "one two three four five"
	assert.Empty(t, validator.ValidateCreateComment(req), "body at the limit should pass")

	req.CommentBody = "one two three four five six"
	errs := validator.ValidateCreateComment(req)
	require.Len(t, errs, 1)
	assert.Equal(t, "comment_body", errs[0].Field)
	assert.Contains(t, errs[0].Message, "maximum of 5 words")
}

func TestNewValidator_DefaultWordLimit(t *testing.T) {
	validator := NewValidator(0)
	assert.Equal(t, models.MaxCommentWords, validator.maxBodyWords)
}

func TestValidateCommentUpdate(t *testing.T) {
	validator := NewValidator(models.MaxCommentWords)

	assert.Empty(t, validator.ValidateCommentUpdate(&models.UpdateCommentRequest{CommentID: "c1", Update: "edited"}))

	errs := validator.ValidateCommentUpdate(&models.UpdateCommentRequest{})
	require.Len(t, errs, 2)
	assert.Equal(t, "comment_id", errs[0].Field)
	assert.Equal(t, "update", errs[1].Field)
}

func TestValidateLikes(t *testing.T) {
	validator := NewValidator(models.MaxCommentWords)

	assert.Empty(t, validator.ValidateArticleLike(&models.LikeRequest{ArticleID: "a1", UserID: "u1"}))

	errs := validator.ValidateArticleLike(&models.LikeRequest{ArticleID: "a1"})
	require.Len(t, errs, 1)
	assert.Equal(t, "user_id", errs[0].Field)

	errs = validator.ValidateCommentLike(&models.CommentLikeRequest{UserID: "u1"})
	require.Len(t, errs, 1)
	assert.Equal(t, "comment_id", errs[0].Field)

	assert.Len(t, validator.ValidateCommentID(&models.CommentIDRequest{}), 1)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
		wantErrs  []string
	}{
		{name: "defaults", wantPage: 1, wantLimit: 10},
		{name: "explicit values", page: "3", limit: "25", wantPage: 3, wantLimit: 25},
		{name: "integral float", page: "2.0", limit: "5", wantPage: 2, wantLimit: 5},
		{name: "zero page", page: "0", limit: "5", wantErrs: []string{"page"}},
		{name: "negative limit", page: "1", limit: "-4", wantErrs: []string{"limit"}},
		{name: "fractional page", page: "1.5", limit: "5", wantErrs: []string{"page"}},
		{name: "not a number", page: "abc", limit: "x", wantErrs: []string{"page", "limit"}},
		{name: "zero limit", page: "1", limit: "0", wantErrs: []string{"limit"}},
		{name: "zero page and limit", page: "0", limit: "0", wantErrs: []string{"page", "limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, errs := ParsePagination(tt.page, tt.limit, 10)

			require.Len(t, errs, len(tt.wantErrs), "errors: %v", errs)
			for i, field := range tt.wantErrs {
				assert.Equal(t, field, errs[i].Field)
			}
			if len(tt.wantErrs) == 0 {
				assert.Equal(t, tt.wantPage, page)
				assert.Equal(t, tt.wantLimit, limit)
			}
		})
	}
}

func TestParsePagination_ZeroMessages(t *testing.T) {
	for _, raw := range []string{"0", "0.0", "-1"} {
		_, _, errs := ParsePagination(raw, raw, 10)
		require.Len(t, errs, 2, "input %q", raw)
		assert.Equal(t, "page must be at least 1", errs[0].Message, "input %q", raw)
		assert.Equal(t, "limit must be at least 1", errs[1].Message, "input %q", raw)
	}
}

func BenchmarkValidateCreateComment(b *testing.B) {
	validator := NewValidator(models.MaxCommentWords)
	req := validCreateRequest()
	req.CommentBody = strings.Repeat("word ", 200)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		validator.ValidateCreateComment(req)
	}
}
