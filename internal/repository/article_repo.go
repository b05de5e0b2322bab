package repository

import (
	"context"
	"database/sql"

	"github.com/comment-tree-api/internal/database"
	"github.com/comment-tree-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const articleColumns = `id, article_id, likes, likes_count, comments_count, replies_count, created_at, updated_at`

// articleRepo is the PostgreSQL implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// GetByArticleID retrieves an article by its external id
func (r *articleRepo) GetByArticleID(ctx context.Context, articleID string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE article_id = $1`
	return scanArticle(r.db.QueryRowContext(ctx, query, articleID))
}

// AddLike upserts the article with userID appended to likes.
// The conflict branch only fires when userID is not yet a member, so an
// existing like yields no row.
func (r *articleRepo) AddLike(ctx context.Context, articleID, userID string) (*models.Article, error) {
	query := `
		INSERT INTO articles (id, article_id, likes, likes_count, comments_count, replies_count, created_at, updated_at)
		VALUES ($1, $2, ARRAY[$3::text], 1, 0, 0, NOW(), NOW())
		ON CONFLICT (article_id) DO UPDATE
		SET likes = array_append(articles.likes, $3::text),
		    likes_count = articles.likes_count + 1,
		    updated_at = NOW()
		WHERE NOT ($3::text = ANY(articles.likes))
		RETURNING ` + articleColumns
	return scanArticle(r.db.QueryRowContext(ctx, query, uuid.New().String(), articleID, userID))
}

// RemoveLike removes userID from likes if present
func (r *articleRepo) RemoveLike(ctx context.Context, articleID, userID string) (*models.Article, error) {
	query := `
		UPDATE articles
		SET likes = array_remove(likes, $2::text),
		    likes_count = likes_count - 1,
		    updated_at = NOW()
		WHERE article_id = $1 AND $2::text = ANY(likes)
		RETURNING ` + articleColumns
	return scanArticle(r.db.QueryRowContext(ctx, query, articleID, userID))
}

// UpsertCounters creates or increments the comment counters
func (r *articleRepo) UpsertCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error) {
	query := `
		INSERT INTO articles (id, article_id, likes, likes_count, comments_count, replies_count, created_at, updated_at)
		VALUES ($1, $2, '{}', 0, $3, $4, NOW(), NOW())
		ON CONFLICT (article_id) DO UPDATE
		SET comments_count = articles.comments_count + EXCLUDED.comments_count,
		    replies_count = articles.replies_count + EXCLUDED.replies_count,
		    updated_at = NOW()
		RETURNING ` + articleColumns
	return scanArticle(r.db.QueryRowContext(ctx, query, uuid.New().String(), articleID, commentsDelta, repliesDelta))
}

// IncrementCounters applies the deltas to an existing article
func (r *articleRepo) IncrementCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error) {
	query := `
		UPDATE articles
		SET comments_count = comments_count + $2,
		    replies_count = replies_count + $3,
		    updated_at = NOW()
		WHERE article_id = $1
		RETURNING ` + articleColumns
	return scanArticle(r.db.QueryRowContext(ctx, query, articleID, commentsDelta, repliesDelta))
}

// ReplaceCounters overwrites counters with recomputed values
func (r *articleRepo) ReplaceCounters(ctx context.Context, articleID string, commentsCount, repliesCount int) (*models.Article, error) {
	query := `
		UPDATE articles
		SET comments_count = $2,
		    replies_count = $3,
		    likes_count = cardinality(likes),
		    updated_at = NOW()
		WHERE article_id = $1
		RETURNING ` + articleColumns
	return scanArticle(r.db.QueryRowContext(ctx, query, articleID, commentsCount, repliesCount))
}

// GetAllArticleIDs retrieves all external article ids (for reconciliation sweeps)
func (r *articleRepo) GetAllArticleIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT article_id FROM articles ORDER BY article_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	err := row.Scan(
		&article.ID, &article.ArticleID, pq.Array(&article.Likes),
		&article.LikesCount, &article.CommentsCount, &article.RepliesCount,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if article.Likes == nil {
		article.Likes = []string{}
	}
	return &article, nil
}
