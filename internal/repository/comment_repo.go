package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/comment-tree-api/internal/database"
	"github.com/comment-tree-api/internal/models"
	"github.com/lib/pq"
)

const commentColumns = `id, article_id, parent_id, body, author_id, author_name, author_image,
	likes, likes_count, replies_count, created_at, updated_at`

// commentRepo is the PostgreSQL implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, article_id, parent_id, body, author_id, author_name, author_image,
			likes, likes_count, replies_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.Parent, comment.Body,
		comment.Author.ID, comment.Author.Name, comment.Author.Image,
		pq.Array(comment.Likes), comment.LikesCount, comment.RepliesCount,
		comment.CreatedAt, comment.UpdatedAt,
	)
	return err
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	return scanComment(r.db.QueryRowContext(ctx, query, id))
}

// List returns one page of comments matching the query
func (r *commentRepo) List(ctx context.Context, q models.CommentQuery) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE article_id = $1`
	args := []interface{}{q.ArticleID}

	if q.Parent != nil {
		if q.RootOnly() {
			query += ` AND parent_id IS NULL`
		} else {
			args = append(args, *q.Parent)
			query += fmt.Sprintf(` AND parent_id = $%d`, len(args))
		}
	}

	query += orderClause(q.SortBy)

	args = append(args, q.Limit, q.Skip())
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0, q.Limit)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// GetChildIDs returns the ids of the direct children of a comment
func (r *commentRepo) GetChildIDs(ctx context.Context, parentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM comments WHERE parent_id = $1", parentID)
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

// DeleteByID deletes a comment and returns the removed row
func (r *commentRepo) DeleteByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `DELETE FROM comments WHERE id = $1 RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, query, id))
}

// IncrementReplies adjusts the direct-child counter
func (r *commentRepo) IncrementReplies(ctx context.Context, id string, delta int) (*models.Comment, error) {
	query := `
		UPDATE comments SET replies_count = replies_count + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, query, id, delta))
}

// AddLike appends userID if it is not already present
func (r *commentRepo) AddLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET likes = array_append(likes, $2::text), likes_count = likes_count + 1, updated_at = NOW()
		WHERE id = $1 AND NOT ($2::text = ANY(likes))
		RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, query, id, userID))
}

// RemoveLike removes userID if present
func (r *commentRepo) RemoveLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET likes = array_remove(likes, $2::text), likes_count = likes_count - 1, updated_at = NOW()
		WHERE id = $1 AND $2::text = ANY(likes)
		RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, query, id, userID))
}

// UpdateBody replaces the comment text
func (r *commentRepo) UpdateBody(ctx context.Context, id, body string) (*models.Comment, error) {
	query := `
		UPDATE comments SET body = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, query, id, body))
}

// CountByArticle counts root comments and replies of an article
func (r *commentRepo) CountByArticle(ctx context.Context, articleID string) (int, int, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE parent_id IS NULL),
		       COUNT(*) FILTER (WHERE parent_id IS NOT NULL)
		FROM comments WHERE article_id = $1
	`
	var roots, replies int
	err := r.db.QueryRowContext(ctx, query, articleID).Scan(&roots, &replies)
	return roots, replies, err
}

// RepairCounters recomputes per-comment counters of an article in one statement
func (r *commentRepo) RepairCounters(ctx context.Context, articleID string) (int, error) {
	query := `
		UPDATE comments c
		SET replies_count = actual.children,
		    likes_count = cardinality(c.likes),
		    updated_at = NOW()
		FROM (
			SELECT p.id, COUNT(ch.id) AS children
			FROM comments p
			LEFT JOIN comments ch ON ch.parent_id = p.id
			WHERE p.article_id = $1
			GROUP BY p.id
		) actual
		WHERE c.id = actual.id
		  AND (c.replies_count <> actual.children OR c.likes_count <> cardinality(c.likes))
	`
	result, err := r.db.ExecContext(ctx, query, articleID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

// StreamByArticle streams an article's comments in creation order for export
func (r *commentRepo) StreamByArticle(ctx context.Context, articleID string, callback func(*models.Comment) error) error {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE article_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return err
		}
		if err := callback(comment); err != nil {
			return err
		}
	}

	return rows.Err()
}

func orderClause(sortBy models.SortOrder) string {
	switch sortBy {
	case models.SortPopular:
		return ` ORDER BY likes_count DESC, created_at DESC`
	case models.SortNewest:
		return ` ORDER BY created_at DESC`
	case models.SortOldest:
		return ` ORDER BY created_at ASC`
	default:
		return ""
	}
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var parent, image sql.NullString

	err := row.Scan(
		&comment.ID, &comment.ArticleID, &parent, &comment.Body,
		&comment.Author.ID, &comment.Author.Name, &image,
		pq.Array(&comment.Likes), &comment.LikesCount, &comment.RepliesCount,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if parent.Valid {
		comment.Parent = &parent.String
	}
	if image.Valid {
		comment.Author.Image = &image.String
	}
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	return &comment, nil
}
