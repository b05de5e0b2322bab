package models

import (
	"time"
)

// Author is a snapshot of the commenter taken at creation time
type Author struct {
	ID    string  `json:"id" bson:"id"`
	Name  string  `json:"name" bson:"name"`
	Image *string `json:"image,omitempty" bson:"image,omitempty"`
}

// Comment is a node in an article's comment forest. A nil Parent marks a root comment.
type Comment struct {
	ID           string    `json:"id" db:"id" bson:"_id"`
	ArticleID    string    `json:"article_id" db:"article_id" bson:"article_id"`
	Body         string    `json:"body" db:"body" bson:"body"`
	Parent       *string   `json:"parent" db:"parent_id" bson:"parent,omitempty"`
	Likes        []string  `json:"likes" db:"likes" bson:"likes"`
	LikesCount   int       `json:"likes_count" db:"likes_count" bson:"likes_count"`
	RepliesCount int       `json:"replies_count" db:"replies_count" bson:"replies_count"`
	Author       Author    `json:"author" bson:"author"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// IsRoot reports whether the comment is attached directly to the article
func (c *Comment) IsRoot() bool {
	return c.Parent == nil
}

// LikedBy reports whether userID is in the likes set
func (c *Comment) LikedBy(userID string) bool {
	return containsUser(c.Likes, userID)
}

// CreateCommentRequest is the body of POST /comments
type CreateCommentRequest struct {
	ArticleID   string  `json:"article_id"`
	CommentBody string  `json:"comment_body"`
	Parent      *string `json:"parent,omitempty"`
	Author      Author  `json:"author"`
}

// UpdateCommentRequest is the body of PATCH /comments
type UpdateCommentRequest struct {
	CommentID string `json:"comment_id"`
	Update    string `json:"update"`
}

// CommentIDRequest is the body of DELETE /comments
type CommentIDRequest struct {
	CommentID string `json:"comment_id"`
}

// CommentLikeRequest is the body of the like/unlike endpoints for comments
type CommentLikeRequest struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

// MaxCommentWords is the default maximum allowed words in a comment body
const MaxCommentWords = 500
