package models

import (
	"time"
)

// Article is the per-article aggregate. It is keyed by the external ArticleID
// and holds counters derived from its likes and comments.
type Article struct {
	ID            string    `json:"id" db:"id" bson:"_id"`
	ArticleID     string    `json:"article_id" db:"article_id" bson:"article_id"`
	Likes         []string  `json:"likes" db:"likes" bson:"likes"`
	LikesCount    int       `json:"likes_count" db:"likes_count" bson:"likes_count"`
	CommentsCount int       `json:"comments_count" db:"comments_count" bson:"comments_count"`
	RepliesCount  int       `json:"replies_count" db:"replies_count" bson:"replies_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// LikedBy reports whether userID is in the likes set
func (a *Article) LikedBy(userID string) bool {
	return containsUser(a.Likes, userID)
}

// LikeRequest is the body of the like/unlike endpoints for articles
type LikeRequest struct {
	ArticleID string `json:"article_id"`
	UserID    string `json:"user_id"`
}

// ReconcileResult reports the outcome of a counter reconciliation
type ReconcileResult struct {
	Article          *Article `json:"article"`
	CommentsRepaired int      `json:"comments_repaired"`
}

func containsUser(likes []string, userID string) bool {
	for _, id := range likes {
		if id == userID {
			return true
		}
	}
	return false
}
