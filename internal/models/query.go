package models

// SortOrder selects the ordering of a comment listing
type SortOrder string

const (
	SortPopular SortOrder = "popular"
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	// SortNone leaves results in store order
	SortNone SortOrder = ""
)

// ParseSortOrder maps a sort_by value to a SortOrder. Unknown values yield SortNone.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPopular, SortNewest, SortOldest:
		return SortOrder(s)
	default:
		return SortNone
	}
}

// CommentQuery describes a filtered, sorted page of comments.
//
// Parent selects the nesting filter: nil lists every comment of the article,
// a pointer to "" lists root comments only, and any other value lists the
// direct children of that comment.
type CommentQuery struct {
	ArticleID string
	Parent    *string
	SortBy    SortOrder
	Page      int
	Limit     int
}

// Skip returns the number of comments preceding the requested page
func (q CommentQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// RootOnly reports whether the query is restricted to root comments
func (q CommentQuery) RootOnly() bool {
	return q.Parent != nil && *q.Parent == ""
}
