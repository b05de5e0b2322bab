package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comment-tree-api/internal/models"
	"github.com/comment-tree-api/internal/repository"
	"github.com/google/uuid"
)

// Verify interface compliance
var (
	_ repository.ArticleRepository = (*MockArticleRepository)(nil)
	_ repository.CommentRepository = (*MockCommentRepository)(nil)
)

// NewRepositories wires fresh in-memory repositories into a Repositories set
func NewRepositories() (*repository.Repositories, *MockArticleRepository, *MockCommentRepository) {
	articles := NewMockArticleRepository()
	comments := NewMockCommentRepository()
	return &repository.Repositories{Article: articles, Comment: comments}, articles, comments
}

// MockArticleRepository is an in-memory implementation of ArticleRepository
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[string]*models.Article // keyed by external article id

	// GetError and UpdateError inject store failures
	GetError    error
	UpdateError error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
	}
}

// Seed stores an article as-is, bypassing the counter logic
func (m *MockArticleRepository) Seed(article *models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if article.Likes == nil {
		article.Likes = []string{}
	}
	m.Articles[article.ArticleID] = cloneArticle(article)
}

func (m *MockArticleRepository) GetByArticleID(ctx context.Context, articleID string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	return cloneArticle(m.Articles[articleID]), nil
}

func (m *MockArticleRepository) AddLike(ctx context.Context, articleID, userID string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}

	article, ok := m.Articles[articleID]
	if !ok {
		article = m.newArticle(articleID)
	} else if contains(article.Likes, userID) {
		return nil, nil
	}
	article.Likes = append(article.Likes, userID)
	article.LikesCount++
	article.UpdatedAt = time.Now()
	return cloneArticle(article), nil
}

func (m *MockArticleRepository) RemoveLike(ctx context.Context, articleID, userID string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}

	article, ok := m.Articles[articleID]
	if !ok || !contains(article.Likes, userID) {
		return nil, nil
	}
	article.Likes = remove(article.Likes, userID)
	article.LikesCount--
	article.UpdatedAt = time.Now()
	return cloneArticle(article), nil
}

func (m *MockArticleRepository) UpsertCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}

	article, ok := m.Articles[articleID]
	if !ok {
		article = m.newArticle(articleID)
	}
	article.CommentsCount += commentsDelta
	article.RepliesCount += repliesDelta
	article.UpdatedAt = time.Now()
	return cloneArticle(article), nil
}

func (m *MockArticleRepository) IncrementCounters(ctx context.Context, articleID string, commentsDelta, repliesDelta int) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}

	article, ok := m.Articles[articleID]
	if !ok {
		return nil, nil
	}
	article.CommentsCount += commentsDelta
	article.RepliesCount += repliesDelta
	article.UpdatedAt = time.Now()
	return cloneArticle(article), nil
}

func (m *MockArticleRepository) ReplaceCounters(ctx context.Context, articleID string, commentsCount, repliesCount int) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}

	article, ok := m.Articles[articleID]
	if !ok {
		return nil, nil
	}
	article.CommentsCount = commentsCount
	article.RepliesCount = repliesCount
	article.LikesCount = len(article.Likes)
	article.UpdatedAt = time.Now()
	return cloneArticle(article), nil
}

func (m *MockArticleRepository) GetAllArticleIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.Articles))
	for id := range m.Articles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

// newArticle must be called with m.mu held
func (m *MockArticleRepository) newArticle(articleID string) *models.Article {
	now := time.Now()
	article := &models.Article{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.Articles[articleID] = article
	return article
}

// MockCommentRepository is an in-memory implementation of CommentRepository.
// List returns comments in insertion order when no sort is requested.
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments map[string]*models.Comment
	order    []string

	// Fault injection
	InsertError error
	DeleteError error
	// DeleteHook runs before each DeleteByID, outside the lock
	DeleteHook  func(id string)
	DeleteCalls int
	ListCalls   int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.Comment),
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Comments[comment.ID] = cloneComment(comment)
	m.order = append(m.order, comment.ID)
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneComment(m.Comments[id]), nil
}

func (m *MockCommentRepository) List(ctx context.Context, q models.CommentQuery) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++

	var matched []*models.Comment
	for _, id := range m.order {
		c, ok := m.Comments[id]
		if !ok || c.ArticleID != q.ArticleID {
			continue
		}
		if q.Parent != nil {
			if q.RootOnly() && c.Parent != nil {
				continue
			}
			if !q.RootOnly() && (c.Parent == nil || *c.Parent != *q.Parent) {
				continue
			}
		}
		matched = append(matched, c)
	}

	switch q.SortBy {
	case models.SortPopular:
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].LikesCount != matched[j].LikesCount {
				return matched[i].LikesCount > matched[j].LikesCount
			}
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	case models.SortNewest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	case models.SortOldest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		})
	}

	result := make([]*models.Comment, 0, q.Limit)
	for i := q.Skip(); i < len(matched) && len(result) < q.Limit; i++ {
		result = append(result, cloneComment(matched[i]))
	}
	return result, nil
}

func (m *MockCommentRepository) GetChildIDs(ctx context.Context, parentID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, id := range m.order {
		if c, ok := m.Comments[id]; ok && c.Parent != nil && *c.Parent == parentID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockCommentRepository) DeleteByID(ctx context.Context, id string) (*models.Comment, error) {
	if m.DeleteHook != nil {
		m.DeleteHook(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteError != nil {
		return nil, m.DeleteError
	}
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	delete(m.Comments, id)
	return c, nil
}

func (m *MockCommentRepository) IncrementReplies(ctx context.Context, id string, delta int) (*models.Comment, error) {
	return m.mutate(id, func(c *models.Comment) bool {
		c.RepliesCount += delta
		return true
	})
}

func (m *MockCommentRepository) AddLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	return m.mutate(id, func(c *models.Comment) bool {
		if contains(c.Likes, userID) {
			return false
		}
		c.Likes = append(c.Likes, userID)
		c.LikesCount++
		return true
	})
}

func (m *MockCommentRepository) RemoveLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	return m.mutate(id, func(c *models.Comment) bool {
		if !contains(c.Likes, userID) {
			return false
		}
		c.Likes = remove(c.Likes, userID)
		c.LikesCount--
		return true
	})
}

func (m *MockCommentRepository) UpdateBody(ctx context.Context, id, body string) (*models.Comment, error) {
	return m.mutate(id, func(c *models.Comment) bool {
		c.Body = body
		return true
	})
}

func (m *MockCommentRepository) CountByArticle(ctx context.Context, articleID string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roots, replies := 0, 0
	for _, c := range m.Comments {
		if c.ArticleID != articleID {
			continue
		}
		if c.Parent == nil {
			roots++
		} else {
			replies++
		}
	}
	return roots, replies, nil
}

func (m *MockCommentRepository) RepairCounters(ctx context.Context, articleID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	children := make(map[string]int)
	for _, c := range m.Comments {
		if c.Parent != nil {
			children[*c.Parent]++
		}
	}

	repaired := 0
	for _, c := range m.Comments {
		if c.ArticleID != articleID {
			continue
		}
		if c.RepliesCount == children[c.ID] && c.LikesCount == len(c.Likes) {
			continue
		}
		c.RepliesCount = children[c.ID]
		c.LikesCount = len(c.Likes)
		repaired++
	}
	return repaired, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

func (m *MockCommentRepository) StreamByArticle(ctx context.Context, articleID string, callback func(*models.Comment) error) error {
	m.mu.Lock()
	var matched []*models.Comment
	for _, id := range m.order {
		if c, ok := m.Comments[id]; ok && c.ArticleID == articleID {
			matched = append(matched, cloneComment(c))
		}
	}
	m.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	for _, c := range matched {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy of a stored comment, or nil
func (m *MockCommentRepository) Snapshot(id string) *models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneComment(m.Comments[id])
}

// IDs returns the ids of all stored comments in insertion order
func (m *MockCommentRepository) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.Comments))
	for _, id := range m.order {
		if _, ok := m.Comments[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Forget drops a stored comment without running DeleteHook
func (m *MockCommentRepository) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Comments, id)
}

// Corrupt applies fn to a stored comment without any bookkeeping
func (m *MockCommentRepository) Corrupt(id string, fn func(c *models.Comment)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Comments[id]; ok {
		fn(c)
	}
}

func (m *MockCommentRepository) mutate(id string, fn func(c *models.Comment) bool) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || !fn(c) {
		return nil, nil
	}
	c.UpdatedAt = time.Now()
	return cloneComment(c), nil
}

func cloneArticle(a *models.Article) *models.Article {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Likes = append([]string{}, a.Likes...)
	return &cp
}

func cloneComment(c *models.Comment) *models.Comment {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Likes = append([]string{}, c.Likes...)
	if c.Parent != nil {
		parent := *c.Parent
		cp.Parent = &parent
	}
	return &cp
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
