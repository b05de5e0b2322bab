package validation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/comment-tree-api/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator provides validation methods for request payloads
type Validator struct {
	maxBodyWords int
}

// NewValidator creates a new validator instance. A non-positive maxBodyWords
// falls back to models.MaxCommentWords.
func NewValidator(maxBodyWords int) *Validator {
	if maxBodyWords <= 0 {
		maxBodyWords = models.MaxCommentWords
	}
	return &Validator{maxBodyWords: maxBodyWords}
}

// ValidateCreateComment validates a new comment or reply
func (v *Validator) ValidateCreateComment(req *models.CreateCommentRequest) []ValidationError {
	errs := ozzo.Errors{
		"article_id": ozzo.Validate(req.ArticleID,
			ozzo.Required.Error("article_id is required"),
		),
		"comment_body": ozzo.Validate(req.CommentBody,
			ozzo.Required.Error("comment_body is required"),
			ozzo.By(wordCountRule(v.maxBodyWords)),
		),
		"parent": ozzo.Validate(req.Parent,
			ozzo.NilOrNotEmpty.Error("parent must not be empty"),
		),
		"author.id": ozzo.Validate(req.Author.ID,
			ozzo.Required.Error("author.id is required"),
		),
		"author.name": ozzo.Validate(req.Author.Name,
			ozzo.Required.Error("author.name is required"),
		),
	}
	return convert(errs.Filter(), map[string]interface{}{"parent": req.Parent})
}

// ValidateCommentUpdate validates a body replacement
func (v *Validator) ValidateCommentUpdate(req *models.UpdateCommentRequest) []ValidationError {
	errs := ozzo.Errors{
		"comment_id": ozzo.Validate(req.CommentID,
			ozzo.Required.Error("comment_id is required"),
		),
		"update": ozzo.Validate(req.Update,
			ozzo.Required.Error("update is required"),
			ozzo.By(wordCountRule(v.maxBodyWords)),
		),
	}
	return convert(errs.Filter(), nil)
}

// ValidateArticleLike validates an article like or unlike
func (v *Validator) ValidateArticleLike(req *models.LikeRequest) []ValidationError {
	errs := ozzo.Errors{
		"article_id": ozzo.Validate(req.ArticleID, ozzo.Required.Error("article_id is required")),
		"user_id":    ozzo.Validate(req.UserID, ozzo.Required.Error("user_id is required")),
	}
	return convert(errs.Filter(), nil)
}

// ValidateCommentLike validates a comment like or unlike
func (v *Validator) ValidateCommentLike(req *models.CommentLikeRequest) []ValidationError {
	errs := ozzo.Errors{
		"comment_id": ozzo.Validate(req.CommentID, ozzo.Required.Error("comment_id is required")),
		"user_id":    ozzo.Validate(req.UserID, ozzo.Required.Error("user_id is required")),
	}
	return convert(errs.Filter(), nil)
}

// ValidateCommentID validates a request naming a single comment
func (v *Validator) ValidateCommentID(req *models.CommentIDRequest) []ValidationError {
	errs := ozzo.Errors{
		"comment_id": ozzo.Validate(req.CommentID, ozzo.Required.Error("comment_id is required")),
	}
	return convert(errs.Filter(), nil)
}

// ParsePagination parses the page and limit query values. Absent values take
// the defaults; present values must be integers of at least 1.
func ParsePagination(pageStr, limitStr string, defaultLimit int) (int, int, []ValidationError) {
	var errors []ValidationError

	page, err := parsePositiveInt("page", pageStr, 1)
	if err != nil {
		errors = append(errors, *err)
	}
	limit, err := parsePositiveInt("limit", limitStr, defaultLimit)
	if err != nil {
		errors = append(errors, *err)
	}
	return page, limit, errors
}

func parsePositiveInt(field, raw string, def int) (int, *ValidationError) {
	if raw == "" {
		return def, nil
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: field, Message: field + " must be a number", Value: raw}
	}
	if f != math.Trunc(f) {
		return 0, &ValidationError{Field: field, Message: field + " must be an integer", Value: raw}
	}
	if f > math.MaxInt32 {
		return 0, &ValidationError{Field: field, Message: field + " is too large", Value: raw}
	}

	n := int(f)
	// Required rejects zero, which Min skips as an empty value
	if err := ozzo.Validate(n,
		ozzo.Required.Error(field+" must be at least 1"),
		ozzo.Min(1).Error(field+" must be at least 1"),
	); err != nil {
		return 0, &ValidationError{Field: field, Message: err.Error(), Value: raw}
	}
	return n, nil
}

// wordCountRule limits a string to maxWords whitespace-separated words
func wordCountRule(maxWords int) ozzo.RuleFunc {
	return func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		wordCount := len(strings.Fields(s))
		if wordCount > maxWords {
			return ozzo.NewError("body_too_long",
				fmt.Sprintf("body exceeds maximum of %d words (has %d)", maxWords, wordCount))
		}
		return nil
	}
}

// convert flattens ozzo errors into ValidationErrors ordered by field
func convert(err error, values map[string]interface{}) []ValidationError {
	if err == nil {
		return nil
	}

	errs, ok := err.(ozzo.Errors)
	if !ok {
		return []ValidationError{{Field: "request", Message: err.Error()}}
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	result := make([]ValidationError, 0, len(fields))
	for _, field := range fields {
		result = append(result, ValidationError{
			Field:   field,
			Message: errs[field].Error(),
			Value:   values[field],
		})
	}
	return result
}
