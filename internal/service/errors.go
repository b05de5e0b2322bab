package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comment-tree-api/internal/validation"
)

var (
	// ErrNotFound is wrapped by the entity specific not-found errors
	ErrNotFound        = errors.New("not found")
	ErrArticleNotFound = fmt.Errorf("article %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)

	ErrAlreadyLiked = errors.New("already liked")
	ErrNotLiked     = errors.New("not liked")

	// ErrDeletionFailed means a node vanished while its subtree was being removed.
	// Deletions made before the failure stay applied.
	ErrDeletionFailed = errors.New("deletion failed")

	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidPagination = fmt.Errorf("%w: invalid pagination", ErrInvalidInput)
)

// ValidationError carries the field errors of a rejected request
type ValidationError struct {
	Errors []validation.ValidationError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func newValidationError(errs []validation.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
