package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "threadgraph/backend/pkg/errors"
)

func TestIsErrorTypeSeesThroughPlainWrapping(t *testing.T) {
	err := fmt.Errorf("failed to resolve reference: %w",
		apperrors.NewGraphQueryFailed("resolve reply reference", "t1_abc", errors.New("boom")))

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGraph))
	assert.False(t, apperrors.IsErrorType(err, apperrors.ErrorTypeIndex))
	assert.False(t, apperrors.IsErrorType(nil, apperrors.ErrorTypeGraph))
}

func TestIsErrorTypeUsesOutermostCategory(t *testing.T) {
	inner := apperrors.NewContextCancelled("reply pass", errors.New("context deadline exceeded"))
	err := apperrors.NewGraphQueryFailed("merge reply edge", "t1_abc", inner)

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGraph))
	assert.False(t, apperrors.IsErrorType(err, apperrors.ErrorTypeContext),
		"the outermost typed error decides the category")
}

func TestIsConnectionFailure(t *testing.T) {
	conn := apperrors.NewGraphConnectionFailed("bolt://localhost:7687", errors.New("connection refused"))

	assert.True(t, apperrors.IsConnectionFailure(conn))
	assert.True(t, apperrors.IsConnectionFailure(
		apperrors.NewGraphQueryFailed("resolve thread reference", "t1_abc", conn)),
		"connection failures must be detectable through query wrappers")
	assert.True(t, apperrors.IsConnectionFailure(fmt.Errorf("pass aborted: %w", conn)))
	assert.False(t, apperrors.IsConnectionFailure(errors.New("boom")))
	assert.False(t, apperrors.IsConnectionFailure(nil))
}

func TestIsIndexConflict(t *testing.T) {
	conflict := apperrors.NewIndexConfigConflict("reddit_content_embeddings",
		"RedditContent.content_embedding 1024d cosine", "RedditContent.content_embedding 768d cosine")

	assert.True(t, apperrors.IsIndexConflict(conflict))
	assert.True(t, apperrors.IsIndexConflict(fmt.Errorf("ensure failed: %w", conflict)))
	assert.False(t, apperrors.IsIndexConflict(apperrors.NewGraphConnectionFailed("bolt://x", nil)))
}

func TestIsRetryable(t *testing.T) {
	conn := apperrors.NewGraphConnectionFailed("bolt://localhost:7687", errors.New("connection refused"))

	assert.True(t, apperrors.IsRetryable(conn))
	assert.True(t, apperrors.IsRetryable(apperrors.NewGraphQueryFailed("count content", "", conn)))
	assert.False(t, apperrors.IsRetryable(apperrors.NewContextCancelled("thread pass", nil)))
	assert.False(t, apperrors.IsRetryable(apperrors.NewAmbiguousReference("t1_abc", "abc", []string{"abc_1", "abc_2"})))
	assert.False(t, apperrors.IsRetryable(nil))
}

func TestErrorsUnwrapToTheirCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := apperrors.NewGraphConnectionFailed("bolt://localhost:7687", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "bolt://localhost:7687")
	assert.Contains(t, err.Error(), "socket closed")
}

func TestAmbiguousReferenceListsCandidates(t *testing.T) {
	err := apperrors.NewAmbiguousReference("t1_xyz", "abc", []string{"abc_1", "abc_2"})

	assert.Contains(t, err.Error(), "abc_1, abc_2")
	assert.Contains(t, err.Error(), "t1_xyz")
	assert.Equal(t, []string{"abc_1", "abc_2"}, err.Candidates)
}
