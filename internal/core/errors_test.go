package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonOf(t *testing.T) {
	assert.Equal(t, ReasonNone, ReasonOf(nil))
	assert.Equal(t, ReasonInternal, ReasonOf(errors.New("plain")))
	assert.Equal(t, ReasonCancelled, ReasonOf(context.Canceled))
	assert.Equal(t, ReasonCancelled, ReasonOf(context.DeadlineExceeded))

	err := NewError(ReasonInvalidDimension, "query", "dimension mismatch")
	assert.Equal(t, ReasonInvalidDimension, ReasonOf(err))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, ReasonInvalidDimension, ReasonOf(wrapped))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, ReasonInternal, "op", "msg"))

	cause := errors.New("boom")
	err := WrapError(cause, ReasonResourceExhausted, "build", "arena full")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "resource_exhausted")
}

func TestCompletionEventString(t *testing.T) {
	assert.Equal(t, "build_succeeded", BuildSucceeded().String())

	ev := QueryFailed(ReasonInvalidDimension, errors.New("dim 6 != 4"))
	assert.Contains(t, ev.String(), "query_failed")
	assert.Contains(t, ev.String(), "invalid_dimension")
	assert.False(t, ev.Succeeded())
}
