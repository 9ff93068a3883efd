package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, Unexpected, KindOf(errors.New("boom")))
	assert.Equal(t, NotFound, KindOf(New(NotFound, "op", "missing")))

	wrapped := fmt.Errorf("outer: %w", New(Busy, "op", "lock"))
	assert.Equal(t, Busy, KindOf(wrapped))
	assert.True(t, Is(wrapped, Busy))
	assert.False(t, Is(wrapped, NotFound))
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := New(InvalidState, "lifecycle.Assign", "asset is Retired")
	assert.Same(t, inner, Wrap(Unexpected, "repository", inner))

	cause := errors.New("connection reset")
	err := Wrap(Unexpected, "repository.WithinTx", cause)
	assert.Equal(t, Unexpected, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "repository.WithinTx: unexpected: connection reset", err.Error())
}

func TestErrorMessage(t *testing.T) {
	err := Newf(Validation, "lifecycle.CancelAssignment", "reason must be at least %d characters", 5)
	assert.Equal(t, "lifecycle.CancelAssignment: validation: reason must be at least 5 characters", err.Error())
}
