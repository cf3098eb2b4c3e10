package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestFromErrorMapsDeadline(t *testing.T) {
	appErr := FromError(fmt.Errorf("load grades: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrTimeout.Code, appErr.Code)
	assert.Equal(t, http.StatusGatewayTimeout, appErr.Status)
	assert.ErrorIs(t, appErr, context.DeadlineExceeded)

	known := Clone(ErrNotFound, "course not found")
	assert.Same(t, known, FromError(fmt.Errorf("lookup: %w", known)))
}

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrNotFound, "course not found")
	assert.Equal(t, "course not found", clone.Message)
	assert.True(t, errors.Is(clone, ErrNotFound))
	assert.False(t, errors.Is(clone, ErrForbidden))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapUnwraps(t *testing.T) {
	inner := errors.New("db down")
	wrapped := Wrap(inner, ErrInternal.Code, ErrInternal.Status, "failed to load")
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "failed to load: db down", wrapped.Error())
}
