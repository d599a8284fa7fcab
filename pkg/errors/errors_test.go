package errors

import (
	"database/sql"
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestCloneKeepsCode(t *testing.T) {
	clone := Clone(ErrNotFound, "room not found")
	assert.Equal(t, "room not found", clone.Message)
	assert.Equal(t, ErrNotFound.Code, clone.Code)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.True(t, stdErrors.Is(clone, ErrNotFound))
}

func TestInvalidRangeIsValidation(t *testing.T) {
	assert.True(t, IsCode(ErrInvalidRange, ErrValidation.Code))
	assert.True(t, stdErrors.Is(Clone(ErrInvalidRange, ""), ErrValidation))
}

func TestStorageWrap(t *testing.T) {
	err := Storage(sql.ErrTxDone, "failed to insert session")
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Error(), "failed to insert session")
}
