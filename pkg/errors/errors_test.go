package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCodeAndOverridesMessage(t *testing.T) {
	clone := Clone(ErrWrongState, "article is not pending review")
	require.NotNil(t, clone)
	assert.Equal(t, ErrWrongState.Code, clone.Code)
	assert.Equal(t, "article is not pending review", clone.Message)
	assert.Equal(t, "operation not allowed in current state", ErrWrongState.Message)
	assert.True(t, stdErrors.Is(clone, ErrWrongState))
	assert.False(t, stdErrors.Is(clone, ErrConflict))
}

func TestWithDetailsDoesNotMutateBase(t *testing.T) {
	err := WithDetails(ErrArticleNotFound, map[string]interface{}{"articleId": "a-1"})
	assert.Equal(t, "a-1", err.Details["articleId"])
	assert.Nil(t, ErrArticleNotFound.Details)

	again := WithDetails(err, map[string]interface{}{"field": "doi"})
	assert.Len(t, again.Details, 2)
	assert.Len(t, err.Details, 1)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(stdErrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
	assert.True(t, HasCode(Clone(ErrDuplicateDOI, ""), ErrDuplicateDOI.Code))
	assert.False(t, HasCode(stdErrors.New("plain"), ErrDuplicateDOI.Code))
}
