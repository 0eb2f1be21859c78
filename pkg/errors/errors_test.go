package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("videoId is required"), http.StatusBadRequest},
		{"video not found", NewVideoNotFoundError("v1"), http.StatusNotFound},
		{"upstream fetch", NewUpstreamFetchError(403, "403 Forbidden"), http.StatusBadGateway},
		{"empty ai response", NewEmptyAIResponseError("gemini"), http.StatusBadGateway},
		{"chunk policy", NewInvalidChunkPolicyError(10, 10), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestIs_FindsWrappedAppError(t *testing.T) {
	base := NewUpstreamFetchError(500, "500 Internal Server Error")
	wrapped := fmt.Errorf("load video: %w", base)

	assert.True(t, Is(wrapped, CodeUpstreamFetch))
	assert.False(t, Is(wrapped, CodeParseFailed))
	assert.Equal(t, CodeUpstreamFetch, GetCode(wrapped))
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	plain := stderrors.New("boom")
	wrapped := Wrap(plain, "something failed")
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.ErrorIs(t, wrapped, plain)

	existing := NewVideoNotFoundError("abc")
	assert.Same(t, existing, Wrap(existing, "ignored"))
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := NewExternalServiceError("gemini", stderrors.New("quota exceeded"))

	assert.Contains(t, err.Error(), "EXTERNAL_SERVICE_ERROR")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestToErrorResponse(t *testing.T) {
	err := NewVideoNotFoundError("vid-9")

	resp := ToErrorResponse(err, "req-1")

	assert.Equal(t, CodeVideoNotFound, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, "vid-9", resp.Error.Metadata["video_id"])
}
