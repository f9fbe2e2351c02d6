package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOfWrapped(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := fmt.Errorf("page 3: %w", Wrap(ErrorTypeNetwork, cause, "GET %s", "/top-imdb"))

	assert.Equal(t, ErrorTypeNetwork, TypeOf(err))
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, IsRetryableError(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("boom")))
	assert.False(t, IsRetryableError(nil))
}

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{403, ErrorTypeBlocked},
		{503, ErrorTypeServerError},
		{418, ErrorTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForStatus(tt.code))
		})
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(502))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(400))
}

func TestStorageNotRetryable(t *testing.T) {
	err := New(ErrorTypeStorage, 0, "rename failed")
	assert.False(t, IsRetryable(err.Type))
	assert.Equal(t, "storage error (code 0): rename failed", err.Error())
}
