package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("grams"), http.StatusBadRequest},
		{NewInvalidCredentialsError(), http.StatusUnauthorized},
		{NewIndexOutOfRangeError(4, 2), http.StatusNotFound},
		{NewSessionNotFoundError("abc"), http.StatusNotFound},
		{NewAccountAlreadyExistsError(), http.StatusConflict},
		{NewDivisionUndefinedError(stderrors.New("zero")), http.StatusUnprocessableEntity},
		{NewExternalServiceError("openai", stderrors.New("timeout")), http.StatusBadGateway},
		{NewColumnResolutionError(stderrors.New("missing food")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	cause := stderrors.New("disk full")
	wrapped := Wrap(cause, "Save failed")
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, "Save failed", wrapped.Message)
	assert.ErrorIs(t, wrapped, cause)

	original := NewSessionNotFoundError("s1")
	assert.Same(t, original, Wrap(original, "ignored"))
}

func TestExternalServiceError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewExternalServiceError("ollama", cause)

	assert.True(t, Is(err, CodeExternalServiceError))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR: External service error (Failed to communicate with ollama)", err.Error())
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeIndexOutOfRange, GetCode(NewIndexOutOfRangeError(1, 0)))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(NewIndexOutOfRangeError(3, 1), "req-1")

	require.NotNil(t, resp.Error.Metadata)
	assert.Equal(t, CodeIndexOutOfRange, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, 3, resp.Error.Metadata["index"])
	assert.NotEmpty(t, resp.Error.Timestamp)
}
