// Package testutils provides custom assertion helpers for testing
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the success body written by the API handlers
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// ErrorEnvelope is the failure body written for an AppError
type ErrorEnvelope struct {
	Error struct {
		Code      string                 `json:"code"`
		Message   string                 `json:"message"`
		Details   string                 `json:"details"`
		Metadata  map[string]interface{} `json:"metadata"`
		RequestID string                 `json:"request_id"`
	} `json:"error"`
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t testing.TB
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t testing.TB) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	ha.t.Helper()
	require.NotNil(ha.t, rec, "Response should not be nil")
	if !assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...) {
		ha.t.Logf("body: %s", rec.Body.String())
	}
}

// JSONResponse asserts a JSON content type and unmarshals the body
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	ha.t.Helper()
	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)
	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), target), "Response should be valid JSON")
}

// Data asserts a success envelope and decodes its data into target
func (ha *HTTPAssertions) Data(rec *httptest.ResponseRecorder, target interface{}) Envelope {
	ha.t.Helper()
	var env Envelope
	ha.JSONResponse(rec, &env)
	assert.True(ha.t, env.Success, "Response should be a success envelope")
	if target != nil {
		require.NoError(ha.t, json.Unmarshal(env.Data, target))
	}
	return env
}

// ErrorCode asserts an error envelope carrying code
func (ha *HTTPAssertions) ErrorCode(rec *httptest.ResponseRecorder, expectedCode string) ErrorEnvelope {
	ha.t.Helper()
	var env ErrorEnvelope
	ha.JSONResponse(rec, &env)
	assert.Equal(ha.t, expectedCode, env.Error.Code, "body: %s", rec.Body.String())
	return env
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	ha.t.Helper()
	for _, header := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Referrer-Policy",
	} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}
