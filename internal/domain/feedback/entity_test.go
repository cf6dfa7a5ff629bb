package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeedback(t *testing.T) {
	fb, err := NewFeedback(" Ada ", "ada@example.com", "  ", " Love the swaps ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", fb.Name())
	assert.Equal(t, "", fb.Subject())
	assert.Equal(t, "Love the swaps", fb.Message())
	assert.NotZero(t, fb.SubmittedAt())

	tests := []struct {
		name, email, message string
		want                 error
	}{
		{"", "a@b.c", "m", ErrNameRequired},
		{"Ada", "", "m", ErrEmailRequired},
		{"Ada", "nope", "m", ErrEmailInvalid},
		{"Ada", "a@b.c", " ", ErrMessageRequired},
		{"Ada", "a@b.c", strings.Repeat("m", 5001), ErrMessageTooLong},
	}
	for _, tt := range tests {
		_, err := NewFeedback(tt.name, tt.email, "", tt.message)
		assert.ErrorIs(t, err, tt.want)
	}
}
