package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation(t *testing.T) {
	c := NewConversation("hi")

	require.Len(t, c.Messages(), 1)
	assert.Equal(t, RoleAssistant, c.Messages()[0].Role)
	assert.Equal(t, "hi", c.Greeting())

	t.Run("UserMessagesAreValidated", func(t *testing.T) {
		assert.ErrorIs(t, c.AddUserMessage("   "), ErrEmptyMessage)
		assert.ErrorIs(t, c.AddUserMessage(strings.Repeat("x", MaxMessageLength+1)), ErrMessageTooLong)
		assert.Len(t, c.Messages(), 1)
	})

	t.Run("AppendsInOrder", func(t *testing.T) {
		require.NoError(t, c.AddUserMessage("what is fiber?"))
		c.AddAssistantMessage("a carbohydrate")

		msgs := c.Messages()
		require.Len(t, msgs, 3)
		assert.Equal(t, RoleUser, msgs[1].Role)
		assert.Equal(t, RoleAssistant, msgs[2].Role)
	})

	t.Run("RegreetKeepsHistory", func(t *testing.T) {
		c.Regreet("hi alice")
		assert.Equal(t, "hi alice", c.Greeting())
		assert.Len(t, c.Messages(), 3)
	})

	t.Run("Reset", func(t *testing.T) {
		c.Reset("hello again")
		require.Len(t, c.Messages(), 1)
		assert.Equal(t, "hello again", c.Greeting())
	})

	t.Run("MessagesReturnsCopy", func(t *testing.T) {
		msgs := c.Messages()
		msgs[0].Content = "changed"
		assert.Equal(t, "hello again", c.Greeting())
	})
}
