package chat

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"bertraco/app/client/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_KeepsLatestMessagesInOrder(t *testing.T) {
	h := NewHistory(6)

	for i := range 10 {
		h.Add(Turn{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)})

		require.LessOrEqual(t, h.Len(), 6)

		messages := h.Messages()
		last := messages[len(messages)-2:]
		assert.Equal(t, []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf("q%d", i)},
			{Role: llm.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		}, last)
	}

	var contents []string
	for _, msg := range h.Messages() {
		contents = append(contents, msg.Content)
	}
	assert.Equal(t, []string{"q7", "a7", "q8", "a8", "q9", "a9"}, contents)
}

func TestHistory_MessagesIsACopy(t *testing.T) {
	h := NewHistory(6)
	h.Add(Turn{Question: "q", Answer: "a"})

	messages := h.Messages()
	messages[0].Content = "changed"

	assert.Equal(t, "q", h.Messages()[0].Content)
}

func TestChunker_Example(t *testing.T) {
	var c Chunker

	_, ok := c.Write("Hola")
	assert.False(t, ok)

	chunk, ok := c.Write(" mundo")
	assert.True(t, ok)
	assert.Equal(t, "Hola mundo", chunk)

	_, ok = c.Write("!")
	assert.False(t, ok)
	assert.Equal(t, "!", c.Remainder())
}

func TestChunker_NewlineFlushes(t *testing.T) {
	var c Chunker

	chunk, ok := c.Write("line\n")
	assert.True(t, ok)
	assert.Equal(t, "line\n", chunk)
	assert.Empty(t, c.Remainder())
}

func TestChunker_IsLossless(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	alphabet := []rune("ab ñ\n.")

	for range 500 {
		var (
			c         Chunker
			fragments []string
			output    strings.Builder
		)

		for range rnd.IntN(20) {
			var fragment strings.Builder
			for range rnd.IntN(6) {
				fragment.WriteRune(alphabet[rnd.IntN(len(alphabet))])
			}
			fragments = append(fragments, fragment.String())

			if chunk, ok := c.Write(fragment.String()); ok {
				require.True(t, strings.ContainsAny(chunk, " \n"))
				output.WriteString(chunk)
			}
		}

		assert.NotContains(t, c.Remainder(), " ")
		assert.NotContains(t, c.Remainder(), "\n")

		output.WriteString(c.Remainder())
		assert.Equal(t, strings.Join(fragments, ""), output.String())
	}
}
