package chat

import (
	"slices"

	"bertraco/app/client/llm"
)

// Turn is one finished exchange.
type Turn struct {
	Question string
	Answer   string
}

// History keeps the most recent messages, oldest first.
type History struct {
	size     int
	messages []llm.Message
}

func NewHistory(size int) *History {
	return &History{size: size}
}

func (h *History) Add(turn Turn) {
	h.messages = append(h.messages,
		llm.Message{Role: llm.RoleUser, Content: turn.Question},
		llm.Message{Role: llm.RoleAssistant, Content: turn.Answer},
	)

	if len(h.messages) > h.size {
		h.messages = slices.Clone(h.messages[len(h.messages)-h.size:])
	}
}

// Messages returns a copy.
func (h *History) Messages() []llm.Message {
	return slices.Clone(h.messages)
}

func (h *History) Len() int {
	return len(h.messages)
}
