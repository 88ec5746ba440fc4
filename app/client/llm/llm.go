package llm

import (
	"context"
	"iter"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Generator streams an answer as text fragments. A failed stream yields one error and ends.
type Generator interface {
	Stream(ctx context.Context, question string, history []Message) iter.Seq2[string, error]
}

type Example struct {
	Question string
	Answer   string
}

// Prompt is what every request starts with: the system prompt and few-shot examples.
type Prompt struct {
	System   string
	Examples []Example
}

// Messages lays out system prompt, examples, history and the question, in that order.
func (p Prompt) Messages(question string, history []Message) []Message {
	result := make([]Message, 0, 2+2*len(p.Examples)+len(history))

	if p.System != "" {
		result = append(result, Message{Role: RoleSystem, Content: p.System})
	}

	for _, example := range p.Examples {
		result = append(result,
			Message{Role: RoleUser, Content: example.Question},
			Message{Role: RoleAssistant, Content: example.Answer},
		)
	}

	result = append(result, history...)
	result = append(result, Message{Role: RoleUser, Content: question})

	return result
}
