package llm

import (
	"context"
	"iter"

	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

var _ Generator = (*Ollama)(nil)

type Ollama struct {
	llm         llms.Model
	model       string
	temperature float64
	prompt      Prompt
}

func NewOllama(serverURL, model string, temperature float64, prompt Prompt) (*Ollama, error) {
	client, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, oops.In("llm").With("model", model).Wrapf(err, "failed to create ollama client")
	}
	client.CallbacksHandler = LogCallbackHandler{}

	return newOllama(client, model, temperature, prompt), nil
}

func newOllama(model llms.Model, name string, temperature float64, prompt Prompt) *Ollama {
	return &Ollama{
		llm:         model,
		model:       name,
		temperature: temperature,
		prompt:      prompt,
	}
}

// Stream runs the request in the background and hands over every streamed chunk as it arrives.
func (o *Ollama) Stream(ctx context.Context, question string, history []Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		fragments := make(chan string)
		result := make(chan error, 1)

		go func() {
			defer close(fragments)

			_, err := o.llm.GenerateContent(
				ctx,
				toLangchain(o.prompt.Messages(question, history)),
				llms.WithTemperature(o.temperature),
				llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
					select {
					case fragments <- string(chunk):
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				}),
			)
			result <- err
		}()

		for fragment := range fragments {
			if fragment == "" {
				continue
			}

			if !yield(fragment, nil) {
				cancel()
				for range fragments {
				}
				return
			}
		}

		if err := <-result; err != nil {
			yield("", oops.In("llm").With("model", o.model).Wrapf(err, "failed to generate content"))
		}
	}
}

func toLangchain(messages []Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		}

		result = append(result, llms.TextParts(role, msg.Content))
	}

	return result
}
