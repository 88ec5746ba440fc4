package llm

import (
	"context"
	"errors"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/samber/oops"
	"github.com/sashabaranov/go-openai"
)

const requestTimeout = 2 * time.Minute

var _ Generator = (*OpenAI)(nil)

// OpenAI talks to any OpenAI compatible chat completion endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	prompt      Prompt
}

func NewClient(baseURL, token string) *openai.Client {
	clientConfig := openai.DefaultConfig(token)

	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: requestTimeout,
	}

	return openai.NewClientWithConfig(clientConfig)
}

func NewOpenAI(client *openai.Client, model string, temperature float32, prompt Prompt) *OpenAI {
	return &OpenAI{
		client:      client,
		model:       model,
		temperature: temperature,
		prompt:      prompt,
	}
}

func (o *OpenAI) Stream(ctx context.Context, question string, history []Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    toOpenAI(o.prompt.Messages(question, history)),
			Temperature: o.temperature,
			Stream:      true,
		})
		if err != nil {
			yield("", oops.In("llm").With("model", o.model).Wrapf(err, "failed to create chat completion stream"))
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", oops.In("llm").With("model", o.model).Wrapf(err, "failed to receive completion chunk"))
				return
			}

			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}

			if !yield(resp.Choices[0].Delta.Content, nil) {
				return
			}
		}
	}
}

func toOpenAI(messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}

		result = append(result, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	return result
}
