package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sashabaranov/go-openai"
)

const (
	maxTranslateDuration = 30 * time.Second
	promptTemplate       = "Translate the following text from {from} to {to}. Reply with the translation only, without quotes or comments.\n\n{text}"
)

// Client translates text with a chat completion model.
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(client *openai.Client, model string) *Client {
	return &Client{
		client: client,
		model:  model,
	}
}

func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" || from == to {
		return text, nil
	}

	prompt := strings.NewReplacer(
		"{from}", from,
		"{to}", to,
		"{text}", text,
	).Replace(promptTemplate)

	ctx, cancel := context.WithTimeout(ctx, maxTranslateDuration)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0,
		},
	)
	if err != nil {
		return "", oops.In("translate").With("model", c.model).Wrapf(err, "failed to create chat completion")
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
