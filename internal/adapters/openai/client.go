// Package openai implements the care scorer against the OpenAI chat
// completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/mikey/email-flagger/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client is an implementation of the Scorer interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a new OpenAI scorer.
func NewClient(apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Score sends the prompt as a single user message and parses the care score
// out of the completion text.
func (c *Client) Score(ctx context.Context, prompt string) (float64, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return core.SentinelScore, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.SentinelScore, fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("OpenAI completion finished",
		zap.String("model", c.model),
		zap.String("id", resp.ID))

	return core.ParseCareScore(resp.Choices[0].Message.Content)
}
