// Package gemini implements the care scorer against Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-flagger/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client is an implementation of the Scorer interface using Google Gemini.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewClient creates a new Gemini scorer.
func NewClient(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Score sends the prompt and parses the care score out of the generated
// text.
func (c *Client) Score(ctx context.Context, prompt string) (float64, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return core.SentinelScore, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return core.SentinelScore, fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	c.logger.Debug("Gemini generation finished", zap.String("model", c.modelName))

	return core.ParseCareScore(text.String())
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}
