// Package ollama implements the default care scorer against a local Ollama
// endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/email-flagger/internal/core"
	"go.uber.org/zap"
)

// Client is an implementation of the Scorer interface against the Ollama
// generate API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	options    map[string]any
	logger     *zap.Logger
}

// generateRequest is the body of a non-streaming generate call.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// generateResponse is the subset of the generate reply we care about. A nil
// Response distinguishes a missing field from an empty reply.
type generateResponse struct {
	Response *string `json:"response"`
}

// NewClient creates a new Ollama client. options is passed through to the
// endpoint opaquely.
func NewClient(
	endpoint string,
	model string,
	timeout time.Duration,
	options map[string]any,
	logger *zap.Logger,
) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		options:    options,
		logger:     logger,
	}
}

// Score sends one blocking generate request and parses the care score out of
// the reply text. There are no retries: any failure is terminal for this
// invocation.
func (c *Client) Score(ctx context.Context, prompt string) (float64, error) {
	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return core.SentinelScore, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := c.endpoint + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return core.SentinelScore, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.SentinelScore, fmt.Errorf("failed to contact Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.SentinelScore, fmt.Errorf("ollama returned %s", resp.Status)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.SentinelScore, fmt.Errorf("failed to decode Ollama response: %w", err)
	}
	if out.Response == nil {
		return core.SentinelScore, fmt.Errorf("malformed Ollama response: missing response field")
	}

	c.logger.Debug("Ollama generate call finished",
		zap.String("model", c.model),
		zap.Duration("took", time.Since(start)))

	return core.ParseCareScore(strings.TrimSpace(*out.Response))
}
