// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pdiddy/study-engine/pkg/types"
)

// retryBaseDelay is the base wait after a rate-limited attempt. Tests
// override this to avoid real sleeps.
var retryBaseDelay = 10 * time.Second

// defaultModels is the fallback chain used when the config names none.
var defaultModels = []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"}

// OpenAIClient calls the OpenAI chat-completions API with an ordered
// model-fallback chain: when the preferred model is rate-limited or
// rejected, the next model in the chain is tried before backing off.
type OpenAIClient struct {
	cfg    types.AIConfig
	client openai.Client
}

// NewOpenAIClient builds a client from the AI config. Extra request
// options (e.g. a test server base URL) are appended after the API key.
func NewOpenAIClient(cfg types.AIConfig, opts ...option.RequestOption) *OpenAIClient {
	all := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &OpenAIClient{
		cfg:    cfg,
		client: openai.NewClient(all...),
	}
}

// models returns the ordered model chain: the configured model first,
// then its fallbacks, deduplicated.
func (c *OpenAIClient) models() []string {
	var chain []string
	if c.cfg.Model != "" {
		chain = append(chain, c.cfg.Model)
	}
	chain = append(chain, c.cfg.FallbackModels...)
	if len(chain) == 0 {
		chain = defaultModels
	}

	seen := make(map[string]bool, len(chain))
	var out []string
	for _, m := range chain {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// GenerateText sends the prompt and returns the model's text. Each retry
// round walks the whole model chain; rate limits trigger a growing wait
// between rounds. Authentication failures abort immediately. When every
// model fails in every round, a ServiceError is returned.
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	maxRetries := c.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	attempts := 0
	var lastErr error

	for round := 0; round < maxRetries; round++ {
		for _, model := range c.models() {
			attempts++

			text, err := c.complete(ctx, model, prompt, maxTokens)
			if err == nil {
				return strings.TrimSpace(text), nil
			}
			lastErr = err

			var apiErr *openai.Error
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
				return "", &ServiceError{Attempts: attempts, Err: fmt.Errorf("authentication failed: %w", err)}
			}
			if ctx.Err() != nil {
				return "", &ServiceError{Attempts: attempts, Err: ctx.Err()}
			}
		}

		if round < maxRetries-1 {
			wait := time.Duration(round+1) * retryBaseDelay
			select {
			case <-ctx.Done():
				return "", &ServiceError{Attempts: attempts, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}
	}

	return "", &ServiceError{Attempts: attempts, Err: lastErr}
}

func (c *OpenAIClient) complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}
