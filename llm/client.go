package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"

	"sprint-insights/config"
)

// Client wraps the OpenAI chat completions API. Every AI feature in the
// suite is optional: callers check Enabled and degrade to heuristics when
// no key is configured.
type Client struct {
	key   string
	model string
	cli   openai.Client
	log   zerolog.Logger
}

// NewClient creates an OpenAI-backed client from the configuration
func NewClient(cfg config.Config, logger zerolog.Logger) *Client {
	return &Client{
		key:   cfg.OpenAIKey,
		model: cfg.OpenAIModel,
		cli:   openai.NewClient(option.WithAPIKey(cfg.OpenAIKey)),
		log:   logger,
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.key) != ""
}

// Complete sends a system+user prompt and returns the raw text response
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", errors.New("openai: missing key")
	}

	c.log.Info().Str("model", c.model).Msg("openai completion call")
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}

	resp, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON sends a prompt that demands JSON output and unmarshals the
// response into out, tolerating markdown code fences around the payload.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, out any) error {
	text, err := c.Complete(ctx, system, user)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(StripFences(text)), out)
}

// StripFences removes a surrounding markdown code fence from a model
// response, with or without a language tag.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
