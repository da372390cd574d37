package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is the chat model used for answering questions.
const DefaultModel = "claude-sonnet-4-20250514"

// ErrEmptyCompletion is returned when the model produced no text blocks.
var ErrEmptyCompletion = errors.New("no completion returned")

// API defines the Anthropic operations the client depends on.
type API interface {
	CreateMessage(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error)
}

type sdkAdapter struct {
	client sdk.Client
}

func (a *sdkAdapter) CreateMessage(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error) {
	return a.client.Messages.New(ctx, params)
}

// Client wraps the Anthropic messages API.
type Client struct {
	api   API
	model string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:   &sdkAdapter{client: sdk.NewClient(option.WithAPIKey(apiKey))},
		model: model,
	}
}

// Complete runs a single-turn message with a system instruction.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float32) (string, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: sdk.Float(float64(temperature)),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := c.api.CreateMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
