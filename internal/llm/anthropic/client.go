package anthropic

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"insightgen-backend/internal/llm"
)

const defaultMaxTokens = 4096

// Client implements llm.Client using the Anthropic Messages API.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewClient constructs a new Anthropic client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Anthropic")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("ANTHROPIC_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}

	maxTokens := int64(defaultMaxTokens)
	if raw := strings.TrimSpace(os.Getenv("ANTHROPIC_MAX_TOKENS")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxTokens = parsed
		}
	}

	return &Client{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// Invoke sends the prompt to the Messages API and returns the reply text.
// When a response schema is set, the reply is fence-stripped and validated
// against it before being returned.
func (c *Client) Invoke(ctx context.Context, req llm.Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt is empty")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if len(req.ResponseJSONSchema) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Text: structuredSystemPrompt(string(req.ResponseJSONSchema))},
		}
		params.Temperature = anthropic.Float(0)
	}

	resp, err := c.client.Messages.New(callCtx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	out := strings.TrimSpace(text.String())
	if len(req.ResponseJSONSchema) > 0 {
		out = llm.ExtractJSON(out)
		if err := llm.ValidateSchema(req.ResponseJSONSchema, out); err != nil {
			return "", fmt.Errorf("anthropic structured response: %w", err)
		}
	}
	return out, nil
}

func structuredSystemPrompt(schema string) string {
	return "Respond with a single JSON object that conforms to the following JSON Schema. " +
		"Do not include prose, markdown, or code fences outside the JSON object.\n\nJSON Schema:\n" + schema
}

var _ llm.Client = (*Client)(nil)
