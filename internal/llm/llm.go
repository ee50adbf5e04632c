package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Client abstracts LLM providers for business data analysis.
type Client interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Request captures a single model invocation. When ResponseJSONSchema is set,
// the reply must be a JSON document conforming to the schema.
type Request struct {
	Prompt             string
	ResponseJSONSchema json.RawMessage
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Invoke returns ErrNotImplemented.
func (PlaceholderClient) Invoke(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}

// ValidateSchema checks that doc is a JSON document conforming to schema.
func ValidateSchema(schema json.RawMessage, doc string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewStringLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(details, "; "))
	}
	return nil
}

// ExtractJSON strips markdown code fences that models sometimes wrap around
// JSON replies and returns the inner document.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		return strings.TrimSpace(trimmed)
	}
	// Some models prepend prose before the object. Fall back to the outermost braces.
	if !strings.HasPrefix(trimmed, "{") {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start >= 0 && end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}
