// Package llm wraps the language model used to draft and adjust journeys.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one prompt to a model and returns its JSON answer.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System string
	Prompt string
	// Schema, when set, asks the model for structured JSON and validates
	// the answer against it.
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Schema is a JSON Schema definition. Name must be unique per definition;
// compiled schemas are cached by name.
type Schema struct {
	Name       string
	Definition map[string]any
}

type Response struct {
	Content json.RawMessage
	Model   string
	Usage   Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}
