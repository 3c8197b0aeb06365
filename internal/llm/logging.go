package llm

import (
	"context"
	"log/slog"
	"time"
)

type loggingProvider struct {
	inner Provider
}

// WithLogging logs latency, token usage and failures of every request.
func WithLogging(p Provider) Provider {
	return &loggingProvider{inner: p}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	schema := ""
	if req.Schema != nil {
		schema = req.Schema.Name
	}

	if err != nil {
		slog.Error("model request failed", "error", err, "model", l.inner.ModelID(), "schema", schema, "latency", latency)
		return nil, err
	}

	slog.Info("model request",
		"model", resp.Model,
		"schema", schema,
		"latency", latency,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp, nil
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}
