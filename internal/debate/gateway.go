package debate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/debatearena/internal/llm"
)

// FallbackReply is substituted for the AI's turn whenever the gateway fails,
// so a model outage never blocks the human side of a debate.
const FallbackReply = "Sorry, I couldn't generate a response at the moment. Please check the server logs for more details."

// AIErrorKind classifies gateway failures.
type AIErrorKind string

const (
	AIUnavailable AIErrorKind = "unavailable"  // network or remote error, including timeouts
	AIRateLimited AIErrorKind = "rate_limited" // provider returned 429
	AIMalformed   AIErrorKind = "malformed"    // empty or missing content
)

// AIError is a tagged gateway failure. The orchestrator substitutes a
// fallback message instead of propagating it as a request failure.
type AIError struct {
	Kind AIErrorKind
	Err  error
}

func (e *AIError) Error() string {
	return fmt.Sprintf("ai gateway %s: %v", e.Kind, e.Err)
}

func (e *AIError) Unwrap() error { return e.Err }

// Gateway sends prompts to the LLM client with a profile's generation
// parameters and a bounded per-call timeout. It performs no retries; retry
// policy belongs to the orchestrator.
type Gateway struct {
	client   *llm.Client
	provider string // optional: pin to a named provider
	model    string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGateway creates a gateway over the multi-provider client. model may
// carry a provider prefix ("groq/llama-3.3-70b-versatile"); provider pins the
// call to one backend instead of walking the fallback chain.
func NewGateway(client *llm.Client, provider, model string, timeout time.Duration, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{client: client, provider: provider, model: model, timeout: timeout, logger: logger}
}

// Complete sends messages with the profile's temperature, top-p and max
// token settings. Failures come back tagged, never as a panic or a raw error.
func (g *Gateway) Complete(ctx context.Context, messages []llm.Message, p Profile) (string, *AIError) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := llm.Request{
		Model:       g.model,
		Messages:    messages,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		MaxTokens:   p.MaxTokens,
	}

	var resp *llm.Response
	var err error
	if g.provider != "" {
		resp, err = g.client.CompleteWith(ctx, g.provider, req)
	} else {
		resp, err = g.client.Complete(ctx, req)
	}
	if err != nil {
		kind := AIUnavailable
		switch {
		case errors.Is(err, llm.ErrRateLimited):
			kind = AIRateLimited
		case errors.Is(err, llm.ErrEmptyResponse):
			kind = AIMalformed
		}
		g.logger.Error("llm completion failed", "kind", string(kind), "error", err)
		return "", &AIError{Kind: kind, Err: err}
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		g.logger.Error("llm returned empty content", "provider", resp.Provider, "model", resp.Model)
		return "", &AIError{Kind: AIMalformed, Err: llm.ErrEmptyResponse}
	}

	g.logger.Info("llm completion",
		"provider", resp.Provider,
		"model", resp.Model,
		"tokens_in", resp.TokensIn,
		"tokens_out", resp.TokensOut,
		"latency_ms", resp.Latency.Milliseconds(),
	)
	return content, nil
}
