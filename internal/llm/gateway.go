package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 55 * time.Second
	DefaultMaxTokens = 2000
)

type GatewayConfig struct {
	// Timeout bounds a single completion call. Default: 55s, just under the
	// ~60s limit of the hosting platform.
	Timeout time.Duration

	// MaxTokens caps generated tokens when a Call does not set its own.
	MaxTokens int
}

// Gateway turns a prompt into exactly one completion call and returns either
// a fully validated value or a *ResponseError. It never retries and never
// caches.
type Gateway struct {
	provider  Provider
	timeout   time.Duration
	maxTokens int
	logger    *zap.Logger
}

// Call describes one exchange with the completion service.
type Call struct {
	// Purpose labels the call in logs, e.g. "questions".
	Purpose     string
	Messages    []Message
	Temperature float64
	MaxTokens   int

	// Schema, when set, is checked against the parsed reply in CompleteJSON.
	Schema *Schema
}

func NewGateway(provider Provider, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		provider:  provider,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

func (g *Gateway) ModelID() string {
	return g.provider.ModelID()
}

// CompleteJSON asks for a JSON object, sanitizes and parses the reply,
// checks it against call.Schema and decodes it into out. Nothing is written
// to out unless every step succeeds.
func (g *Gateway) CompleteJSON(ctx context.Context, call Call, out any) error {
	resp, err := g.complete(ctx, call, true)
	if err != nil {
		return err
	}

	text := Sanitize(resp.Text)
	if strings.TrimSpace(text) == "" {
		return malformedError(resp.Text, errors.New("empty completion"))
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		if resp.FinishReason == "length" {
			err = fmt.Errorf("reply truncated at max tokens: %w", err)
		}
		return malformedError(resp.Text, err)
	}

	if call.Schema != nil {
		if err := call.Schema.Validate(doc); err != nil {
			return invalidShapeError(resp.Text, err)
		}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return invalidShapeError(resp.Text, fmt.Errorf("decode reply: %w", err))
	}
	return nil
}

// CompleteText returns the plain reply text.
func (g *Gateway) CompleteText(ctx context.Context, call Call) (string, error) {
	resp, err := g.complete(ctx, call, false)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", malformedError(resp.Text, errors.New("empty completion"))
	}
	return text, nil
}

func (g *Gateway) complete(ctx context.Context, call Call, jsonMode bool) (*Completion, error) {
	maxTokens := call.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.provider.Complete(callCtx, Request{
		Messages:    call.Messages,
		Temperature: call.Temperature,
		MaxTokens:   maxTokens,
		JSON:        jsonMode,
	})
	latency := time.Since(start)

	if err != nil {
		err = g.classify(callCtx, err)
		g.logger.Warn("completion failed",
			zap.String("purpose", call.Purpose),
			zap.String("model", g.provider.ModelID()),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return nil, err
	}

	g.logger.Debug("completion finished",
		zap.String("purpose", call.Purpose),
		zap.String("model", resp.Model),
		zap.Duration("latency", latency),
		zap.String("finish_reason", resp.FinishReason),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return resp, nil
}

// classify normalizes provider errors. An expired call deadline always wins,
// whatever the provider reported.
func (g *Gateway) classify(callCtx context.Context, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return timeoutError(fmt.Errorf("no reply within %s: %w", g.timeout, err))
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr
	}
	return upstreamError(0, err)
}
