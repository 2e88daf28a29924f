// Package assessmentclient is a Go client for the assessment API. It owns
// the retry policy for question generation and the quiz wizard state.
package assessmentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lovematch/internal/config"
	"lovematch/internal/models/request_models"
	"lovematch/internal/models/response_models"
	"lovematch/pkg/utils"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// APIError is a non-2xx reply from the service.
type APIError struct {
	StatusCode int
	Message    string
	TraceID    string
}

func (e *APIError) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("assessment api: %d %s (trace %s)", e.StatusCode, e.Message, e.TraceID)
	}
	return fmt.Sprintf("assessment api: %d %s", e.StatusCode, e.Message)
}

// Is maps status codes back onto the server's error kinds.
func (e *APIError) Is(target error) bool {
	switch target {
	case utils.ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case utils.ErrTimeout:
		return e.StatusCode == http.StatusGatewayTimeout
	case utils.ErrUpstreamUnavailable:
		return e.StatusCode >= 500 && e.StatusCode != http.StatusGatewayTimeout
	}
	return false
}

func (e *APIError) retryable() bool {
	return e.StatusCode >= 500
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithRetry sets the attempt budget and the fixed delay between attempts
// for question generation.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(cl *Client) {
		if maxAttempts > 0 {
			cl.maxAttempts = maxAttempts
		}
		if delay >= 0 {
			cl.retryDelay = delay
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateQuestions retries server and transport failures sequentially, at
// most maxAttempts times with a fixed delay. Rejected input is not retried.
func (c *Client) GenerateQuestions(ctx context.Context, cfg *request_models.AssessmentConfig) (*response_models.QuestionsResponse, error) {
	var lastErr error
	for attempt := range c.maxAttempts {
		var resp response_models.QuestionsResponse
		err := c.post(ctx, "/questions", request_models.QuestionsRequest{Config: cfg}, &resp)
		if err == nil {
			return &resp, nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == c.maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return nil, lastErr
}

// Analyze makes a single attempt.
func (c *Client) Analyze(ctx context.Context, req *request_models.AnalyzeRequest) (*response_models.AnalysisResult, error) {
	var result response_models.AnalysisResult
	if err := c.post(ctx, "/analyze", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) FollowUp(ctx context.Context, req *request_models.FollowUpRequest) (*response_models.FollowUpResponse, error) {
	var resp response_models.FollowUpResponse
	if err := c.post(ctx, "/followup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Options(ctx context.Context) (*config.Catalog, error) {
	var catalog config.Catalog
	if err := c.do(ctx, http.MethodGet, "/options", nil, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	// Transport failures are treated as transient.
	return true
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody utils.APIResponse
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.TraceID = errBody.TraceID
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
