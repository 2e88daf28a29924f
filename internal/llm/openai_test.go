package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovematch/pkg/utils"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIProvider(OpenAIConfig{
		APIKey:     "test-key",
		Model:      "deepseek-chat",
		BaseURL:    server.URL + "/v1",
		HTTPClient: server.Client(),
	})
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "deepseek-chat",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	})
}

func TestOpenAIProvider_SendsExpectedRequest(t *testing.T) {
	var got map[string]any
	var auth string
	handler := func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, `{"questions":[]}`)
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := p.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "system prompt"},
			{Role: RoleUser, Content: "generate"},
		},
		Temperature: 0.8,
		MaxTokens:   2000,
		JSON:        true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"questions":[]}`, resp.Text)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, "stop", resp.FinishReason)

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "deepseek-chat", got["model"])
	assert.EqualValues(t, 2000, got["max_tokens"])
	assert.InDelta(t, 0.8, got["temperature"], 1e-6)
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenAIProvider_Unauthorized(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "authentication_error",
				"message": "Authentication Fails",
			},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusUnauthorized, respErr.StatusCode)
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})

	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "deepseek-chat",
			"choices": []any{},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})

	assert.ErrorIs(t, err, utils.ErrMalformedResponse)
}

func TestOpenAIProvider_GatewayTimeoutAbortsRequest(t *testing.T) {
	released := make(chan struct{})
	handler := func(w http.ResponseWriter, r *http.Request) {
		// The server only watches for a client disconnect once the body is consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		close(released)
	}

	p := newTestOpenAIProvider(t, handler)
	g := NewGateway(p, GatewayConfig{Timeout: 50 * time.Millisecond}, nil)

	err := g.CompleteJSON(context.Background(), testCall(), &resultEnvelope{})
	require.ErrorIs(t, err, utils.ErrTimeout)

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream request was left pending")
	}
}

func TestOpenAIProvider_ModelDefaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{})
	assert.Equal(t, "deepseek-chat", p.ModelID())

	p = NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: "https://api.openai.com/v1"})
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), ProviderConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
