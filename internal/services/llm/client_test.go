package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/services"
)

type chatRequest struct {
	Model          string `json:"model"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatResponse(content string) string {
	payload := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var sleeps []time.Duration
	opts = append([]Option{
		WithRetryBackoff(time.Second, 10*time.Second),
		WithSleeper(func(d time.Duration) { sleeps = append(sleeps, d) }),
	}, opts...)
	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	}, opts...)
	return client, &sleeps
}

func TestRewriteReturnsContent(t *testing.T) {
	var seen chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &seen))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse("  A clean description.  "))
	})

	got, err := client.Rewrite(context.Background(), "A messy description. Sponsored by Acme.")
	require.NoError(t, err)
	assert.Equal(t, "A clean description.", got)
	assert.Equal(t, "test-model", seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Contains(t, seen.Messages[1].Content, "Sponsored by Acme.")
}

func TestRewriteRejectsEmptyInput(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	_, err := client.Rewrite(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrService)
}

func TestMissingAPIKeyIsConfigurationError(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Rewrite(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrConfiguration)
}

func TestRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	client, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
			return
		}
		_, _ = io.WriteString(w, chatResponse("ok"))
	})

	got, err := client.Rewrite(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
}

func TestDoesNotRetryUnauthorized(t *testing.T) {
	var calls atomic.Int32
	client, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"auth"}}`)
	})

	_, err := client.Rewrite(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrService)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, *sleeps)
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse(""))
	})

	_, err := client.Rewrite(context.Background(), "text")
	require.Error(t, err)
	var empty *emptyContentError
	assert.True(t, errors.As(err, &empty))
	assert.Equal(t, int32(defaultRetryAttempts), calls.Load())
}

func TestSuggestTagsDecodesLenientPayload(t *testing.T) {
	var seen chatRequest
	payload := "```json\n" + `{"format": "Standalone Episodes", "theme_tags": ["Military History & Battles"], "Tracks": []}` + "\n```"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &seen))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse(payload))
	})

	got, err := client.SuggestTags(context.Background(), "The Battle of Hastings", "Norman conquest.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Standalone Episodes"}, got.Format)
	assert.Equal(t, []string{"Military History & Battles"}, got.Theme)
	assert.Empty(t, got.Track)

	require.NotNil(t, seen.ResponseFormat)
	assert.Equal(t, "json_object", seen.ResponseFormat.Type)
	assert.Contains(t, seen.Messages[1].Content, "The Battle of Hastings")
	assert.Contains(t, seen.Messages[1].Content, "Military History & Battles")
}

func TestSuggestTagsRejectsGarbage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse("I think it is about history."))
	})

	_, err := client.SuggestTags(context.Background(), "Title", "Description")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrService)
}

func TestHealthCheck(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse(`{"ok":true}`))
	})
	require.NoError(t, client.HealthCheck(context.Background()))
}

func TestContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Rewrite(ctx, "text")
	require.Error(t, err)
}

func TestDecodeLLMJSON(t *testing.T) {
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, DecodeLLMJSON("Sure! Here you go: {\"ok\": true} Thanks", &out))
	assert.True(t, out.OK)

	err := DecodeLLMJSON("", &out)
	require.Error(t, err)
}

func TestBackoffDelayCaps(t *testing.T) {
	c := NewClient(Config{}, WithRetryBackoff(time.Second, 3*time.Second))
	assert.Equal(t, time.Second, c.backoffDelay(1))
	assert.Equal(t, 2*time.Second, c.backoffDelay(2))
	assert.Equal(t, 3*time.Second, c.backoffDelay(3))
	assert.Equal(t, 3*time.Second, c.backoffDelay(8))
}
