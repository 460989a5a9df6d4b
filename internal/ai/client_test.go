package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"here is your study plan"}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "gpt-4o-mini").WithBaseURL(server.URL)

	answer, err := client.Complete(context.Background(), "be a tutor", "topic: binary search")
	require.NoError(t, err)
	assert.Equal(t, "here is your study plan", answer)
}

func TestCompleteProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "gpt-4o-mini").WithBaseURL(server.URL)

	_, err := client.Complete(context.Background(), "system", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit reached")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "gpt-4o-mini").WithBaseURL(server.URL)

	_, err := client.Complete(context.Background(), "system", "user")
	assert.Error(t, err)
}

func TestCompleteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"never seen"}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "gpt-4o-mini").WithBaseURL(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "system", "user")
	assert.Error(t, err)
}
