package ai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geniepay/geniepay/internal/clients/ai"
	"github.com/geniepay/geniepay/internal/config"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"action\":\"list\"}"}}]}`))
	}))
	defer srv.Close()

	client := ai.NewClient(config.AIProvider{
		APIURL: srv.URL,
		APIKey: "test-key",
		Model:  "gpt-4o-mini",
	})

	got, err := client.Generate(context.Background(), []models.ChatMessage{
		{Role: "user", Content: "show my subscriptions"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"action":"list"}`, got)
}

func TestGenerate_NoAPIKey(t *testing.T) {
	client := ai.NewClient(config.AIProvider{APIURL: "http://localhost"})

	_, err := client.Generate(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.False(t, client.Enabled())
}

func TestGenerate_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := ai.NewClient(config.AIProvider{APIURL: srv.URL, APIKey: "test-key"})

	_, err := client.Generate(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := ai.NewClient(config.AIProvider{APIURL: srv.URL, APIKey: "test-key"})

	_, err := client.Generate(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}
