//go:build !integration

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outbound-email-engine/internal/config"
	"outbound-email-engine/internal/domain"
)

func testAIConfig(baseURL string) *config.AIConfig {
	return &config.AIConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "gpt-4.1-mini",
		Temperature: 0.4,
		TopP:        0.9,
	}
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200},
	})
	return string(b)
}

func TestOpenAIAdapter_Complete(t *testing.T) {
	var gotBody chatBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(chatResponse(`{"subject":"S","greeting":"Hi Ana,","body":"B"}`)))
	}))
	defer srv.Close()

	a, err := NewOpenAIAdapter(testAIConfig(srv.URL))
	require.NoError(t, err)

	draft, usage, err := a.Complete(context.Background(), "write an email")
	require.NoError(t, err)
	assert.Equal(t, "S", draft.Subject)
	assert.Equal(t, "Hi Ana,", draft.Greeting)
	assert.Equal(t, "B", draft.Body)
	assert.Equal(t, 120, usage.PromptTokens)
	assert.Equal(t, 80, usage.CompletionTokens)
	assert.Equal(t, 200, usage.TotalTokens)

	// request carries the model parameters and the strict schema
	assert.Equal(t, "gpt-4.1-mini", gotBody.Model)
	assert.Equal(t, 0.4, gotBody.Temperature)
	assert.Equal(t, 0.9, gotBody.TopP)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)

	var rf struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Strict bool `json:"strict"`
			Schema struct {
				Required             []string `json:"required"`
				AdditionalProperties bool     `json:"additionalProperties"`
			} `json:"schema"`
		} `json:"json_schema"`
	}
	require.NoError(t, json.Unmarshal(gotBody.ResponseFormat, &rf))
	assert.Equal(t, "json_schema", rf.Type)
	assert.True(t, rf.JSONSchema.Strict)
	assert.Equal(t, []string{"subject", "greeting", "body"}, rf.JSONSchema.Schema.Required)
	assert.False(t, rf.JSONSchema.Schema.AdditionalProperties)
}

func TestOpenAIAdapter_Complete_HTTPErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a, err := NewOpenAIAdapter(testAIConfig(srv.URL))
	require.NoError(t, err)

	_, _, err = a.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIAdapter_Complete_UnparseableContentIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chatResponse("sure, here is your email!")))
	}))
	defer srv.Close()

	a, err := NewOpenAIAdapter(testAIConfig(srv.URL))
	require.NoError(t, err)

	_, _, err = a.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestOpenAIAdapter_Complete_EmptyChoicesIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	a, err := NewOpenAIAdapter(testAIConfig(srv.URL))
	require.NoError(t, err)

	_, _, err = a.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestNewOpenAIAdapter_RequiresKey(t *testing.T) {
	_, err := NewOpenAIAdapter(&config.AIConfig{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
