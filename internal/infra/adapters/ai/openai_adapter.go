package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"outbound-email-engine/internal/config"
	"outbound-email-engine/internal/domain"
	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.CompletionAdapter using the Chat
// Completions API with a strict structured-output schema: the model must
// return exactly {subject, greeting, body}, no additional properties.
type OpenAIAdapter struct {
	apiKey      string
	base        string // e.g., https://api.openai.com/v1
	model       string
	temperature float64
	topP        float64
	client      *http.Client
}

func NewOpenAIAdapter(cfg *config.AIConfig) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key empty: %w", domain.ErrConfiguration)
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIAdapter{
		apiKey:      cfg.APIKey,
		base:        strings.TrimRight(base, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

func (o *OpenAIAdapter) ModelName() string { return o.model }

// Complete makes exactly one network call. Any transport error, non-2xx
// status, or content that does not decode into the email schema wraps
// domain.ErrProvider; there is no internal retry.
func (o *OpenAIAdapter) Complete(ctx context.Context, prompt string) (model.EmailDraft, adapter.Usage, error) {
	var zero model.EmailDraft

	b, _ := json.Marshal(chatRequestBody(o.model, prompt, o.temperature, o.topP))
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return zero, adapter.Usage{}, fmt.Errorf("chat completions: %v: %w", err, domain.ErrProvider)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return zero, adapter.Usage{}, fmt.Errorf("openai http %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(detail)), domain.ErrProvider)
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage usagePayload `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return zero, adapter.Usage{}, fmt.Errorf("decode response: %v: %w", err, domain.ErrProvider)
	}
	if len(payload.Choices) == 0 || payload.Choices[0].Message.Content == "" {
		return zero, adapter.Usage{}, fmt.Errorf("no choice content: %w", domain.ErrProvider)
	}

	draft, err := decodeDraft(payload.Choices[0].Message.Content)
	if err != nil {
		return zero, adapter.Usage{}, fmt.Errorf("%v: %w", err, domain.ErrProvider)
	}
	return draft, payload.Usage.toUsage(), nil
}

// CountTokens estimates prompt tokens locally. Models unknown to the
// tokenizer library fall back to the cl100k_base encoding.
func (o *OpenAIAdapter) CountTokens(prompt string) (int, error) {
	enc, err := tiktoken.EncodingForModel(o.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	return len(enc.Encode(prompt, nil, nil)), nil
}

// ---- shared wire types ----

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatBody struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p"`
	ResponseFormat json.RawMessage `json:"response_format"`
}

type usagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u usagePayload) toUsage() adapter.Usage {
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	return adapter.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      total,
	}
}

// emailResponseFormat is the strict structured-output contract: exactly
// three string fields, nothing else permitted.
var emailResponseFormat = json.RawMessage(`{
	"type": "json_schema",
	"json_schema": {
		"name": "cold_email",
		"strict": true,
		"schema": {
			"type": "object",
			"properties": {
				"subject": {"type": "string"},
				"greeting": {"type": "string"},
				"body": {"type": "string"}
			},
			"required": ["subject", "greeting", "body"],
			"additionalProperties": false
		}
	}
}`)

func chatRequestBody(modelName, prompt string, temperature, topP float64) chatBody {
	return chatBody{
		Model:          modelName,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    temperature,
		TopP:           topP,
		ResponseFormat: emailResponseFormat,
	}
}

func decodeDraft(content string) (model.EmailDraft, error) {
	var draft model.EmailDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return draft, fmt.Errorf("structured content does not match email schema: %v", err)
	}
	return draft, nil
}
