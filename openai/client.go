// Package openai implements the chat-completion transport against any
// OpenAI-compatible API endpoint. The client translates protocol.ChatRequest
// into the /chat/completions wire format, carries tool definitions, and
// decodes either the assistant's text or its requested tool calls.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/DrewRidley/aiform/core/protocol"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second
)

// Config holds client settings. Zero values fall back to the public OpenAI
// endpoint and a 120 second request timeout.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a client from explicit configuration.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientFromEnv creates a client configured from OPENAI_API_KEY and
// OPENAI_BASE_URL. A .env file in the working directory is loaded first when
// present, so local development does not require exporting variables.
func NewClientFromEnv() *Client {
	_ = godotenv.Load()
	return NewClient(Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	})
}

// wire types for the /chat/completions endpoint.

type chatRequest struct {
	Model    string             `json:"model"`
	Messages []protocol.Message `json:"messages"`
	Tools    []wireTool         `json:"tools,omitempty"`
}

type wireTool struct {
	Type     string        `json:"type"`
	Function protocol.Tool `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error (%s): %s", e.Type, e.Message)
}

// Complete sends the conversation to the chat completion endpoint and
// returns the first choice. Tool definitions are wrapped in the function
// envelope the API expects; tool calls in the reply decode through
// protocol.ToolCall's nested-format support.
func (c *Client) Complete(ctx context.Context, req protocol.ChatRequest) (*protocol.ChatResponse, error) {
	wire := chatRequest{
		Model:    req.Model,
		Messages: req.Messages,
	}
	for _, t := range req.Tools {
		wire.Tools = append(wire.Tools, wireTool{Type: "function", Function: t})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", httpResp.StatusCode, err)
	}

	if parsed.Error != nil {
		return nil, parsed.Error
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, respBody)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	msg := parsed.Choices[0].Message
	return &protocol.ChatResponse{
		Content:   msg.Content,
		ToolCalls: msg.ToolCalls,
	}, nil
}
