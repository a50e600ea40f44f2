// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the deepreasoning client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeAuth
	ErrTypeBadRequest
	ErrTypeRateLimited
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeUpstream
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "deepreasoning server is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrAuth        = &ClientError{Type: ErrTypeAuth, Message: "missing or rejected API token"}
	ErrRateLimited = &ClientError{Type: ErrTypeRateLimited, Message: "rate limit exceeded"}
)

// wrapTransportErr classifies a failed request while keeping the cause in
// the chain. Callers distinguish a user cancel from a real timeout with
// errors.Is(err, context.Canceled), so the cause must stay visible.
func wrapTransportErr(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeTimeout, Message: "request cancelled", Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	default:
		return &ClientError{Type: ErrTypeUnreachable, Message: "deepreasoning server is not reachable", Cause: err}
	}
}

// =============================================================================
// REQUEST AND RESPONSE TYPES
// =============================================================================

// Message roles on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in the conversation history sent to the server.
// Only the visible content travels on the wire; reasoning from earlier turns
// is never sent back.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PassthroughConfig carries extra headers and body fields forwarded verbatim
// to one of the upstream model APIs.
type PassthroughConfig struct {
	Headers map[string]string `json:"headers,omitempty"`
	Body    map[string]any    `json:"body,omitempty"`
}

// ChatRequest is the request body for the chat endpoint. The system prompt
// lives in its own field and must not be duplicated inside Messages; the
// server rejects requests that do both.
type ChatRequest struct {
	Stream          bool               `json:"stream"`
	Verbose         bool               `json:"verbose,omitempty"`
	System          string             `json:"system,omitempty"`
	Messages        []Message          `json:"messages"`
	DeepSeekConfig  *PassthroughConfig `json:"deepseek_config,omitempty"`
	AnthropicConfig *PassthroughConfig `json:"anthropic_config,omitempty"`
}

// ChatResponse is the non-streaming response body. Content carries the
// thinking block followed by the answer blocks, same shape as the streaming
// content events.
type ChatResponse struct {
	Created           time.Time         `json:"created"`
	Content           []ContentBlock    `json:"content"`
	DeepSeekResponse  *ExternalResponse `json:"deepseek_response,omitempty"`
	AnthropicResponse *ExternalResponse `json:"anthropic_response,omitempty"`
	CombinedUsage     CombinedUsage     `json:"combined_usage"`
}

// ExternalResponse is the raw upstream response included when Verbose is set.
type ExternalResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

// serverError mirrors the server's error response envelope.
type serverError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Param   string `json:"param,omitempty"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Token header names expected by the server.
const (
	headerDeepSeekToken  = "X-DeepSeek-API-Token"
	headerAnthropicToken = "X-Anthropic-API-Token"
)

// ClientConfig holds configuration options for the deepreasoning client.
type ClientConfig struct {
	// BaseURL is the deepreasoning server base URL (default: http://127.0.0.1:1337)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// DeepSeekToken authenticates the reasoning model upstream.
	DeepSeekToken string

	// AnthropicToken authenticates the answer model upstream.
	AnthropicToken string

	// Timeout for non-streaming requests (default: 120s)
	Timeout time.Duration

	// RequestsPerSecond caps outgoing request rate (default: 2)
	RequestsPerSecond float64

	// Burst is the rate limiter burst size (default: 4)
	Burst int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:1337",
		Timeout:           120 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the deepreasoning server.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := api.NewClientWithConfig(&api.ClientConfig{
//	    DeepSeekToken:  dsToken,
//	    AnthropicToken: antToken,
//	})
//	err := client.ChatStream(ctx, req, func(event api.StreamEvent) {
//	    // handle event
//	})
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:1337"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 2
	}
	if config.Burst == 0 {
		config.Burst = 4
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// newRequest builds an authenticated POST to the chat endpoint.
func (c *Client) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerDeepSeekToken, c.config.DeepSeekToken)
	req.Header.Set(headerAnthropicToken, c.config.AnthropicToken)
	return req, nil
}

// classifyStatus maps a non-200 response to a client error, reading the
// server's error envelope when one is present.
func classifyStatus(resp *http.Response) error {
	var srvErr serverError
	message := ""
	if err := json.NewDecoder(resp.Body).Decode(&srvErr); err == nil {
		message = srvErr.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		if message == "" {
			message = "bad request"
		}
		return &ClientError{Type: ErrTypeBadRequest, Message: message}
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		if message == "" {
			message = "upstream model API failed"
		}
		return &ClientError{Type: ErrTypeUpstream, Message: message}
	default:
		if message == "" {
			message = "request failed: " + resp.Status
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: message}
	}
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat sends a chat request and returns the complete response (non-streaming).
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (*ChatResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeRateLimited, Message: "rate limiter wait cancelled", Cause: err}
	}

	chatReq.Stream = false
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := c.newRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream sends a streaming chat request and calls the callback for each
// event. The callback is called synchronously in the order events are
// received. Returns when the stream is complete or an error occurs.
func (c *Client) ChatStream(ctx context.Context, chatReq ChatRequest, callback StreamCallback) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeRateLimited, Message: "rate limiter wait cancelled", Cause: err}
	}

	chatReq.Stream = true
	body, err := json.Marshal(chatReq)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// Use a client without timeout for streaming (timeout is handled via context)
	streamClient := &http.Client{}

	req, err := c.newRequest(ctx, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(req)
	if err != nil {
		return wrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp)
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// IsUnreachable checks if an error indicates the server is not reachable.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeAuth
	}
	return errors.Is(err, ErrAuth)
}

// IsBadRequest checks if an error is a request validation error.
func IsBadRequest(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeBadRequest
	}
	return false
}
