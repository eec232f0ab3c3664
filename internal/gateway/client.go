// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the chat backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatdesk/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the development backend address.
	DefaultBaseURL = "http://localhost:5669"

	// MaxResponseSize caps how much of any response body is read.
	MaxResponseSize = 32 * 1024 * 1024

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	defaultUserAgent = "chatdesk"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gateway client.
type ClientConfig struct {
	// BaseURL is the backend API root (default: http://localhost:5669)
	BaseURL string

	// Timeout per request. 0 leaves the transport default (no timeout).
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests. 0 disables pacing.
	RequestsPerSecond float64

	// Burst is the limiter bucket size (default: 1 when pacing)
	Burst int

	// UserAgent sent with every request (default: "chatdesk")
	UserAgent string

	// Logger receives request/response records (default: slog.Default())
	Logger *slog.Logger

	// HTTPClient overrides the underlying client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   DefaultBaseURL,
		UserAgent: defaultUserAgent,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat backend.
//
// The Client is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client for baseURL with default configuration.
func NewClient(baseURL string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger.With("component", "gateway"),
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// request describes one call to the backend.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// jsonBody marshals v for use as a request body.
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// do performs r and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transportError(r.method, r.path, err)
		}
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return &GatewayError{Kind: KindRequest, Method: r.method, Path: r.path, Cause: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	c.logger.Debug("API Request", "method", r.method, "path", r.path, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("API Request failed",
			"method", r.method, "path", r.path, "request_id", requestID,
			"duration", time.Since(start), "error", err)
		return transportError(r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, readErr := readResponse(resp)

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "API Response",
		"method", r.method, "path", r.path, "request_id", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(r.method, r.path, resp.StatusCode, body)
	}
	if readErr != nil {
		return &GatewayError{
			Kind: KindInvalidResponse, Method: r.method, Path: r.path,
			Status: resp.StatusCode, Cause: readErr,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &GatewayError{
			Kind: KindInvalidResponse, Method: r.method, Path: r.path,
			Status: resp.StatusCode, Cause: fmt.Errorf("failed to parse response: %w", err),
		}
	}
	return nil
}

// readResponse reads the response body with size limits.
// On error the bytes read so far are still returned.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return body, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return body[:MaxResponseSize], fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// conversationPath builds /chat/conversations/{id}[/suffix].
func conversationPath(id, suffix string) string {
	return "/chat/conversations/" + url.PathEscape(id) + suffix
}

// =============================================================================
// MODELS
// =============================================================================

// ListModels returns the models the backend can route to.
func (c *Client) ListModels(ctx context.Context) ([]model.ModelDescriptor, error) {
	var models []model.ModelDescriptor
	if err := c.do(ctx, request{method: http.MethodGet, path: "/chat/models"}, &models); err != nil {
		return nil, err
	}
	if models == nil {
		models = []model.ModelDescriptor{}
	}
	return models, nil
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ListConversations returns conversation summaries in server order.
func (c *Client) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	var convs []model.ConversationSummary
	if err := c.do(ctx, request{method: http.MethodGet, path: "/chat/conversations"}, &convs); err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []model.ConversationSummary{}
	}
	return convs, nil
}

// CreateConversation creates an empty conversation. An empty title
// becomes "New Chat".
func (c *Client) CreateConversation(ctx context.Context, provider, modelName, title string) (*model.ConversationDetail, error) {
	if title == "" {
		title = model.DefaultConversationTitle
	}
	query := url.Values{}
	query.Set("model_provider", provider)
	query.Set("model_name", modelName)
	query.Set("title", title)

	var conv model.ConversationDetail
	if err := c.do(ctx, request{method: http.MethodPost, path: "/chat/conversations", query: query}, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversation returns one conversation with its messages.
func (c *Client) GetConversation(ctx context.Context, id string) (*model.ConversationDetail, error) {
	var conv model.ConversationDetail
	if err := c.do(ctx, request{method: http.MethodGet, path: conversationPath(id, "")}, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// DeleteConversation removes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) (*model.Ack, error) {
	var ack model.Ack
	if err := c.do(ctx, request{method: http.MethodDelete, path: conversationPath(id, "")}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// SendMessage appends a user message to an existing conversation and
// returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, conversationID, text, provider, modelName string, fileContent *string) (*model.ChatResponse, error) {
	id := conversationID
	return c.send(ctx, conversationPath(conversationID, "/messages"), model.ChatRequest{
		Message:        text,
		ModelProvider:  provider,
		ModelName:      modelName,
		ConversationID: &id,
		FileContent:    fileContent,
	})
}

// SendStandaloneMessage sends a message without a conversation. The
// backend creates one and returns its id in the response.
func (c *Client) SendStandaloneMessage(ctx context.Context, text, provider, modelName string, fileContent *string) (*model.ChatResponse, error) {
	return c.send(ctx, "/chat/message", model.ChatRequest{
		Message:       text,
		ModelProvider: provider,
		ModelName:     modelName,
		FileContent:   fileContent,
	})
}

func (c *Client) send(ctx context.Context, path string, payload model.ChatRequest) (*model.ChatResponse, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return nil, &GatewayError{Kind: KindRequest, Method: http.MethodPost, Path: path, Cause: err}
	}
	var resp model.ChatResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// HEALTH
// =============================================================================

// HealthStatus is the backend's /health payload.
type HealthStatus struct {
	Status          string          `json:"status"`
	Version         string          `json:"version"`
	ModelsAvailable map[string]bool `json:"models_available"`
}

// Healthy reports whether the backend said it is healthy.
func (h *HealthStatus) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy") || strings.EqualFold(h.Status, "ok")
}

// Health queries the backend health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	if err := c.do(ctx, request{method: http.MethodGet, path: "/health"}, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
