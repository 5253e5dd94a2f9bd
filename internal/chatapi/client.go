// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jeranaias/chatdesk/internal/logger"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the chat client.
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

// Is matches any ClientError of the same type, so callers can compare
// against the sentinels below.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeTooLarge
)

// Sentinel errors for easy checking.
var (
	ErrConnection      = &ClientError{Type: ErrTypeConnection, Message: "could not reach chat endpoint"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from chat endpoint"}
	ErrTooLarge        = &ClientError{Type: ErrTypeTooLarge, Message: "response too large"}
)

// MaxResponseSize caps how much of a reply body is read.
const MaxResponseSize = 10 * 1024 * 1024

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultEndpoint is the local backend the client talks to out of the box.
const DefaultEndpoint = "http://127.0.0.1:5000/api/chat"

// Config holds configuration options for the chat client.
type Config struct {
	// Endpoint is the full URL requests are posted to.
	Endpoint string

	// Timeout bounds a whole request. Zero means no limit; the caller's
	// context still applies.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:  DefaultEndpoint,
		UserAgent: "chatdesk/1.0",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client posts conversations to the chat endpoint. It is safe for
// concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	log        *log.Logger
}

// NewClient creates a client. Empty fields of cfg take their defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.For("chatapi"),
	}
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Chat sends one request and waits for one reply.
//
// A reply body that decodes as JSON is returned with a nil error even when
// the HTTP status is not 2xx; its Error field then carries the backend's
// message, or the status line when the body had none. Network failures wrap
// ErrConnection and undecodable bodies wrap ErrInvalidResponse.
func (c *Client) Chat(ctx context.Context, req Request) (*Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug("chat request failed", "method", http.MethodPost, "url", c.config.Endpoint, "request_id", requestID, "error", err)
		return nil, &ClientError{Type: ErrTypeConnection, Message: ErrConnection.Message, Cause: err}
	}
	defer resp.Body.Close()

	c.log.Debug("chat request done",
		"method", http.MethodPost,
		"url", c.config.Endpoint,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: ErrInvalidResponse.Message, Cause: err}
	}

	if resp.StatusCode >= 400 && reply.Response == "" && reply.Error == "" {
		reply.Error = resp.Status
	}
	return &reply, nil
}

// readResponse reads at most MaxResponseSize bytes of the body.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to read response", Cause: err}
	}
	if len(data) > MaxResponseSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
