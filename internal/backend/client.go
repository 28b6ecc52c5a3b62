// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
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
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeBackend
	ErrTypeInvalidResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeBackend:
		return "backend"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "backend is unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound    = &ClientError{Type: ErrTypeNotFound, Message: "document not found"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the API root including the /api prefix (default: http://localhost:8000/api).
	// A trailing slash is trimmed.
	BaseURL string

	// Timeout for each request. Zero leaves timing to the network stack.
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests. Zero or negative means unlimited.
	RequestsPerSecond float64

	// Logger receives request-level debug logs (default: no-op).
	Logger *zap.Logger

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the question-answering backend.
//
// The Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
		log:        log.Named("backend"),
	}
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// HEALTH
// =============================================================================

// Health returns the status string the backend reports, e.g. "healthy".
func (c *Client) Health(ctx context.Context) (string, error) {
	var result HealthResponse
	if err := c.getJSON(ctx, "/health", &result); err != nil {
		return "", err
	}
	return result.Status, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// ListDocuments retrieves the documents the backend can answer questions about.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := c.getJSON(ctx, "/pdfs", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadDocument tells the backend which document subsequent chat requests are about.
// The response body carries nothing the client needs and is discarded.
func (c *Client) LoadDocument(ctx context.Context, path string) error {
	body, err := json.Marshal(LoadRequest{PDFPath: path})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/load-pdf", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

// UploadDocument sends a document as the multipart field "file".
// A response with Success=false is returned without error; transport and HTTP
// failures are returned as errors.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := c.do(ctx, http.MethodPost, "/upload-pdf", form.FormDataContentType(), pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	defer resp.Body.Close()

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode upload response", Cause: err}
	}
	return &result, nil
}

// DocumentInfo retrieves detailed metadata for a document by name.
func (c *Client) DocumentInfo(ctx context.Context, name string) (*model.DocumentInfo, error) {
	var info model.DocumentInfo
	if err := c.getJSON(ctx, "/pdf-info/"+url.PathEscape(name), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ContentURL returns the URL that serves the raw document for inline viewing.
func (c *Client) ContentURL(path string) string {
	return c.baseURL + "/pdf-content?path=" + url.QueryEscape(path)
}

// FetchContent streams the raw document. The caller must close Content.Body.
func (c *Client) FetchContent(ctx context.Context, path string) (*Content, error) {
	resp, err := c.do(ctx, http.MethodGet, "/pdf-content?path="+url.QueryEscape(path), "", nil)
	if err != nil {
		return nil, err
	}
	return &Content{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// =============================================================================
// CHAT
// =============================================================================

// Chat asks a question about the active document using the given settings.
func (c *Client) Chat(ctx context.Context, message string, settings model.Settings) (*ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{Message: message, Settings: settings})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode chat response", Cause: err}
	}
	return &result, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// getJSON issues a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response from " + path, Cause: err}
	}
	return nil
}

// do sends a request and maps transport failures and non-2xx statuses to ClientError.
// On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeTimeout, Message: "request cancelled while waiting", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "backend is unreachable", Cause: err}
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer drainAndClose(resp.Body)

	clientErr := &ClientError{
		Type:       ErrTypeBackend,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%s %s failed: %s", method, path, resp.Status),
	}
	if resp.StatusCode == http.StatusNotFound {
		clientErr.Type = ErrTypeNotFound
	}

	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.message() != "" {
		clientErr.Message = eb.message()
	}
	return nil, clientErr
}

// isTimeout reports whether err is a net timeout (covers http.Client.Timeout).
func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsUnreachable checks if an error means the backend could not be contacted.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return false
}

// IsNotFound checks if the backend answered 404.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return false
}

// drainAndClose reads the remainder of a body so the connection can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
