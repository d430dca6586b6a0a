// Package http is the transport used by the Dataverse client. It assembles
// the standard Web API headers, encodes JSON bodies, logs exchanges when
// asked to, and maps every failure onto *dataverse.Error.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// Logger is the logging interface used by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes a single Web API call. Path is relative to the client's
// base URL. Query is an already encoded query string.
type Request struct {
	Method  string
	Path    string
	Query   string
	Body    interface{}
	Headers map[string]string
}

// Client sends requests against one versioned Web API root.
type Client struct {
	baseURL     string
	accessToken string
	userAgent   string
	logger      Logger
	debug       bool
	retryClient *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.retryClient.Logger = &leveledLogger{logger: logger}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets an overall timeout on the underlying HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.retryClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig enables retries of 429 and 5xx responses.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryClient.RetryMax = maxRetries
		c.retryClient.RetryWaitMin = waitMin
		c.retryClient.RetryWaitMax = waitMax
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.retryClient.HTTPClient = httpClient
	}
}

// NewClient creates a transport for baseURL. An empty accessToken sends no
// Authorization header. Retries are disabled unless WithRetryConfig is used.
func NewClient(baseURL, accessToken string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		userAgent:   constants.DefaultUserAgent,
		retryClient: retryClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the root every request path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req. For a non-2xx status both the response and a transport
// error are returned so callers can inspect the body.
func (c *Client) Do(ctx context.Context, req *Request) (*dataverse.Response, error) {
	fullURL := c.baseURL + req.Path
	if req.Query != "" {
		fullURL += "?" + req.Query
	}

	var (
		body    []byte
		rawBody interface{}
	)

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, dataverse.NewTransportError("encoding request body", nil, err)
		}

		body = encoded
		rawBody = encoded
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, dataverse.NewTransportError("creating request", nil, err)
	}

	c.setHeaders(httpReq.Header, req.Headers)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
			"body":   truncate(body),
		})
	}

	start := time.Now()

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		return nil, dataverse.NewTransportError(
			fmt.Sprintf("HTTP %s %s failed", req.Method, req.Path), nil, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, dataverse.NewTransportError("reading response body", &dataverse.Response{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
		}, err)
	}

	resp := &dataverse.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   req.Method,
			"url":      fullURL,
			"status":   resp.StatusCode,
			"duration": time.Since(start).String(),
			"body":     truncate(respBody),
		})
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp, dataverse.NewTransportError(
			fmt.Sprintf("HTTP %s %s returned %s", req.Method, req.Path, http.StatusText(resp.StatusCode)),
			resp, dataverse.ErrUnexpectedStatus)
	}

	return resp, nil
}

func (c *Client) setHeaders(header http.Header, overrides map[string]string) {
	if c.accessToken != "" {
		header.Set(constants.HeaderAuthorization, constants.BearerPrefix+c.accessToken)
	}

	header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	header.Set(constants.HeaderODataVersion, constants.ODataVersion)
	header.Set(constants.HeaderODataMaxVersion, constants.ODataVersion)
	header.Set(constants.HeaderPrefer, constants.PreferRepresentation)
	header.Set(constants.HeaderUserAgent, c.userAgent)

	for key, value := range overrides {
		header.Set(key, value)
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path, query string) (*dataverse.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*dataverse.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*dataverse.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*dataverse.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func truncate(body []byte) string {
	if len(body) > constants.MaxDebugBodyLogSize {
		return string(body[:constants.MaxDebugBodyLogSize]) + constants.TruncatedBodySuffix
	}

	return string(body)
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		out[key] = keysAndValues[i+1]
	}

	return out
}
