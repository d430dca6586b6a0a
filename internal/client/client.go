package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/internal/http"
	"github.com/fivetwenty-io/dataverse/internal/metadata"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// Client implements the dataverse.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     dataverse.Logger
	validate   bool
	metadata   *metadata.Document

	mu       sync.Mutex
	entities map[string]*EntityClient
}

// BuildBaseURL returns "<serviceURL>/api/data/<version>/".
func BuildBaseURL(serviceURL, version string) string {
	if version == "" {
		version = constants.DefaultAPIVersion
	}

	return strings.TrimSuffix(serviceURL, "/") + constants.APIPathPrefix + version + "/"
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *dataverse.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new Dataverse client. With metadata validation enabled the
// $metadata document is fetched before New returns.
func New(ctx context.Context, config *dataverse.Config) (*Client, error) {
	if config == nil {
		return nil, dataverse.ErrConfigRequired
	}

	if config.ServiceURL == "" {
		return nil, dataverse.ErrServiceURLRequired
	}

	baseURL := BuildBaseURL(config.ServiceURL, config.APIVersion)
	httpClient := http.NewClient(baseURL, config.AccessToken, createHTTPClientOptions(config)...)

	return newClient(ctx, httpClient, config)
}

// NewWithHTTPClient creates a client over an existing transport.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, config *dataverse.Config) (*Client, error) {
	if config == nil {
		return nil, dataverse.ErrConfigRequired
	}

	return newClient(ctx, httpClient, config)
}

func newClient(ctx context.Context, httpClient *http.Client, config *dataverse.Config) (*Client, error) {
	client := &Client{
		httpClient: httpClient,
		baseURL:    httpClient.BaseURL(),
		logger:     config.Logger,
		validate:   config.MetadataValidation,
		entities:   make(map[string]*EntityClient),
	}

	if config.MetadataValidation {
		err := client.fetchMetadata(ctx)
		if err != nil {
			return nil, err
		}
	}

	return client, nil
}

// fetchMetadata downloads and parses $metadata.
func (c *Client) fetchMetadata(ctx context.Context) error {
	start := time.Now()

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:  "GET",
		Path:    constants.MetadataPath,
		Headers: map[string]string{constants.HeaderAccept: constants.ContentTypeXML},
	})
	if err != nil {
		return fmt.Errorf("fetching metadata: %w", err)
	}

	doc, err := metadata.ParseBytes(resp.Body)
	if err != nil {
		return dataverse.NewTransportError("parsing metadata", resp, err)
	}

	c.metadata = doc

	if c.logger != nil {
		c.logger.Info("Metadata loaded", map[string]interface{}{
			"entity_sets": len(doc.EntitySetNames()),
			"duration":    time.Since(start).String(),
		})
	}

	return nil
}

// Entity implements dataverse.Client.Entity. A handle that fails validation
// is not cached.
func (c *Client) Entity(name string) (dataverse.EntityClient, error) {
	handle, err := c.entity(name)
	if err != nil {
		return nil, err
	}

	return handle, nil
}

func (c *Client) entity(name string) (*EntityClient, error) {
	if name == "" {
		return nil, dataverse.NewValidationError(dataverse.ErrEntityNameRequired, "entity name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if handle, ok := c.entities[name]; ok {
		return handle, nil
	}

	handle, err := newEntityClient(c, name)
	if err != nil {
		return nil, err
	}

	c.entities[name] = handle

	return handle, nil
}

// Metadata implements dataverse.Client.Metadata.
func (c *Client) Metadata() dataverse.Metadata {
	if c.metadata == nil {
		return nil
	}

	return c.metadata
}

// BaseURL implements dataverse.Client.BaseURL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MetadataValidation reports whether writes are validated.
func (c *Client) MetadataValidation() bool {
	return c.validate
}
