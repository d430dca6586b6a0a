package dataverse

import (
	"context"
	"time"
)

// Client is a connection to one Dataverse environment.
type Client interface {
	// Entity returns the handle for an entity set. Handles are memoized per
	// client: asking twice for the same name returns the same handle.
	Entity(name string) (EntityClient, error)

	// Metadata returns the parsed $metadata document, or nil when the client
	// was built without metadata validation.
	Metadata() Metadata

	// BaseURL returns the versioned Web API root, ending in a slash.
	BaseURL() string
}

// EntityClient exposes the record operations of a single entity set.
type EntityClient interface {
	Name() string
	Get(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, data Record) (Record, error)
	Update(ctx context.Context, id string, data Record) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Query(ctx context.Context, opts *QueryOptions) ([]Record, error)

	// Properties returns the declared property names of the entity type.
	// It is nil when metadata validation is disabled.
	Properties() []string
}

// Metadata is the read-only view of a parsed CSDL document.
type Metadata interface {
	EntitySetNames() []string
	EntityTypeName(entitySet string) (string, error)
	Properties(entitySet string) ([]string, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a dataverse.Client.
//
// # Metadata validation
//
// When MetadataValidation is true the client downloads the $metadata
// document once, during construction, and keeps it for its whole lifetime.
// Entity handles then fail fast for unknown entity sets, and Create/Update
// reject payload keys that are not declared properties of the entity type.
// Validation failures never reach the network.
//
// # Timeouts and retries
//
// Per-request deadlines are controlled with the context passed to each
// operation. HTTPTimeout is zero (no timeout) by default. RetryMax is zero by
// default, so every operation issues exactly one request; a positive value
// opts into retrying 429 and 5xx responses with backoff between
// RetryWaitMin and RetryWaitMax.
type Config struct {
	// ServiceURL: environment URL (e.g., "https://org.crm4.dynamics.com").
	// dvclient.New trims a trailing slash and adds "https://" if no scheme
	// is present.
	ServiceURL string
	// AccessToken: OAuth bearer token sent on every request.
	AccessToken string
	// MetadataValidation: fetch $metadata at construction and validate
	// entity and property names before writes.
	MetadataValidation bool

	// Optional configurations
	// APIVersion: Web API version segment. Defaults to "v9.2".
	APIVersion string
	// HTTPTimeout: optional overall timeout applied to the HTTP client.
	HTTPTimeout time.Duration
	// RetryMax: retries for transient failures. Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}
