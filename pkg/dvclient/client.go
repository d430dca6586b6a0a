// Package dvclient provides the main entry point for creating Dataverse Web API clients
package dvclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dataverse/internal/auth"
	"github.com/fivetwenty-io/dataverse/internal/client"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// New creates a new Dataverse client. With Config.MetadataValidation set the
// $metadata document is downloaded before New returns.
func New(ctx context.Context, config *dataverse.Config) (dataverse.Client, error) {
	if config == nil {
		return nil, dataverse.ErrConfigRequired
	}

	if config.ServiceURL == "" {
		return nil, dataverse.ErrServiceURLRequired
	}

	config.ServiceURL = NormalizeServiceURL(config.ServiceURL)

	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeServiceURL trims trailing slashes and defaults the scheme to https.
func NormalizeServiceURL(serviceURL string) string {
	serviceURL = strings.TrimRight(strings.TrimSpace(serviceURL), "/")
	if !strings.HasPrefix(serviceURL, "http://") && !strings.HasPrefix(serviceURL, "https://") {
		serviceURL = "https://" + serviceURL
	}

	return serviceURL
}

// NewWithToken creates a client with a bearer token and no metadata validation.
func NewWithToken(ctx context.Context, serviceURL, token string) (dataverse.Client, error) {
	return New(ctx, &dataverse.Config{
		ServiceURL:  serviceURL,
		AccessToken: token,
	})
}

// NewWithValidation creates a client that validates entity and property
// names against $metadata.
func NewWithValidation(ctx context.Context, serviceURL, token string) (dataverse.Client, error) {
	return New(ctx, &dataverse.Config{
		ServiceURL:         serviceURL,
		AccessToken:        token,
		MetadataValidation: true,
	})
}

// NewWithClientCredentials acquires a token for an Azure AD app registration
// and creates a client with it. The token is not refreshed.
func NewWithClientCredentials(ctx context.Context, config *dataverse.Config, tenantID, clientID, clientSecret string) (dataverse.Client, error) {
	if config == nil {
		return nil, dataverse.ErrConfigRequired
	}

	if config.ServiceURL == "" {
		return nil, dataverse.ErrServiceURLRequired
	}

	config.ServiceURL = NormalizeServiceURL(config.ServiceURL)

	token, err := auth.FetchToken(ctx, &auth.ClientCredentials{
		TenantID:     tenantID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		ResourceURL:  config.ServiceURL,
	}, nil)
	if err != nil {
		return nil, err
	}

	config.AccessToken = token.AccessToken

	return New(ctx, config)
}
