// Package auth acquires Azure AD access tokens for a Dataverse environment.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/dataverse/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrTenantIDRequired     = errors.New("tenant ID is required")
	ErrClientIDRequired     = errors.New("client ID is required")
	ErrClientSecretRequired = errors.New("client secret is required")
	ErrResourceURLRequired  = errors.New("environment URL is required")
)

// ClientCredentials describes an Azure AD app registration allowed to call
// the Dataverse environment at ResourceURL.
type ClientCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	ResourceURL  string

	// AuthorityHost overrides the Microsoft identity platform host.
	AuthorityHost string
}

// Token is an acquired access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Validate checks that every field needed for the grant is present.
func (c *ClientCredentials) Validate() error {
	switch {
	case c.TenantID == "":
		return ErrTenantIDRequired
	case c.ClientID == "":
		return ErrClientIDRequired
	case c.ClientSecret == "":
		return ErrClientSecretRequired
	case c.ResourceURL == "":
		return ErrResourceURLRequired
	}

	return nil
}

// TokenURL returns the v2.0 token endpoint of the tenant.
func (c *ClientCredentials) TokenURL() string {
	host := c.AuthorityHost
	if host == "" {
		host = constants.AzureAuthorityHost
	}

	return strings.TrimSuffix(host, "/") + "/" + c.TenantID + "/oauth2/v2.0/token"
}

// Scope returns the default scope of the environment, "<url>/.default".
func (c *ClientCredentials) Scope() string {
	return strings.TrimSuffix(c.ResourceURL, "/") + constants.DefaultScopeSuffix
}

// FetchToken runs the client credentials grant once. httpClient may be nil.
func FetchToken(ctx context.Context, creds *ClientCredentials, httpClient *http.Client) (*Token, error) {
	err := creds.Validate()
	if err != nil {
		return nil, err
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL(),
		Scopes:       []string{creds.Scope()},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire token from %s: %w", config.TokenURL, err)
	}

	return &Token{
		AccessToken: token.AccessToken,
		TokenType:   token.Type(),
		ExpiresAt:   token.Expiry,
	}, nil
}
