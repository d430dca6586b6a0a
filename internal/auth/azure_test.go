package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCredentials_Validate(t *testing.T) {
	t.Parallel()

	full := ClientCredentials{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		ResourceURL:  "https://org.crm.dynamics.com",
	}

	tests := []struct {
		name    string
		mutate  func(c *ClientCredentials)
		wantErr error
	}{
		{"complete", func(*ClientCredentials) {}, nil},
		{"missing tenant", func(c *ClientCredentials) { c.TenantID = "" }, ErrTenantIDRequired},
		{"missing client", func(c *ClientCredentials) { c.ClientID = "" }, ErrClientIDRequired},
		{"missing secret", func(c *ClientCredentials) { c.ClientSecret = "" }, ErrClientSecretRequired},
		{"missing url", func(c *ClientCredentials) { c.ResourceURL = "" }, ErrResourceURLRequired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			creds := full
			tt.mutate(&creds)

			err := creds.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientCredentials_Endpoints(t *testing.T) {
	t.Parallel()

	creds := &ClientCredentials{
		TenantID:    "contoso.onmicrosoft.com",
		ResourceURL: "https://org.crm.dynamics.com/",
	}

	assert.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/token", creds.TokenURL())
	assert.Equal(t, "https://org.crm.dynamics.com/.default", creds.Scope())

	creds.AuthorityHost = "https://login.example.test/"
	assert.Equal(t, "https://login.example.test/contoso.onmicrosoft.com/oauth2/v2.0/token", creds.TokenURL())
}

func TestFetchToken(t *testing.T) {
	t.Parallel()

	t.Run("runs the client credentials grant", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/tenant/oauth2/v2.0/token", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			err := r.ParseForm()
			assert.NoError(t, err)
			assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
			assert.Equal(t, "client", r.Form.Get("client_id"))
			assert.Equal(t, "secret", r.Form.Get("client_secret"))
			assert.Equal(t, "https://org.crm.dynamics.com/.default", r.Form.Get("scope"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "azure-token",
				"token_type":   "Bearer",
				"expires_in":   3599,
			})
		}))
		defer server.Close()

		token, err := FetchToken(context.Background(), &ClientCredentials{
			TenantID:      "tenant",
			ClientID:      "client",
			ClientSecret:  "secret",
			ResourceURL:   "https://org.crm.dynamics.com",
			AuthorityHost: server.URL,
		}, server.Client())
		require.NoError(t, err)
		assert.Equal(t, "azure-token", token.AccessToken)
		assert.Equal(t, "Bearer", token.TokenType)
		assert.WithinDuration(t, time.Now().Add(3599*time.Second), token.ExpiresAt, time.Minute)
	})

	t.Run("reports a rejected grant", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"AADSTS7000215: Invalid client secret"}`))
		}))
		defer server.Close()

		_, err := FetchToken(context.Background(), &ClientCredentials{
			TenantID:      "tenant",
			ClientID:      "client",
			ClientSecret:  "wrong",
			ResourceURL:   "https://org.crm.dynamics.com",
			AuthorityHost: server.URL,
		}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to acquire token")
		assert.Contains(t, err.Error(), "invalid_client")
	})

	t.Run("validates before any request", func(t *testing.T) {
		t.Parallel()

		_, err := FetchToken(context.Background(), &ClientCredentials{ClientID: "client"}, nil)
		require.ErrorIs(t, err, ErrTenantIDRequired)
	})
}
