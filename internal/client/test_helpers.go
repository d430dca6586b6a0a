package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// TestMetadataXML is a trimmed $metadata document with accounts and contacts.
const TestMetadataXML = `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
  <edmx:DataServices>
    <Schema Namespace="Microsoft.Dynamics.CRM" Alias="mscrm" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="account">
        <Key><PropertyRef Name="accountid" /></Key>
        <Property Name="accountid" Type="Edm.Guid" />
        <Property Name="name" Type="Edm.String" />
        <Property Name="id" Type="Edm.String" />
        <Property Name="revenue" Type="Edm.Decimal" />
      </EntityType>
      <EntityType Name="contact">
        <Key><PropertyRef Name="contactid" /></Key>
        <Property Name="contactid" Type="Edm.Guid" />
        <Property Name="fullname" Type="Edm.String" />
      </EntityType>
      <EntityContainer Name="System">
        <EntitySet Name="accounts" EntityType="Microsoft.Dynamics.CRM.account" />
        <EntitySet Name="contacts" EntityType="Microsoft.Dynamics.CRM.contact" />
      </EntityContainer>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`

// RecordedRequest is one request seen by a TestServer.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// TestServer is a fixture Web API that serves $metadata and delegates every
// other request to Handler, recording what it receives.
type TestServer struct {
	*httptest.Server

	Handler         http.HandlerFunc
	MetadataHandler http.HandlerFunc

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewTestServer starts a fixture server serving TestMetadataXML. It is closed
// with t.Cleanup.
func NewTestServer(t *testing.T, handler http.HandlerFunc) *TestServer {
	t.Helper()

	return NewTestServerWithMetadata(t, func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/xml")
		_, _ = writer.Write([]byte(TestMetadataXML))
	}, handler)
}

// NewTestServerWithMetadata starts a fixture server whose $metadata endpoint
// is answered by metadataHandler.
func NewTestServerWithMetadata(t *testing.T, metadataHandler, handler http.HandlerFunc) *TestServer {
	t.Helper()

	ts := &TestServer{Handler: handler, MetadataHandler: metadataHandler}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)

		ts.mu.Lock()
		ts.requests = append(ts.requests, RecordedRequest{
			Method:   request.Method,
			Path:     request.URL.Path,
			RawQuery: request.URL.RawQuery,
			Header:   request.Header.Clone(),
			Body:     body,
		})
		ts.mu.Unlock()

		if request.URL.Path == "/api/data/v9.2/$metadata" {
			ts.MetadataHandler(writer, request)

			return
		}

		if ts.Handler == nil {
			writer.WriteHeader(http.StatusNotImplemented)

			return
		}

		ts.Handler(writer, request)
	}))

	t.Cleanup(ts.Close)

	return ts
}

// Requests returns the requests received so far.
func (ts *TestServer) Requests() []RecordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return append([]RecordedRequest(nil), ts.requests...)
}

// RequestCount returns the number of requests received so far.
func (ts *TestServer) RequestCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return len(ts.requests)
}

// NewTestClient creates a client against baseURL with a fixed token.
func NewTestClient(t *testing.T, serviceURL string, validate bool) *Client {
	t.Helper()

	client, err := New(context.Background(), &dataverse.Config{
		ServiceURL:         serviceURL,
		AccessToken:        "test-token",
		MetadataValidation: validate,
	})
	require.NoError(t, err)

	return client
}

// JSONResponder answers with status and a raw JSON body.
func JSONResponder(status int, body string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)

		if body != "" {
			_, _ = writer.Write([]byte(body))
		}
	}
}
