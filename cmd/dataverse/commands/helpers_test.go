package commands

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const testMetadataXML = `<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
  <edmx:DataServices>
    <Schema Namespace="Microsoft.Dynamics.CRM" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="account">
        <Property Name="accountid" Type="Edm.Guid" />
        <Property Name="name" Type="Edm.String" />
      </EntityType>
      <EntityContainer Name="System">
        <EntitySet Name="accounts" EntityType="Microsoft.Dynamics.CRM.account" />
      </EntityContainer>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`

// setupViper resets viper and points the config file at a temp dir.
func setupViper(t *testing.T, values map[string]interface{}) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(configFile)

	for key, value := range values {
		viper.Set(key, value)
	}

	return configFile
}

type apiRequest struct {
	method string
	path   string
	query  string
	body   string
}

// fakeAPI is a Web API stand-in that serves $metadata and answers every
// other request with status and body.
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	requests []apiRequest
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()

	api := &fakeAPI{status: status, body: body}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/$metadata") {
			_, _ = w.Write([]byte(testMetadataXML))

			return
		}

		payload, _ := io.ReadAll(r.Body)

		api.mu.Lock()
		api.requests = append(api.requests, apiRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   string(payload),
		})
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		_, _ = w.Write([]byte(api.body))
	}))
	t.Cleanup(api.Close)

	return api
}

func (a *fakeAPI) recorded() []apiRequest {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]apiRequest(nil), a.requests...)
}

// runCommand executes cmd with args and stdin, returning stdout.
func runCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func requireSingleRequest(t *testing.T, api *fakeAPI) apiRequest {
	t.Helper()

	requests := api.recorded()
	require.Len(t, requests, 1)

	return requests[0]
}
