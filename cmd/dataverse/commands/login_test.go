package commands

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dataverse/internal/constants"
)

func TestLoginCommandWithToken(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, "")
	configFile := setupViper(t, nil)

	out, err := runCommand(t, NewLoginCommand(), "", "--url", api.URL, "--token", "test-token")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully logged in to "+api.URL)
	assert.Contains(t, out, "Entity sets available: 1")

	saved := readConfigFile(t, configFile)
	assert.Equal(t, api.URL, saved.URL)
	assert.Equal(t, "test-token", saved.Token)
	assert.Nil(t, saved.TokenExpiresAt)
}

func TestLoginCommandRejectsBadToken(t *testing.T) {
	configFile := setupViper(t, nil)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	_, err := runCommand(t, NewLoginCommand(), "", "--url", api.URL, "--token", "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")

	_, statErr := os.Stat(configFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoginCommandRequiresCredentials(t *testing.T) {
	setupViper(t, nil)

	_, err := runCommand(t, NewLoginCommand(), "", "--url", "https://org.crm.dynamics.com")
	require.ErrorIs(t, err, constants.ErrCredentialMissing)

	_, err = runCommand(t, NewLoginCommand(), "", "--url", "https://org.crm.dynamics.com", "--client-id", "client")
	require.ErrorIs(t, err, constants.ErrTenantIDRequired)

	_, err = runCommand(t, NewLoginCommand(), "")
	require.ErrorIs(t, err, constants.ErrNoServiceURL)
}

func TestPromptSecretFromPipe(t *testing.T) {
	t.Parallel()

	var prompt strings.Builder

	secret, err := promptSecret(strings.NewReader("s3cret\n"), &prompt, "Client secret: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)
	assert.Equal(t, "Client secret: ", prompt.String())

	_, err = promptSecret(strings.NewReader(""), &prompt, "Client secret: ")
	require.ErrorIs(t, err, constants.ErrNoSecretInput)
}

func TestLogoutCommandRun(t *testing.T) {
	configFile := setupViper(t, map[string]interface{}{
		keyURL:   "https://org.crm.dynamics.com",
		keyToken: "secret-token",
	})

	out, err := runCommand(t, NewLogoutCommand(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully logged out")

	saved := readConfigFile(t, configFile)
	assert.Equal(t, "https://org.crm.dynamics.com", saved.URL)
	assert.Empty(t, saved.Token)
}
