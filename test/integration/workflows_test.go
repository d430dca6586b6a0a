//go:build integration

package integration

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAccountWorkflow_CompleteLifecycle creates, reads, updates, queries and
// deletes an account through the CLI.
func TestAccountWorkflow_CompleteLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	name := GenerateTestName("it-account")

	var created map[string]interface{}

	require.NoError(t, runner.RunJSON(&created, "create", "accounts", "--data", fmt.Sprintf(`{"name":%q}`, name)))

	accountID, _ := created["accountid"].(string)
	require.NotEmpty(t, accountID, "create should return the representation")

	defer runner.CleanupRecord("accounts", accountID)

	var fetched map[string]interface{}

	require.NoError(t, runner.RunJSON(&fetched, "get", "accounts", accountID))
	assert.Equal(t, name, fetched["name"])

	var outcome map[string]interface{}

	require.NoError(t, runner.RunJSON(&outcome, "update", "accounts", accountID,
		"--data", fmt.Sprintf(`{"name":%q}`, name+"-renamed")))
	assert.Equal(t, true, outcome["success"])

	var records []map[string]interface{}

	require.NoError(t, runner.RunJSON(&records, "query", "accounts",
		"--filter", fmt.Sprintf("name eq '%s-renamed'", name),
		"--select", "name,accountid"))
	require.Len(t, records, 1)
	assert.Equal(t, accountID, records[0]["accountid"])

	require.NoError(t, runner.RunJSON(&outcome, "delete", "accounts", accountID, "--force"))
	assert.Equal(t, true, outcome["success"])

	_, stderr, err := runner.Run("get", "accounts", accountID)
	require.Error(t, err)
	assert.Contains(t, stderr, "404")
}

// TestValidationWorkflow_RejectsUnknownNames checks that validation failures
// are reported before any write.
func TestValidationWorkflow_RejectsUnknownNames(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	_, stderr, err := runner.Run("--validate", "create", "accounts", "--data", `{"not_a_real_field":"x"}`)
	require.Error(t, err)
	assert.Contains(t, stderr, "Property 'not_a_real_field' not found in entity 'accounts' in the metadata")

	_, stderr, err = runner.Run("--validate", "get", "not_a_real_set", "123")
	require.Error(t, err)
	assert.Contains(t, stderr, "Entity 'not_a_real_set' not found in the metadata")

	var description map[string]interface{}

	require.NoError(t, runner.RunJSON(&description, "metadata", "entity", "accounts"))
	assert.Equal(t, "account", description["entity_type"])
	assert.Contains(t, description["properties"], "name")
}
