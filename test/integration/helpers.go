//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	ServiceURL    string
	AccessToken   string
	DataversePath string
	Verbose       bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		ServiceURL:    os.Getenv("DATAVERSE_IT_URL"),
		AccessToken:   os.Getenv("DATAVERSE_IT_TOKEN"),
		DataversePath: getDataversePath(),
		Verbose:       os.Getenv("DATAVERSE_IT_VERBOSE") == "true",
	}
}

// getDataversePath determines the path to the dataverse binary
func getDataversePath() string {
	if path := os.Getenv("DATAVERSE_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../dataverse",
		"./dataverse",
		"../dataverse",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "dataverse"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.ServiceURL == "" || config.AccessToken == "" {
		t.Skip("DATAVERSE_IT_URL or DATAVERSE_IT_TOKEN not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.DataversePath); err != nil {
		t.Skipf("dataverse binary not found at %s, skipping integration test", config.DataversePath)
	}
}

// CommandRunner runs the dataverse binary against the configured environment
// with an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	t          *testing.T
	configFile string
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		t:          t,
		configFile: t.TempDir() + "/config.yml",
	}
}

// Run executes a dataverse command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a dataverse command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	fullArgs := append([]string{
		"--config", runner.configFile,
		"--url", runner.config.ServiceURL,
		"--token", runner.config.AccessToken,
	}, args...)

	// #nosec G204 -- test binary path comes from the test environment
	cmd := exec.Command(runner.config.DataversePath, fullArgs...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.DataversePath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a dataverse command with JSON output and decodes it.
func (runner *CommandRunner) RunJSON(target interface{}, args ...string) error {
	stdout, stderr, err := runner.Run(append([]string{"--output", "json"}, args...)...)
	if err != nil {
		return fmt.Errorf("command failed: %w: %s", err, stderr)
	}

	return json.Unmarshal([]byte(stdout), target)
}

// GenerateTestName creates a unique test record name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupRecord attempts to delete a test record
func (runner *CommandRunner) CleanupRecord(entity, id string) {
	if id == "" {
		return
	}

	stdout, stderr, err := runner.Run("delete", entity, id, "--force")
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", entity, id, stdout, stderr)
	}
}
