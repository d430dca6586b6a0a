package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
	"github.com/fivetwenty-io/dataverse/pkg/dvclient"
)

// stderrLogger writes client log lines to stderr when --verbose is set.
type stderrLogger struct {
	out   io.Writer
	debug bool
}

func newStderrLogger(verbose bool) *stderrLogger {
	return &stderrLogger{out: os.Stderr, debug: verbose}
}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var builder strings.Builder

	builder.WriteString(level)
	builder.WriteString(" ")
	builder.WriteString(msg)

	for _, key := range keys {
		fmt.Fprintf(&builder, " %s=%v", key, fields[key])
	}

	_, _ = fmt.Fprintln(l.out, builder.String())
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) {
	if l.debug {
		l.log("DEBUG", msg, fields)
	}
}

func (l *stderrLogger) Info(msg string, fields map[string]interface{}) {
	if l.debug {
		l.log("INFO", msg, fields)
	}
}

func (l *stderrLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *stderrLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// buildClientConfig assembles a dataverse.Config from flags, environment
// and the config file.
func buildClientConfig(forceValidation bool) (*dataverse.Config, error) {
	config := loadConfig()

	if config.URL == "" {
		return nil, constants.ErrNoServiceURL
	}

	if config.Token == "" {
		return nil, constants.ErrNoAccessToken
	}

	logger := newStderrLogger(config.Verbose)

	if config.TokenExpiresAt != nil && time.Now().After(*config.TokenExpiresAt) {
		logger.Warn("Access token has expired, run 'dataverse login'", map[string]interface{}{
			"expired_at": config.TokenExpiresAt.Format(time.RFC3339),
		})
	}

	return &dataverse.Config{
		ServiceURL:         config.URL,
		AccessToken:        config.Token,
		MetadataValidation: config.Validate || forceValidation,
		Debug:              config.Verbose,
		Logger:             logger,
	}, nil
}

// createClient builds a client from the effective configuration.
func createClient(ctx context.Context, forceValidation bool) (dataverse.Client, error) {
	config, err := buildClientConfig(forceValidation)
	if err != nil {
		return nil, err
	}

	client, err := dvclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// entityClient resolves the handle for entity.
func entityClient(ctx context.Context, entity string) (dataverse.EntityClient, error) {
	client, err := createClient(ctx, false)
	if err != nil {
		return nil, err
	}

	handle, err := client.Entity(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entity '%s': %w", entity, err)
	}

	return handle, nil
}
