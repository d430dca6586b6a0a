package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dataverse/internal/constants"
)

// Config keys shared by flags, environment and the config file.
const (
	keyURL            = "url"
	keyToken          = "token"
	keyTokenExpiresAt = "token_expires_at"
	keyTenantID       = "tenant_id"
	keyClientID       = "client_id"
	keyOutput         = "output"
	keyValidate       = "validate"
	keyVerbose        = "verbose"
)

// Config represents the CLI configuration file.
type Config struct {
	URL            string     `json:"url,omitempty"              yaml:"url,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	TenantID       string     `json:"tenant_id,omitempty"        yaml:"tenant_id,omitempty"`
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	Output         string     `json:"output"                     yaml:"output"`
	Validate       bool       `json:"validate"                   yaml:"validate"`
	Verbose        bool       `json:"verbose"                    yaml:"verbose"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the Dataverse CLI config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration with the access token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = constants.MaskedSecret
			}

			out := cmd.OutOrStdout()

			switch outputFormat() {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(config)
			default:
				return displayConfigTable(out, config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of url, output, validate, verbose, tenant_id or client_id",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Unset", key, "")
		},
	}
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	config := &Config{
		URL:      viper.GetString(keyURL),
		Token:    viper.GetString(keyToken),
		TenantID: viper.GetString(keyTenantID),
		ClientID: viper.GetString(keyClientID),
		Output:   viper.GetString(keyOutput),
		Validate: viper.GetBool(keyValidate),
		Verbose:  viper.GetBool(keyVerbose),
	}

	if viper.IsSet(keyTokenExpiresAt) {
		expiresAt := viper.GetTime(keyTokenExpiresAt)
		if !expiresAt.IsZero() {
			config.TokenExpiresAt = &expiresAt
		}
	}

	if config.Output == "" {
		config.Output = constants.FormatTable
	}

	return config
}

// configFilePath returns the file viper read, or $HOME/.dataverse/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".dataverse", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	return nil
}

// setConfigValue sets one configuration value.
func setConfigValue(config *Config, key, value string) error {
	switch key {
	case keyURL:
		config.URL = value
	case keyTenantID:
		config.TenantID = value
	case keyClientID:
		config.ClientID = value
	case keyOutput:
		if !isValidOutput(value) {
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutput, value)
		}

		config.Output = value
	case keyValidate, keyVerbose:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s", constants.ErrInvalidBool, value)
		}

		if key == keyValidate {
			config.Validate = enabled
		} else {
			config.Verbose = enabled
		}
	case keyToken, keyTokenExpiresAt:
		return constants.ErrTokenNotSettable
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, value)

	return nil
}

// unsetConfigValue resets one configuration value.
func unsetConfigValue(config *Config, key string) error {
	switch key {
	case keyURL:
		config.URL = ""
	case keyTenantID:
		config.TenantID = ""
	case keyClientID:
		config.ClientID = ""
	case keyOutput:
		config.Output = constants.FormatTable
	case keyValidate:
		config.Validate = false
	case keyVerbose:
		config.Verbose = false
	// Token fields should not be unset via config command for security
	case keyToken, keyTokenExpiresAt:
		return constants.ErrTokenNotSettable
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, nil)

	return nil
}

func isValidOutput(value string) bool {
	switch value {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

func displayConfigTable(out io.Writer, config *Config) error {
	expiresAt := ""
	if config.TokenExpiresAt != nil {
		expiresAt = config.TokenExpiresAt.Format(time.RFC3339)
	}

	values := map[string]string{
		keyURL:            config.URL,
		keyToken:          config.Token,
		keyTokenExpiresAt: expiresAt,
		keyTenantID:       config.TenantID,
		keyClientID:       config.ClientID,
		keyOutput:         config.Output,
		keyValidate:       strconv.FormatBool(config.Validate),
		keyVerbose:        strconv.FormatBool(config.Verbose),
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(out)
	table.Header("Setting", "Value")

	for _, key := range keys {
		err := table.Append([]string{headerTitle(key), formatConfigValue(values[key])})
		if err != nil {
			return fmt.Errorf("failed to append config row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render config table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// outputConfigUpdateResult outputs configuration update results in the requested format.
func outputConfigUpdateResult(out io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch outputFormat() {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(out).Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as YAML: %w", err)
		}

		return nil
	default:
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")

		_ = table.Append([]string{"Action", action})
		_ = table.Append([]string{"Key", key})

		if value != "" {
			_ = table.Append([]string{"Value", value})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render update results table: %w", err)
		}

		return nil
	}
}
