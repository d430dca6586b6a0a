package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/dataverse/internal/auth"
	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
	"github.com/fivetwenty-io/dataverse/pkg/dvclient"
)

// loginOptions holds the login flags.
type loginOptions struct {
	url          string
	token        string
	tenantID     string
	clientID     string
	clientSecret string
}

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a Dataverse environment",
		Long: `Store the environment URL and an access token after verifying them
against the $metadata endpoint.

Either pass an existing bearer token with --token, or an Azure AD app
registration with --tenant-id, --client-id and --client-secret to run the
client credentials grant. A missing secret is prompted for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "environment URL, e.g. https://org.crm.dynamics.com")
	cmd.Flags().StringVar(&opts.token, "token", "", "existing bearer access token")
	cmd.Flags().StringVar(&opts.tenantID, "tenant-id", "", "Azure AD tenant ID")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "Azure AD application (client) ID")
	cmd.Flags().StringVar(&opts.clientSecret, "client-secret", "", "Azure AD client secret")
	cmd.MarkFlagsMutuallyExclusive("token", "client-id")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *loginOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	serviceURL := opts.url
	if serviceURL == "" {
		serviceURL = viper.GetString(keyURL)
	}

	if serviceURL == "" {
		return constants.ErrNoServiceURL
	}

	serviceURL = dvclient.NormalizeServiceURL(serviceURL)

	token, expiresAt, err := acquireToken(ctx, cmd, opts, serviceURL)
	if err != nil {
		return err
	}

	client, err := dvclient.New(ctx, &dataverse.Config{
		ServiceURL:         serviceURL,
		AccessToken:        token,
		MetadataValidation: true,
		Logger:             newStderrLogger(viper.GetBool(keyVerbose)),
		Debug:              viper.GetBool(keyVerbose),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serviceURL, err)
	}

	config := loadConfig()
	config.URL = serviceURL
	config.Token = token
	config.TokenExpiresAt = expiresAt

	if opts.clientID != "" {
		config.TenantID = opts.tenantID
		config.ClientID = opts.clientID
	}

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	viper.Set(keyURL, serviceURL)
	viper.Set(keyToken, token)

	_, _ = fmt.Fprintf(out, "Successfully logged in to %s\n", serviceURL)
	_, _ = fmt.Fprintf(out, "Entity sets available: %d\n", len(client.Metadata().EntitySetNames()))

	if expiresAt != nil {
		_, _ = fmt.Fprintf(out, "Token expires at %s\n", expiresAt.Format(time.RFC3339))
	}

	return nil
}

// acquireToken returns the token to store: --token as given, or one issued
// by Azure AD for the client credentials.
func acquireToken(ctx context.Context, cmd *cobra.Command, opts *loginOptions, serviceURL string) (string, *time.Time, error) {
	if opts.token != "" {
		return opts.token, nil, nil
	}

	if opts.clientID == "" {
		return "", nil, constants.ErrCredentialMissing
	}

	tenantID := opts.tenantID
	if tenantID == "" {
		tenantID = viper.GetString(keyTenantID)
	}

	if tenantID == "" {
		return "", nil, constants.ErrTenantIDRequired
	}

	opts.tenantID = tenantID

	secret := opts.clientSecret
	if secret == "" {
		prompted, err := promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Client secret: ")
		if err != nil {
			return "", nil, err
		}

		secret = prompted
	}

	token, err := auth.FetchToken(ctx, &auth.ClientCredentials{
		TenantID:     tenantID,
		ClientID:     opts.clientID,
		ClientSecret: secret,
		ResourceURL:  serviceURL,
	}, &http.Client{Timeout: constants.ShortHTTPTimeout})
	if err != nil {
		return "", nil, err
	}

	var expiresAt *time.Time
	if !token.ExpiresAt.IsZero() {
		expiresAt = &token.ExpiresAt
	}

	return token.AccessToken, expiresAt, nil
}

// promptSecret reads a secret without echo when in is a terminal, and a
// plain line otherwise.
func promptSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(prompt, label)

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))

		_, _ = fmt.Fprintln(prompt)

		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}

		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: %w", constants.ErrNoSecretInput, err)
	}

	return strings.TrimSpace(line), nil
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the Dataverse environment",
		Long:  "Remove the stored access token from the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.TokenExpiresAt = nil

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			viper.Set(keyToken, "")
			viper.Set(keyTokenExpiresAt, nil)

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}
