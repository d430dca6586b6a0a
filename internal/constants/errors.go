package constants

import "errors"

// Configuration errors.
var (
	ErrNoServiceURL      = errors.New("no service URL configured, use --url or 'dataverse login'")
	ErrNoAccessToken     = errors.New("no access token configured, use --token or 'dataverse login'")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrInvalidOutput     = errors.New("output must be one of table, json, yaml")
	ErrInvalidBool       = errors.New("value must be 'true' or 'false'")
	ErrTokenNotSettable  = errors.New("token is managed by 'dataverse login' and 'dataverse logout'")
	ErrTenantIDRequired  = errors.New("--tenant-id is required with --client-id")
	ErrCredentialMissing = errors.New("provide --token or --client-id with --tenant-id")
	ErrNoSecretInput     = errors.New("no secret provided on standard input")
)

// Input errors.
var (
	ErrDataRequired        = errors.New("provide record data with --data or --file")
	ErrDataAndFileExcluded = errors.New("--data and --file are mutually exclusive")
	ErrInvalidPayload      = errors.New("record data must be a JSON or YAML object")
	ErrNotRegularFile      = errors.New("path is not a regular file")
)
