package constants

import "time"

// File permissions.
const (
	// ConfigDirPerm is the permission for the CLI configuration directory.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for the CLI configuration file.
	ConfigFilePerm = 0600
)

// Web API layout.
const (
	// DefaultAPIVersion is the Web API version segment.
	DefaultAPIVersion = "v9.2"

	// APIPathPrefix sits between the service URL and the version segment.
	APIPathPrefix = "/api/data/"

	// MetadataPath is the CSDL document path relative to the versioned root.
	MetadataPath = "$metadata"

	// ODataVersion is sent as both OData-Version and OData-MaxVersion.
	ODataVersion = "4.0"

	// PreferRepresentation asks the server to echo created/updated records.
	PreferRepresentation = "return=representation"

	// ODataEntityIDHeader carries the URL of a record created without representation.
	ODataEntityIDHeader = "OData-EntityId"

	// ODataIDField is the annotation used to surface ODataEntityIDHeader.
	ODataIDField = "@odata.id"
)

// Header names and content types.
const (
	HeaderAuthorization   = "Authorization"
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
	HeaderODataVersion    = "OData-Version"
	HeaderODataMaxVersion = "OData-MaxVersion"
	HeaderPrefer          = "Prefer"
	HeaderUserAgent       = "User-Agent"
	ContentTypeJSON       = "application/json"
	ContentTypeXML        = "application/xml"
	DefaultUserAgent      = "dataverse-go/1.0"
	BearerPrefix          = "Bearer "
	MaxDebugBodyLogSize   = 2048
	TruncatedBodySuffix   = "...(truncated)"
)

// Retry configuration constants.
const (
	// DefaultRetryWaitMin is the first backoff between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax caps backoff between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Timeout constants.
const (
	// ShortHTTPTimeout is used by the CLI login check and token acquisition.
	ShortHTTPTimeout = 10 * time.Second
)

// Azure AD constants.
const (
	// AzureAuthorityHost is the default Microsoft identity platform host.
	AzureAuthorityHost = "https://login.microsoftonline.com"

	// DefaultScopeSuffix turns an environment URL into its default scope.
	DefaultScopeSuffix = "/.default"
)

// CLI constants.
const (
	// MinimumArgumentCount is used by commands taking ENTITY and ID.
	MinimumArgumentCount = 2

	// JSONIndentSize is the indent for JSON output.
	JSONIndentSize = 2

	// StringTruncationLength limits cell width in table output.
	StringTruncationLength = 80

	// NotAvailable is shown for missing table values.
	NotAvailable = "N/A"

	// MaskedSecret replaces tokens in config output.
	MaskedSecret = "***"

	// ConfirmationYes is the answer accepted by confirmation prompts.
	ConfirmationYes = "yes"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)
