package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// OAuth 1.0a endpoints.
const (
	// RequestTokenURL issues temporary request tokens.
	RequestTokenURL = "https://oauth.intuit.com/oauth/v1/get_request_token"

	// AccessTokenURL exchanges an authorized request token for an access token.
	AccessTokenURL = "https://oauth.intuit.com/oauth/v1/get_access_token"

	// AuthorizeURL is where the user grants access.
	AuthorizeURL = "https://appcenter.intuit.com/Connect/Begin"

	// OutOfBandCallback is used when no callback URL is configured.
	OutOfBandCallback = "oob"
)

// Credential keys, used both as environment variable names and as keys of
// the credentials file section.
const (
	EnvConsumerKey       = "QB_CONSUMER_KEY"
	EnvConsumerSecret    = "QB_CONSUMER_SECRET"
	EnvAccessToken       = "QB_ACCESS_TOKEN"
	EnvAccessTokenSecret = "QB_ACCESS_TOKEN_SECRET"

	// CredentialsSection is the config file section holding the keys.
	CredentialsSection = "credentials"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// Retry limits. Retries are off unless a caller opts in.
const (
	// DefaultRetryMax is the default number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Request headers.
const (
	// ContentTypeJSON is sent as both Accept and Content-Type.
	ContentTypeJSON = "application/json"

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "qbo-client-go/1.0.0"
)

// Path segments.
const (
	// CompanyPath is the first segment of every company-scoped path.
	CompanyPath = "company"

	// QueryPath is the query endpoint.
	QueryPath = "query"

	// CDCPath is the change-data-capture endpoint.
	CDCPath = "cdc"

	// ReportsPath prefixes report names.
	ReportsPath = "reports"

	// OperationDelete is the operation parameter of a delete.
	OperationDelete = "delete"
)

// Response envelope keys.
const (
	QueryResponseKey = "QueryResponse"
	CDCResponseKey   = "CDCResponse"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 60

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Command argument counts.
const (
	// TwoArgumentsRequired indicates commands requiring exactly 2 arguments.
	TwoArgumentsRequired = 2
)
