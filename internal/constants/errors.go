package constants

import "errors"

// CLI configuration errors.
var (
	ErrNoCompanyConfigured = errors.New("no company configured, use --company or set company_id in the config file")
	ErrUnsupportedFormat   = errors.New("unsupported output format")
	ErrInvalidFilter       = errors.New("invalid filter, expected column=value or column<op>value")
	ErrInvalidSince        = errors.New("invalid --since value")
	ErrNoEntities          = errors.New("at least one entity is required")
	ErrEmptyPayload        = errors.New("payload is empty")
	ErrInvalidParam        = errors.New("invalid parameter, expected key=value")
	ErrVerifierRequired    = errors.New("verifier is required")
)
