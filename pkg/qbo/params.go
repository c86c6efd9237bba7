package qbo

import (
	"net/url"

	"github.com/google/uuid"
)

// Query string parameters understood by the v3 API.
const (
	ParamMinorVersion = "minorversion"
	ParamRequestID    = "requestid"
	ParamOperation    = "operation"
	ParamQuery        = "query"
	ParamEntities     = "entities"
	ParamChangedSince = "changedSince"
)

// Params holds extra query string parameters sent with a request.
type Params struct {
	MinorVersion string
	RequestID    string
	Extra        map[string]string
}

// NewParams creates empty request parameters.
func NewParams() *Params {
	return &Params{
		Extra: make(map[string]string),
	}
}

// WithMinorVersion pins the API minor version.
func (p *Params) WithMinorVersion(version string) *Params {
	p.MinorVersion = version

	return p
}

// WithRequestID sets the idempotency key for a write.
func (p *Params) WithRequestID(requestID string) *Params {
	p.RequestID = requestID

	return p
}

// WithNewRequestID sets a freshly generated idempotency key.
func (p *Params) WithNewRequestID() *Params {
	return p.WithRequestID(uuid.NewString())
}

// With sets an arbitrary parameter.
func (p *Params) With(key, value string) *Params {
	if p.Extra == nil {
		p.Extra = make(map[string]string)
	}

	p.Extra[key] = value

	return p
}

// ToValues converts the parameters to url.Values. A nil receiver yields
// empty values.
func (p *Params) ToValues() url.Values {
	values := url.Values{}
	if p == nil {
		return values
	}

	for key, value := range p.Extra {
		values.Set(key, value)
	}

	if p.MinorVersion != "" {
		values.Set(ParamMinorVersion, p.MinorVersion)
	}

	if p.RequestID != "" {
		values.Set(ParamRequestID, p.RequestID)
	}

	return values
}
