package qbo

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failure reported by the remote service.
type ErrorKind string

// Error kinds produced by the response parser.
const (
	KindAuthentication     ErrorKind = "authentication"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindNotFound           ErrorKind = "not_found"
	KindServerError        ErrorKind = "server_error"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindValidationFault    ErrorKind = "validation_fault"
	KindUnknownHTTP        ErrorKind = "unknown_http"
	KindUnknownFault       ErrorKind = "unknown_fault"
)

// Local precondition failures, detected before any request is sent.
// Static errors for err113 compliance.
var (
	ErrMissingCredentials = errors.New("all of consumer key, consumer secret, access token and access token secret must be provided")
	ErrInvalidQuery       = errors.New("invalid query")
	ErrInvalidResource    = errors.New("invalid resource")
	ErrCompanyIDRequired  = errors.New("company ID is required")
	ErrConfigRequired     = errors.New("config is required")
	ErrMissingMaxResults  = errors.New("query response is missing maxResults")
	ErrUnexpectedPayload  = errors.New("unexpected response payload")
	ErrMissingEnvelope    = errors.New("response envelope is missing the resource key")
)

// Kind sentinels. They match any *APIError of the same kind via errors.Is.
var (
	ErrAuthentication     = &APIError{Kind: KindAuthentication}
	ErrPermissionDenied   = &APIError{Kind: KindPermissionDenied}
	ErrNotFound           = &APIError{Kind: KindNotFound}
	ErrServerError        = &APIError{Kind: KindServerError}
	ErrServiceUnavailable = &APIError{Kind: KindServiceUnavailable}
	ErrValidationFault    = &APIError{Kind: KindValidationFault}
	ErrUnknownHTTP        = &APIError{Kind: KindUnknownHTTP}
	ErrUnknownFault       = &APIError{Kind: KindUnknownFault}
)

// FaultError is a single entry of a fault payload's Error list.
type FaultError struct {
	Code    string `json:"code,omitempty"    xml:"code,attr"    yaml:"code,omitempty"`
	Element string `json:"element,omitempty" xml:"element,attr" yaml:"element,omitempty"`
	Message string `json:"Message,omitempty" xml:"Message"      yaml:"message,omitempty"`
	Detail  string `json:"Detail,omitempty"  xml:"Detail"       yaml:"detail,omitempty"`
}

// String joins the message and detail of the entry.
func (f FaultError) String() string {
	switch {
	case f.Message != "" && f.Detail != "":
		return f.Message + ": " + f.Detail
	case f.Detail != "":
		return f.Detail
	default:
		return f.Message
	}
}

// APIError represents a failure reported by the remote service, either at
// the HTTP level or as an application fault inside the response body.
type APIError struct {
	Kind       ErrorKind    `json:"kind"                 yaml:"kind"`
	StatusCode int          `json:"status_code"          yaml:"status_code"`
	Reason     string       `json:"reason,omitempty"     yaml:"reason,omitempty"`
	FaultType  string       `json:"fault_type,omitempty" yaml:"fault_type,omitempty"`
	Errors     []FaultError `json:"errors,omitempty"     yaml:"errors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message()
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}

	return fmt.Sprintf("%s: %s (status: %d)", e.Kind, msg, e.StatusCode)
}

// Message returns the human readable part of the error.
func (e *APIError) Message() string {
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fault := range e.Errors {
			if s := fault.String(); s != "" {
				parts = append(parts, s)
			}
		}

		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	if e.Reason != "" {
		return e.Reason
	}

	if e.FaultType != "" {
		return e.FaultType
	}

	return http.StatusText(e.StatusCode)
}

// Is reports whether target is a kind sentinel (or any APIError) of the same
// kind. A target carrying a status code must match it as well.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}

	if t.Kind != e.Kind {
		return false
	}

	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// FirstError returns the first fault entry or nil.
func (e *APIError) FirstError() *FaultError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// statusKinds maps HTTP status codes to error kinds. 400 is absent on
// purpose: it carries a structured fault that is classified separately.
var statusKinds = map[int]ErrorKind{
	http.StatusUnauthorized:        KindAuthentication,
	http.StatusForbidden:           KindPermissionDenied,
	http.StatusNotFound:            KindNotFound,
	http.StatusInternalServerError: KindServerError,
	http.StatusServiceUnavailable:  KindServiceUnavailable,
}

// faultKinds maps upper-cased fault types to error kinds.
var faultKinds = map[string]ErrorKind{
	"AUTHENTICATION":  KindAuthentication,
	"AUTHORIZATION":   KindPermissionDenied,
	"VALIDATIONFAULT": KindValidationFault,
	"SERVICEFAULT":    KindServerError,
	"SYSTEMFAULT":     KindServerError,
}

func newHTTPError(statusCode int, reason string) *APIError {
	kind, ok := statusKinds[statusCode]
	if !ok {
		kind = KindUnknownHTTP
	}

	return &APIError{Kind: kind, StatusCode: statusCode, Reason: reason}
}

func newFaultError(statusCode int, fault *Fault) *APIError {
	kind, ok := faultKinds[strings.ToUpper(fault.Type)]
	if !ok {
		kind = KindUnknownFault
	}

	return &APIError{
		Kind:       kind,
		StatusCode: statusCode,
		FaultType:  fault.Type,
		Errors:     fault.Errors,
	}
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsForbidden checks if the error is a permission error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsValidationFault checks if the error is a validation fault.
func IsValidationFault(err error) bool {
	return errors.Is(err, ErrValidationFault)
}

// IsServiceFault reports whether the service classified the failure as a
// ServiceFault or SystemFault.
func IsServiceFault(err error) bool {
	apiErr := &APIError{}
	if !errors.As(err, &apiErr) {
		return false
	}

	switch strings.ToUpper(apiErr.FaultType) {
	case "SERVICEFAULT", "SYSTEMFAULT":
		return true
	default:
		return false
	}
}
