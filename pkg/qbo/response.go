package qbo

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
)

// Response is a raw HTTP response as seen by the parser and by response
// interceptors.
type Response struct {
	StatusCode int
	Reason     string
	Headers    http.Header
	Body       []byte
	Error      error
}

// IsXML reports whether the response declares an XML content type.
func (r *Response) IsXML() bool {
	return strings.Contains(strings.ToLower(r.Headers.Get("Content-Type")), "xml")
}

// reason returns the reason phrase, falling back to the status text.
func (r *Response) reason() string {
	if r.Reason != "" {
		return r.Reason
	}

	return http.StatusText(r.StatusCode)
}

// Payload is a decoded JSON success body keyed by its top-level fields.
type Payload map[string]json.RawMessage

// Decode unmarshals the value stored under key into v.
func (p Payload) Decode(key string, v any) error {
	raw, ok := p[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingEnvelope, key)
	}

	err := json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}

	return nil
}

// Fault is an application-level error payload.
type Fault struct {
	Type   string      `json:"type"  xml:"type,attr"`
	Errors FaultErrors `json:"Error" xml:"Error"`
}

// FaultErrors is the Error list of a fault. The service usually sends an
// array, but a single object or a bare string is accepted as well.
type FaultErrors []FaultError

// UnmarshalJSON implements json.Unmarshaler.
func (f *FaultErrors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil

		return nil
	}

	switch data[0] {
	case '[':
		var list []FaultError

		err := json.Unmarshal(data, &list)
		if err != nil {
			return fmt.Errorf("decoding fault errors: %w", err)
		}

		*f = list
	case '{':
		var single FaultError

		err := json.Unmarshal(data, &single)
		if err != nil {
			return fmt.Errorf("decoding fault error: %w", err)
		}

		*f = FaultErrors{single}
	default:
		var text string

		err := json.Unmarshal(data, &text)
		if err != nil {
			return fmt.Errorf("decoding fault error text: %w", err)
		}

		*f = FaultErrors{{Message: text}}
	}

	return nil
}

type xmlIntuitResponse struct {
	XMLName xml.Name `xml:"IntuitResponse"`
	Fault   *Fault   `xml:"Fault"`
}

type jsonFaultEnvelope struct {
	Fault *Fault `json:"Fault"`
}

// ParseResponse classifies a raw response. A 200 JSON body without a Fault
// key is returned as the payload; everything else becomes an error, an
// *APIError whenever the failure was reported by the service.
func ParseResponse(resp *Response) (Payload, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp)
	}

	if resp.IsXML() {
		return nil, parseFault(resp)
	}

	var payload Payload

	err := json.Unmarshal(resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding response body: %w", ErrUnexpectedPayload, err)
	}

	if _, ok := payload["Fault"]; ok {
		return nil, parseFault(resp)
	}

	return payload, nil
}

func parseHTTPError(resp *Response) error {
	if _, ok := statusKinds[resp.StatusCode]; ok {
		return newHTTPError(resp.StatusCode, resp.reason())
	}

	if resp.StatusCode == http.StatusBadRequest {
		return parseFault(resp)
	}

	return newHTTPError(resp.StatusCode, resp.reason())
}

// parseFault classifies the fault carried in the body. A body without a
// fault is reported as an unknown HTTP error, or for a 200 response as an
// unexpected payload.
func parseFault(resp *Response) error {
	fault, err := extractFault(resp)
	if err != nil || fault == nil {
		if resp.StatusCode == http.StatusOK {
			if err != nil {
				return fmt.Errorf("%w: %w", ErrUnexpectedPayload, err)
			}

			return fmt.Errorf("%w: no fault found in %s body", ErrUnexpectedPayload, contentKind(resp))
		}

		return newHTTPError(resp.StatusCode, resp.reason())
	}

	return newFaultError(resp.StatusCode, fault)
}

func extractFault(resp *Response) (*Fault, error) {
	if resp.IsXML() {
		var envelope xmlIntuitResponse

		err := xml.Unmarshal(resp.Body, &envelope)
		if err != nil {
			return nil, fmt.Errorf("decoding XML fault: %w", err)
		}

		return envelope.Fault, nil
	}

	var envelope jsonFaultEnvelope

	err := json.Unmarshal(resp.Body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("decoding JSON fault: %w", err)
	}

	return envelope.Fault, nil
}

func contentKind(resp *Response) string {
	if resp.IsXML() {
		return "XML"
	}

	return "JSON"
}
