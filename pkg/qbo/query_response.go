package qbo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a single decoded entity as returned by the service.
type Record map[string]any

// QueryResponse is one page of query results.
type QueryResponse struct {
	Entity        string   `json:"entity"         yaml:"entity"`
	Records       []Record `json:"records"        yaml:"records"`
	StartPosition int      `json:"start_position" yaml:"start_position"`
	MaxResults    int      `json:"max_results"    yaml:"max_results"`
	// TotalCount falls back to MaxResults when the service omits it, so it
	// signals that more pages may exist rather than giving an exact count.
	TotalCount int `json:"total_count" yaml:"total_count"`
}

type queryResponseWindow struct {
	StartPosition *int `json:"startPosition"`
	MaxResults    *int `json:"maxResults"`
	TotalCount    *int `json:"totalCount"`
}

// NewQueryResponse decodes the QueryResponse object of a query result for
// entity. maxResults is required; startPosition defaults to 1.
func NewQueryResponse(entity string, raw json.RawMessage) (*QueryResponse, error) {
	var window queryResponseWindow

	err := json.Unmarshal(raw, &window)
	if err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}

	if window.MaxResults == nil {
		return nil, ErrMissingMaxResults
	}

	records, err := decodeRecords(raw, entity)
	if err != nil {
		return nil, err
	}

	response := &QueryResponse{
		Entity:        entity,
		Records:       records,
		StartPosition: DefaultStartPosition,
		MaxResults:    *window.MaxResults,
		TotalCount:    *window.MaxResults,
	}

	if window.StartPosition != nil {
		response.StartPosition = *window.StartPosition
	}

	if window.TotalCount != nil {
		response.TotalCount = *window.TotalCount
	}

	return response, nil
}

// String summarises the page.
func (q *QueryResponse) String() string {
	return fmt.Sprintf("Entity: %s, StartPosition: %d, Count: %d, MaxResults: %d",
		q.Entity, q.StartPosition, q.TotalCount, q.MaxResults)
}

// decodeRecords returns the records stored under entity in a query response
// object, or an empty slice when the key is absent.
func decodeRecords(raw json.RawMessage, entity string) ([]Record, error) {
	var fields map[string]json.RawMessage

	err := json.Unmarshal(raw, &fields)
	if err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}

	records := []Record{}

	list, ok := fields[entity]
	if !ok {
		return records, nil
	}

	err = json.Unmarshal(list, &records)
	if err != nil {
		return nil, fmt.Errorf("decoding %s records: %w", entity, err)
	}

	return records, nil
}

// oneOrMany normalises a value that is either a JSON array or a single
// element into a slice of elements.
func oneOrMany(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] != '[' {
		return []json.RawMessage{trimmed}, nil
	}

	var items []json.RawMessage

	err := json.Unmarshal(trimmed, &items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedPayload, err)
	}

	return items, nil
}
