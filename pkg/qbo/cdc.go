package qbo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// deletedStatusField marks a change-feed record as a deletion.
const deletedStatusField = "status"

// CDCResponse is a change-data-capture feed split into upserted and deleted
// records per entity. Every requested entity is present in both maps.
type CDCResponse struct {
	Upsert map[string][]Record `json:"upsert" yaml:"upsert"`
	Delete map[string][]Record `json:"delete" yaml:"delete"`
}

type cdcPage struct {
	QueryResponse json.RawMessage `json:"QueryResponse"`
}

// NewCDCResponse decodes the CDCResponse value of a change feed. The feed
// holds one query response per requested entity, aligned positionally with
// entities. Both the feed and its QueryResponse list may arrive as a single
// object instead of an array; either is normalised to a sequence first.
func NewCDCResponse(entities []string, raw json.RawMessage) (*CDCResponse, error) {
	pages, err := oneOrMany(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding change feed: %w", err)
	}

	var responses []json.RawMessage

	if len(pages) > 0 {
		var page cdcPage

		err = json.Unmarshal(pages[0], &page)
		if err != nil {
			return nil, fmt.Errorf("decoding change feed page: %w", err)
		}

		responses, err = oneOrMany(page.QueryResponse)
		if err != nil {
			return nil, fmt.Errorf("decoding change feed query responses: %w", err)
		}
	}

	cdc := &CDCResponse{
		Upsert: make(map[string][]Record, len(entities)),
		Delete: make(map[string][]Record, len(entities)),
	}

	for index, entity := range entities {
		cdc.Upsert[entity] = []Record{}
		cdc.Delete[entity] = []Record{}

		if index >= len(responses) {
			continue
		}

		records, err := decodeRecords(responses[index], entity)
		if err != nil {
			return nil, err
		}

		for _, record := range records {
			if _, deleted := record[deletedStatusField]; deleted {
				cdc.Delete[entity] = append(cdc.Delete[entity], record)
			} else {
				cdc.Upsert[entity] = append(cdc.Upsert[entity], record)
			}
		}
	}

	return cdc, nil
}

// String summarises the number of records per entity and bucket.
func (c *CDCResponse) String() string {
	return fmt.Sprintf("Upsert: %s, Delete: %s", countSummary(c.Upsert), countSummary(c.Delete))
}

func countSummary(buckets map[string][]Record) string {
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, len(buckets[name]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
