package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Fields tried in order for the Name column of record tables.
var summaryNameFields = []string{"DisplayName", "Name", "FullyQualifiedName", "DocNumber", "CompanyName"}

// StandardJSONRenderer writes data as indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data as YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// outputFormat returns the configured output format.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))

	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

// render writes data as JSON or YAML, or calls table for table output.
func render[T any](w io.Writer, data T, table func() error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		return StandardJSONRenderer(w, data)
	case constants.FormatYAML:
		return StandardYAMLRenderer(w, data)
	default:
		return table()
	}
}

// renderRecordsTable lists records one per row.
func renderRecordsTable(w io.Writer, entity string, records []qbo.Record) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintf(w, "No %s records found\n", entity)

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Id", "Name", "Sync Token", "Last Updated")

	for _, record := range records {
		_ = table.Append(
			fieldString(record, "Id"),
			recordName(record),
			fieldString(record, "SyncToken"),
			lastUpdated(record),
		)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderRecordDetails lists the top-level fields of a record.
func renderRecordDetails(w io.Writer, record qbo.Record) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	for _, key := range sortedFields(record) {
		_ = table.Append(key, formatValue(record[key]))
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func sortedFields(record qbo.Record) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func recordName(record qbo.Record) string {
	for _, field := range summaryNameFields {
		if value := fieldString(record, field); value != constants.NotAvailable {
			return value
		}
	}

	return constants.NotAvailable
}

func lastUpdated(record qbo.Record) string {
	meta, ok := record["MetaData"].(map[string]any)
	if !ok {
		return constants.NotAvailable
	}

	return fieldString(meta, "LastUpdatedTime")
}

func fieldString(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return constants.NotAvailable
	}

	return formatValue(value)
}

// formatValue renders scalars as-is and nested values as truncated JSON.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return truncate(string(encoded), constants.StringTruncationLength)
	}
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}

	return s[:length-3] + "..."
}

// loadPayload reads an entity body from a JSON or YAML file, or from stdin
// when path is "-".
func loadPayload(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		// #nosec G304 -- the path is supplied by the CLI user
		data, err = os.ReadFile(filepath.Clean(path))
	}

	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, constants.ErrEmptyPayload
	}

	payload := map[string]any{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &payload)
	default:
		err = json.Unmarshal(data, &payload)
		if err != nil && path == "-" {
			err = yaml.Unmarshal(data, &payload)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	return payload, nil
}

// parseKeyValues splits key=value pairs.
func parseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, pair)
		}

		values[key] = value
	}

	return values, nil
}
