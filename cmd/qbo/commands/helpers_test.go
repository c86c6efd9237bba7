package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPayload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	jsonFile := filepath.Join(dir, "customer.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"DisplayName": "Acme", "Active": true}`), 0o600))

	payload, err := loadPayload(jsonFile, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"DisplayName": "Acme", "Active": true}, payload)

	yamlFile := filepath.Join(dir, "customer.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("DisplayName: Acme\nBalance: 12.5\n"), 0o600))

	payload, err = loadPayload(yamlFile, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", payload["DisplayName"])
	assert.InDelta(t, 12.5, payload["Balance"], 0.0001)

	payload, err = loadPayload("-", strings.NewReader(`{"Id": "5", "SyncToken": "0"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Id": "5", "SyncToken": "0"}, payload)

	payload, err = loadPayload("-", strings.NewReader("Id: \"5\"\nSyncToken: \"1\"\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Id": "5", "SyncToken": "1"}, payload)
}

func TestLoadPayload_Errors(t *testing.T) {
	t.Parallel()

	_, err := loadPayload("-", strings.NewReader("  \n"))
	require.ErrorIs(t, err, constants.ErrEmptyPayload)

	_, err = loadPayload(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)

	badFile := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badFile, []byte("DisplayName: Acme"), 0o600))

	_, err = loadPayload(badFile, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding payload")
}

func TestParseKeyValues(t *testing.T) {
	t.Parallel()

	values, err := parseKeyValues([]string{"start_date=2024-01-01", "accounting_method=Cash", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"start_date":        "2024-01-01",
		"accounting_method": "Cash",
		"empty":             "",
	}, values)

	_, err = parseKeyValues([]string{"start_date"})
	require.ErrorIs(t, err, constants.ErrInvalidParam)

	_, err = parseKeyValues([]string{"=value"})
	require.ErrorIs(t, err, constants.ErrInvalidParam)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, constants.NotAvailable, formatValue(nil))
	assert.Equal(t, "Acme", formatValue("Acme"))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "1250.5", formatValue(1250.5))
	assert.Equal(t, `{"value":"3"}`, formatValue(map[string]any{"value": "3"}))

	long := formatValue(map[string]any{"Line1": strings.Repeat("x", 100)})
	assert.Len(t, long, constants.StringTruncationLength)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestRecordSummaryFields(t *testing.T) {
	t.Parallel()

	record := qbo.Record{
		"Id":        "7",
		"DocNumber": "1001",
		"MetaData":  map[string]any{"LastUpdatedTime": "2024-01-02T03:04:05-08:00"},
	}

	assert.Equal(t, "1001", recordName(record))
	assert.Equal(t, "2024-01-02T03:04:05-08:00", lastUpdated(record))

	record["DisplayName"] = "Acme"
	assert.Equal(t, "Acme", recordName(record))

	assert.Equal(t, constants.NotAvailable, recordName(qbo.Record{"Id": "1"}))
	assert.Equal(t, constants.NotAvailable, lastUpdated(qbo.Record{"Id": "1"}))
	assert.Equal(t, []string{"DisplayName", "DocNumber", "Id", "MetaData"}, sortedFields(record))
}

func TestRenderRecordsTable(t *testing.T) {
	t.Parallel()

	var empty bytes.Buffer
	require.NoError(t, renderRecordsTable(&empty, "Customer", nil))
	assert.Equal(t, "No Customer records found\n", empty.String())

	var out bytes.Buffer
	require.NoError(t, renderRecordsTable(&out, "Customer", []qbo.Record{
		{"Id": "1", "DisplayName": "Acme", "SyncToken": "3"},
		{"Id": "2", "DisplayName": "Globex", "SyncToken": "0"},
	}))
	assert.Contains(t, out.String(), "Acme")
	assert.Contains(t, out.String(), "Globex")
}

func TestOutputFormat(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	format, err := outputFormat()
	require.NoError(t, err)
	assert.Equal(t, constants.FormatTable, format)

	viper.Set(KeyOutput, "JSON")

	format, err = outputFormat()
	require.NoError(t, err)
	assert.Equal(t, constants.FormatJSON, format)

	viper.Set(KeyOutput, "xml")

	_, err = outputFormat()
	require.ErrorIs(t, err, constants.ErrUnsupportedFormat)
}
