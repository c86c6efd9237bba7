package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const reportIndent = "  "

type reportDocument struct {
	Header  map[string]any `json:"Header"`
	Columns struct {
		Column []struct {
			ColTitle string `json:"ColTitle"`
		} `json:"Column"`
	} `json:"Columns"`
	Rows reportRows `json:"Rows"`
}

type reportRows struct {
	Row []reportRow `json:"Row"`
}

type reportCells struct {
	ColData []struct {
		Value string `json:"value"`
	} `json:"ColData"`
}

type reportRow struct {
	reportCells

	Header  *reportCells `json:"Header"`
	Rows    *reportRows  `json:"Rows"`
	Summary *reportCells `json:"Summary"`
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "report NAME",
		Short: "Run a report",
		Long: `Run a named report such as ProfitAndLoss, BalanceSheet or AgedReceivables.

Report options are passed with --param:
  qbo report ProfitAndLoss --param start_date=2024-01-01 --param end_date=2024-03-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportCommand(cmd, args[0], params)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "report option as key=value (repeatable)")

	return cmd
}

func runReportCommand(cmd *cobra.Command, name string, pairs []string) error {
	options, err := parseKeyValues(pairs)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	client, config, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	params := config.params()
	for key, value := range options {
		params.With(key, value)
	}

	payload, err := client.Report(ctx, name, params)
	if err != nil {
		return fmt.Errorf("failed to run report %s: %w", name, err)
	}

	document, err := decodeReport(payload)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	return render(out, document, func() error {
		return renderReportTable(out, payload)
	})
}

// decodeReport turns the raw report sections into plain values for the
// JSON and YAML renderers.
func decodeReport(payload qbo.Payload) (map[string]any, error) {
	document := make(map[string]any, len(payload))

	for key, raw := range payload {
		var value any

		err := json.Unmarshal(raw, &value)
		if err != nil {
			return nil, fmt.Errorf("decoding report section %s: %w", key, err)
		}

		document[key] = value
	}

	return document, nil
}

func renderReportTable(w io.Writer, payload qbo.Payload) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	var document reportDocument

	err = json.Unmarshal(encoded, &document)
	if err != nil {
		return fmt.Errorf("decoding report: %w", err)
	}

	if name, ok := document.Header["ReportName"].(string); ok {
		_, _ = fmt.Fprintf(w, "%s %s - %s\n\n", name,
			fieldString(document.Header, "StartPeriod"), fieldString(document.Header, "EndPeriod"))
	}

	table := tablewriter.NewWriter(w)

	titles := make([]any, len(document.Columns.Column))
	for i, column := range document.Columns.Column {
		titles[i] = column.ColTitle
	}

	if len(titles) > 0 {
		table.Header(titles...)
	}

	for _, line := range flattenReportRows(document.Rows.Row, 0) {
		_ = table.Append(line)
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// flattenReportRows turns nested report sections into table lines, indenting
// the first cell by nesting depth.
func flattenReportRows(rows []reportRow, depth int) [][]string {
	var lines [][]string

	for _, row := range rows {
		if row.Header != nil {
			lines = append(lines, row.Header.line(depth))
		}

		if len(row.ColData) > 0 {
			lines = append(lines, row.line(depth))
		}

		if row.Rows != nil {
			lines = append(lines, flattenReportRows(row.Rows.Row, depth+1)...)
		}

		if row.Summary != nil {
			lines = append(lines, row.Summary.line(depth))
		}
	}

	return lines
}

func (c reportCells) line(depth int) []string {
	line := make([]string, len(c.ColData))
	for i, cell := range c.ColData {
		line[i] = cell.Value
	}

	if len(line) > 0 {
		line[0] = strings.Repeat(reportIndent, depth) + line[0]
	}

	return line
}
