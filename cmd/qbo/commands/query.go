package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type queryOptions struct {
	columns  []string
	filters  []string
	limit    int
	offset   int
	allPages bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	options := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query ENTITY",
		Short: "Query records",
		Long: `Run a query statement against an entity.

Filters are given with --where and combined with AND:
  qbo query Customer --where Active=true --where "Balance>0"
  qbo query Invoice --where "Id=[1,2,3]" --select Id,TotalAmt
  qbo query Vendor --where "DisplayName~Ac%" --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryCommand(cmd, args[0], options)
		},
	}

	cmd.Flags().StringSliceVar(&options.columns, "select", nil, "columns to return")
	cmd.Flags().StringArrayVarP(&options.filters, "where", "w", nil, "filter expression (repeatable)")
	cmd.Flags().IntVar(&options.limit, "limit", qbo.DefaultMaxResults, "rows per page (MaxResults)")
	cmd.Flags().IntVar(&options.offset, "offset", qbo.DefaultStartPosition, "first row, 1-based (StartPosition)")
	cmd.Flags().BoolVar(&options.allPages, "all", false, "fetch all pages")

	return cmd
}

func buildQuery(entity string, options *queryOptions) (*qbo.QueryBuilder, error) {
	entity, err := qbo.CanonicalResource(entity)
	if err != nil {
		return nil, err
	}

	builder := qbo.NewQueryBuilder(entity).Select(options.columns...)

	err = applyFilters(builder, options.filters)
	if err != nil {
		return nil, err
	}

	if options.limit > 0 {
		builder.Limit(options.limit)
	}

	if options.offset > 0 {
		builder.Offset(options.offset)
	}

	return builder, nil
}

func runQueryCommand(cmd *cobra.Command, entity string, options *queryOptions) error {
	builder, err := buildQuery(entity, options)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	client, config, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	if !options.allPages {
		page, err := client.Query(ctx, builder, config.params())
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", builder.Entity(), err)
		}

		return outputQueryPage(cmd.OutOrStdout(), page)
	}

	var records []qbo.Record

	for page, err := range client.BatchQuery(ctx, builder, config.params()) {
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", builder.Entity(), err)
		}

		records = append(records, page.Records...)
	}

	out := cmd.OutOrStdout()

	return render(out, records, func() error {
		return renderRecordsTable(out, builder.Entity(), records)
	})
}

func outputQueryPage(w io.Writer, page *qbo.QueryResponse) error {
	return render(w, page, func() error {
		err := renderRecordsTable(w, page.Entity, page.Records)
		if err != nil {
			return err
		}

		if len(page.Records) > 0 && len(page.Records) >= page.MaxResults {
			_, _ = fmt.Fprintf(w, "\nShowing rows from %d. Use --all to fetch all pages.\n", page.StartPosition)
		}

		return nil
	})
}

// NewCountCommand creates the count command.
func NewCountCommand() *cobra.Command {
	options := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "count ENTITY",
		Short: "Count records",
		Long:  "Count the records of an entity matching the --where filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCountCommand(cmd, args[0], options)
		},
	}

	cmd.Flags().StringArrayVarP(&options.filters, "where", "w", nil, "filter expression (repeatable)")

	return cmd
}

func runCountCommand(cmd *cobra.Command, entity string, options *queryOptions) error {
	builder, err := buildQuery(entity, options)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	client, config, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	count, err := client.Count(ctx, builder, config.params())
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", builder.Entity(), err)
	}

	out := cmd.OutOrStdout()
	result := map[string]any{"entity": builder.Entity(), "count": count}

	return render(out, result, func() error {
		table := tablewriter.NewWriter(out)
		table.Header("Entity", "Count")
		_ = table.Append(builder.Entity(), strconv.Itoa(count))

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}
