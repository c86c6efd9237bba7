package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/araddon/dateparse"
	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/nats-io/nats.go"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type cdcOptions struct {
	since         string
	publishURL    string
	subjectPrefix string
}

// NewCDCCommand creates the change data capture command.
func NewCDCCommand() *cobra.Command {
	options := &cdcOptions{}

	cmd := &cobra.Command{
		Use:     "cdc ENTITY [ENTITY...]",
		Aliases: []string{"changes"},
		Short:   "Show changed records",
		Long: `Fetch records of the given entities changed since a point in time.

--since accepts most date formats, for example "2024-01-31", "2024-01-31T10:00:00Z"
or "Jan 31, 2024 10:00am". With --publish every changed record is sent to NATS
on <prefix>.<entity>.<upsert|delete>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCDCCommand(cmd, args, options)
		},
	}

	cmd.Flags().StringVarP(&options.since, "since", "s", "", "changes since this time (required)")
	cmd.Flags().StringVar(&options.publishURL, "publish", "", "NATS server URL to publish changes to")
	cmd.Flags().StringVar(&options.subjectPrefix, "subject-prefix", qbo.DefaultSubjectPrefix, "NATS subject prefix")
	_ = cmd.MarkFlagRequired("since")

	return cmd
}

// parseSince accepts any date layout dateparse understands.
func parseSince(value string) (time.Time, error) {
	since, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", constants.ErrInvalidSince, value, err)
	}

	return since, nil
}

func runCDCCommand(cmd *cobra.Command, args []string, options *cdcOptions) error {
	if len(args) == 0 {
		return constants.ErrNoEntities
	}

	since, err := parseSince(options.since)
	if err != nil {
		return err
	}

	entities := make([]string, len(args))
	for i, arg := range args {
		entities[i], err = qbo.CanonicalResource(arg)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()

	client, config, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	changes, err := client.CDC(ctx, entities, since, config.params())
	if err != nil {
		return fmt.Errorf("failed to fetch changes: %w", err)
	}

	out := cmd.OutOrStdout()

	if options.publishURL != "" {
		sent, err := publishChanges(cmd, changes, options)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Published %d changes to %s\n", sent, options.publishURL)
	}

	return render(out, changes, func() error {
		return renderChangesTable(out, changes)
	})
}

func publishChanges(cmd *cobra.Command, changes *qbo.CDCResponse, options *cdcOptions) (int, error) {
	publisher, conn, err := qbo.ConnectChangePublisher(options.publishURL, options.subjectPrefix,
		loadConfig().logger(), nats.Name("qbo-cli"))
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	sent, err := publisher.Publish(cmd.Context(), changes)
	if err != nil {
		return sent, err
	}

	err = conn.Flush()
	if err != nil {
		return sent, fmt.Errorf("flushing NATS connection: %w", err)
	}

	return sent, nil
}

func renderChangesTable(w io.Writer, changes *qbo.CDCResponse) error {
	entities := make([]string, 0, len(changes.Upsert))
	for entity := range changes.Upsert {
		entities = append(entities, entity)
	}

	sort.Strings(entities)

	title := cases.Title(language.English)
	table := tablewriter.NewWriter(w)
	table.Header("Entity", "Operation", "Id", "Name", "Last Updated")

	rows := 0

	for _, entity := range entities {
		for _, bucket := range []struct {
			operation string
			records   []qbo.Record
		}{
			{qbo.ChangeUpsert, changes.Upsert[entity]},
			{qbo.ChangeDelete, changes.Delete[entity]},
		} {
			for _, record := range bucket.records {
				_ = table.Append(entity, title.String(bucket.operation),
					fieldString(record, "Id"), recordName(record), lastUpdated(record))
				rows++
			}
		}
	}

	if rows == 0 {
		_, _ = fmt.Fprintln(w, "No changes found")

		return nil
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, _ = fmt.Fprintf(w, "\n%d changes\n", rows)

	return nil
}
