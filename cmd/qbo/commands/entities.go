package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewEntitiesCommand creates the command listing supported entities.
func NewEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "entities",
		Aliases: []string{"resources"},
		Short:   "List supported entities",
		Long:    "List the accounting entities accepted by get, create, update, delete and query",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			resources := qbo.Resources()

			return render(out, resources, func() error {
				table := tablewriter.NewWriter(out)
				table.Header("Entity")

				for _, resource := range resources {
					_ = table.Append(resource)
				}

				err := table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			})
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENTITY ID",
		Short: "Get a record",
		Long:  "Read a single record of an entity by ID",
		Args:  cobra.ExactArgs(constants.TwoArgumentsRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, config, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			record, err := client.Read(ctx, args[0], args[1], config.params())
			if err != nil {
				return fmt.Errorf("failed to get %s %s: %w", args[0], args[1], err)
			}

			return outputRecord(cmd.OutOrStdout(), record)
		},
	}
}

type writeFunc func(client qbo.Client, cmd *cobra.Command, entity string, payload map[string]any, params *qbo.Params) (qbo.Record, error)

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	return newWriteCommand("create", "Create a record", "Create a record from a JSON or YAML payload file",
		func(client qbo.Client, cmd *cobra.Command, entity string, payload map[string]any, params *qbo.Params) (qbo.Record, error) {
			return client.Create(cmd.Context(), entity, payload, params)
		})
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	return newWriteCommand("update", "Update a record",
		"Update a record from a JSON or YAML payload file. The payload must carry Id and SyncToken; add sparse: true for a partial update",
		func(client qbo.Client, cmd *cobra.Command, entity string, payload map[string]any, params *qbo.Params) (qbo.Record, error) {
			return client.Update(cmd.Context(), entity, payload, params)
		})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return newWriteCommand("delete", "Delete a record",
		"Delete a record. The payload must carry Id and SyncToken",
		func(client qbo.Client, cmd *cobra.Command, entity string, payload map[string]any, params *qbo.Params) (qbo.Record, error) {
			return client.Delete(cmd.Context(), entity, payload, params)
		})
}

func newWriteCommand(use, short, long string, write writeFunc) *cobra.Command {
	var (
		file      string
		requestID string
	)

	cmd := &cobra.Command{
		Use:   use + " ENTITY",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := loadPayload(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			client, config, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			params := config.params()
			if requestID != "" {
				params.WithRequestID(requestID)
			}

			record, err := write(client, cmd, args[0], payload, params)
			if err != nil {
				return fmt.Errorf("failed to %s %s: %w", use, args[0], err)
			}

			return outputRecord(cmd.OutOrStdout(), record)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "payload file (.json, .yml or .yaml), - for stdin")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency key sent as requestid")

	return cmd
}

func outputRecord(w io.Writer, record qbo.Record) error {
	return render(w, record, func() error {
		return renderRecordDetails(w, record)
	})
}
