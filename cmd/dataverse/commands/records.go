package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENTITY ID",
		Short: "Get a record",
		Long:  "Retrieve a single record of an entity set by its id or alternate key",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			handle, err := entityClient(ctx, args[0])
			if err != nil {
				return err
			}

			record, err := handle.Get(ctx, args[1])
			if err != nil {
				return fmt.Errorf("failed to get %s '%s': %w", args[0], args[1], err)
			}

			return outputRecord(cmd.OutOrStdout(), record)
		},
	}
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:   "create ENTITY",
		Short: "Create a record",
		Long:  "Create a record in an entity set from inline JSON or a JSON/YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := loadPayload(data, file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			handle, err := entityClient(ctx, args[0])
			if err != nil {
				return err
			}

			record, err := handle.Create(ctx, payload)
			if err != nil {
				return fmt.Errorf("failed to create %s record: %w", args[0], err)
			}

			return outputRecord(cmd.OutOrStdout(), record)
		},
	}

	addPayloadFlags(cmd, &data, &file)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:   "update ENTITY ID",
		Short: "Update a record",
		Long:  "Patch the given fields of an existing record",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := loadPayload(data, file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			handle, err := entityClient(ctx, args[0])
			if err != nil {
				return err
			}

			updated, err := handle.Update(ctx, args[1], payload)
			if err != nil {
				return fmt.Errorf("failed to update %s '%s': %w", args[0], args[1], err)
			}

			return reportOutcome(cmd, "update", args[0], args[1], updated)
		},
	}

	addPayloadFlags(cmd, &data, &file)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ENTITY ID",
		Short: "Delete a record",
		Long:  "Delete a record from an entity set",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, id := args[0], args[1]

			if !force {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Really delete %s '%s'? Type '%s' to confirm: ",
					entity, id, constants.ConfirmationYes)

				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(response) != constants.ConfirmationYes {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")

					return nil
				}
			}

			ctx := cmd.Context()

			handle, err := entityClient(ctx, entity)
			if err != nil {
				return err
			}

			deleted, err := handle.Delete(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to delete %s '%s': %w", entity, id, err)
			}

			return reportOutcome(cmd, "delete", entity, id, deleted)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		filter  string
		fields  []string
		orderBy string
		top     int
		expand  string
	)

	cmd := &cobra.Command{
		Use:   "query ENTITY",
		Short: "Query records",
		Long:  "Query an entity set with OData $filter, $select, $orderby, $top and $expand options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			handle, err := entityClient(ctx, args[0])
			if err != nil {
				return err
			}

			opts := dataverse.NewQueryOptions().
				WithFilter(filter).
				WithSelect(fields...).
				WithOrderBy(orderBy).
				WithTop(top).
				WithExpand(expand)

			records, err := handle.Query(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to query %s: %w", args[0], err)
			}

			return outputRecords(cmd.OutOrStdout(), records, fields)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "OData $filter expression, e.g. \"name eq 'Acme'\"")
	cmd.Flags().StringSliceVar(&fields, "select", nil, "fields to return, comma separated")
	cmd.Flags().StringVar(&orderBy, "orderby", "", "OData $orderby expression, e.g. \"name asc\"")
	cmd.Flags().IntVar(&top, "top", 0, "maximum number of records to return")
	cmd.Flags().StringVar(&expand, "expand", "", "OData $expand expression")

	return cmd
}

func addPayloadFlags(cmd *cobra.Command, data, file *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "record fields as a JSON object")
	cmd.Flags().StringVarP(file, "file", "F", "", "path to a JSON or YAML file with record fields")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
}

// reportOutcome prints the result of an update or delete. Only a 204 No
// Content answer counts as success.
func reportOutcome(cmd *cobra.Command, action, entity, id string, ok bool) error {
	format := outputFormat()
	if format != constants.FormatTable {
		return writeStructured(cmd.OutOrStdout(), format, map[string]interface{}{
			"action":  action,
			"entity":  entity,
			"id":      id,
			"success": ok,
		})
	}

	if ok {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully %sd %s '%s'\n", action, entity, id)
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Server did not confirm %s of %s '%s'\n", action, entity, id)
	}

	return nil
}
