package commands

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// EntityDescription is the metadata summary of one entity set.
type EntityDescription struct {
	Name       string   `json:"name"        yaml:"name"`
	EntityType string   `json:"entity_type" yaml:"entity_type"`
	Properties []string `json:"properties"  yaml:"properties"`
}

// NewMetadataCommand creates the metadata command group. Its subcommands
// always download $metadata regardless of --validate.
func NewMetadataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "metadata",
		Aliases: []string{"md"},
		Short:   "Inspect the service metadata",
		Long:    "Inspect entity sets and declared properties from the $metadata document",
	}

	cmd.AddCommand(newMetadataEntitiesCommand())
	cmd.AddCommand(newMetadataEntityCommand())

	return cmd
}

func newMetadataEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List entity sets",
		Long:  "List every entity set declared in the $metadata document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), true)
			if err != nil {
				return err
			}

			md, err := requireMetadata(client)
			if err != nil {
				return err
			}

			names := md.EntitySetNames()
			out := cmd.OutOrStdout()

			format := outputFormat()
			if format != constants.FormatTable {
				return writeStructured(out, format, names)
			}

			table := tablewriter.NewWriter(out)
			table.Header("Entity Set")

			for _, name := range names {
				_ = table.Append([]string{name})
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newMetadataEntityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entity ENTITY",
		Short: "Describe an entity set",
		Long:  "Show the entity type and declared properties of an entity set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), true)
			if err != nil {
				return err
			}

			md, err := requireMetadata(client)
			if err != nil {
				return err
			}

			description, err := describeEntity(md, args[0])
			if err != nil {
				return err
			}

			return outputEntityDescription(cmd.OutOrStdout(), description)
		},
	}
}

// requireMetadata returns the client's metadata document.
func requireMetadata(client dataverse.Client) (dataverse.Metadata, error) {
	md := client.Metadata()
	if md == nil {
		return nil, dataverse.ErrMetadataUnavailable
	}

	return md, nil
}

func describeEntity(md dataverse.Metadata, entity string) (*EntityDescription, error) {
	typeName, err := md.EntityTypeName(entity)
	if err != nil {
		return nil, err
	}

	properties, err := md.Properties(entity)
	if err != nil {
		return nil, err
	}

	return &EntityDescription{
		Name:       entity,
		EntityType: typeName,
		Properties: properties,
	}, nil
}

func outputEntityDescription(out io.Writer, description *EntityDescription) error {
	format := outputFormat()
	if format != constants.FormatTable {
		return writeStructured(out, format, description)
	}

	_, _ = fmt.Fprintf(out, "Entity set:  %s\nEntity type: %s\n\n", description.Name, description.EntityType)

	table := tablewriter.NewWriter(out)
	table.Header("Property")

	for _, property := range description.Properties {
		_ = table.Append([]string{property})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
