package cli

import (
	"fmt"

	"github.com/TFMV/icetour/display"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show the table's schema, snapshots and properties",
	Long: `Show the table's location, current schema, snapshot history and properties.

With --files the objects under the table location are listed as well, which
shows the metadata and data files each step of the tour has written.`,
	Args: cobra.NoArgs,
	RunE: runDescribe,
}

type describeOptions struct {
	files bool
}

var describeOpts = &describeOptions{}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().BoolVar(&describeOpts.files, "files", false, "list the table's files in object storage")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	h, err := s.manager.Open(ctx, s.ident)
	if err != nil {
		return withHint(err, "Run 'icetour create' to create the table")
	}

	d := s.display
	d.Info("Table: %s", s.cfg.Table.Identifier)
	d.Info("Location: %s", h.Location())
	d.Info("Metadata: %s", h.MetadataLocation())

	schema := h.Schema()
	if err := d.Table(schemaTableData(schema)).WithTitle(fmt.Sprintf("Schema (ID: %d):", schema.ID)).Render(); err != nil {
		return err
	}

	snapshots := h.Snapshots()
	if len(snapshots) == 0 {
		d.Info("No snapshots yet")
	} else if err := d.Table(snapshotTableData(snapshots)).WithTitle(fmt.Sprintf("Snapshots (%d):", len(snapshots))).Render(); err != nil {
		return err
	}

	if props := h.Properties(); len(props) > 0 {
		if err := d.Table(propertiesTableData(props)).WithTitle("Properties:").Render(); err != nil {
			return err
		}
	}

	if !describeOpts.files {
		return nil
	}

	client, err := s.storage()
	if err != nil {
		return err
	}
	objects, err := client.ListFiles(ctx, h.Location())
	if err != nil {
		return fmt.Errorf("failed to list table files: %w", err)
	}

	data := display.TableData{Headers: []string{"Key", "Size", "Last Modified"}}
	var total int64
	for _, obj := range objects {
		total += obj.Size
		data.Rows = append(data.Rows, []interface{}{
			obj.Key,
			display.FormatBytes(obj.Size),
			obj.LastModified.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	data.Footer = []string{fmt.Sprintf("%d files", len(objects)), display.FormatBytes(total), ""}

	return d.Table(data).WithTitle("Files:").Render()
}
