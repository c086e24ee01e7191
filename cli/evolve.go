package cli

import (
	"fmt"

	"github.com/TFMV/icetour/tableops"
	"github.com/TFMV/icetour/tour"
	"github.com/spf13/cobra"
)

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Add a column to the table schema",
	Long: `Add a column to the table schema as a new schema version.

Existing data files are untouched; rows written before the change read the
new column as null. Adding a column that already exists with the same type
does nothing, so the command can be re-run safely.

Examples:
  icetour evolve
  icetour evolve --column email --type string --doc "contact address"`,
	Args: cobra.NoArgs,
	RunE: runEvolve,
}

type evolveOptions struct {
	column   string
	typ      string
	required bool
	doc      string
}

var evolveOpts = &evolveOptions{}

func init() {
	rootCmd.AddCommand(evolveCmd)

	evolveCmd.Flags().StringVar(&evolveOpts.column, "column", tableops.ColumnDeletedAt, "name of the column to add")
	evolveCmd.Flags().StringVar(&evolveOpts.typ, "type", "timestamp", "column type: long, int, string, timestamp, timestamptz, date, boolean, double")
	evolveCmd.Flags().BoolVar(&evolveOpts.required, "required", false, "mark the column required; only accepted when it already exists as a required column, new required columns are always rejected")
	evolveCmd.Flags().StringVar(&evolveOpts.doc, "doc", "", "column documentation")
}

func runEvolve(cmd *cobra.Command, args []string) error {
	typ, ok := tableops.ParseType(evolveOpts.typ)
	if !ok {
		return fmt.Errorf("unsupported column type: %s", evolveOpts.typ)
	}
	col := tour.Column{
		Name:     evolveOpts.column,
		Type:     typ,
		Required: evolveOpts.required,
		Doc:      evolveOpts.doc,
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	changed, schema, err := s.runner().Evolve(cmd.Context(), col)
	if err != nil {
		return err
	}

	if changed {
		s.display.Success("Added column %s (%s)", col.Name, col.Type)
	} else {
		s.display.Info("Column %s already present", col.Name)
	}

	return s.display.Table(schemaTableData(schema)).WithTitle(fmt.Sprintf("Schema (ID: %d):", schema.ID)).Render()
}
