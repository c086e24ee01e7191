package cli

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole tour",
	Long: `Run every step of the tour against the configured table:

  1. create the table (and its namespace) if it does not exist
  2. append two example rows
  3. scan the table and print its contents
  4. add an optional deleted_at timestamp column

Running the tour again is safe: creation and schema evolution are
idempotent, and each run appends two more rows.`,
	Args: cobra.NoArgs,
	RunE: runTour,
}

type runOptions struct {
	skipBucket bool
}

var runOpts = &runOptions{}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runOpts.skipBucket, "skip-bucket", false, "do not create the warehouse bucket")
}

func runTour(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if !runOpts.skipBucket {
		if err := s.ensureWarehouseBucket(cmd.Context()); err != nil {
			return err
		}
	}

	res, err := s.runner().Run(cmd.Context())
	if err != nil {
		return err
	}

	if res.Created {
		s.display.Success("Created table %s", s.cfg.Table.Identifier)
	}
	s.display.Success("Appended %d rows, table now holds %d", res.RowsAppended, res.RowsScanned)
	if res.SchemaEvolved {
		s.display.Success("Added column deleted_at")
	} else {
		s.display.Info("Column deleted_at already present")
	}

	return s.display.Table(schemaTableData(res.Schema)).WithTitle("Schema:").Render()
}
