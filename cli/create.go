package cli

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the table if it does not exist",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

type createOptions struct {
	skipBucket bool
}

var createOpts = &createOptions{}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().BoolVar(&createOpts.skipBucket, "skip-bucket", false, "do not create the warehouse bucket")
}

func runCreate(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if !createOpts.skipBucket {
		if err := s.ensureWarehouseBucket(cmd.Context()); err != nil {
			return err
		}
	}

	tbl, created, err := s.runner().Create(cmd.Context())
	if err != nil {
		return err
	}

	if created {
		s.display.Success("Created table %s", s.cfg.Table.Identifier)
	} else {
		s.display.Info("Table %s already exists", s.cfg.Table.Identifier)
	}

	return s.display.Table(schemaTableData(tbl.Schema())).WithTitle("Schema:").Render()
}
