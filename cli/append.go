package cli

import (
	"fmt"

	"github.com/TFMV/icetour/importer"
	"github.com/TFMV/icetour/tableops"
	"github.com/TFMV/icetour/tour"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"
)

var appendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append rows to the table",
	Long: `Append rows to the table as one new snapshot.

Without --from the two example rows of the tour are appended. With --from,
rows are read from a Parquet or Avro file whose columns are matched by name
to id, name and created_at.

Examples:
  icetour append
  icetour append --from rows.parquet
  icetour append --from testdata/rows.avro --batch-size 500`,
	Args: cobra.NoArgs,
	RunE: runAppend,
}

type appendOptions struct {
	from      string
	batchSize int64
}

var appendOpts = &appendOptions{}

func init() {
	rootCmd.AddCommand(appendCmd)

	appendCmd.Flags().StringVar(&appendOpts.from, "from", "", "Parquet or Avro file to read rows from")
	appendCmd.Flags().Int64Var(&appendOpts.batchSize, "batch-size", 1000, "rows per record batch when writing data files")
}

func runAppend(cmd *cobra.Command, args []string) error {
	if appendOpts.batchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive, got %d", appendOpts.batchSize)
	}

	s, err := openSession(cmd, tableops.WithBatchSize(appendOpts.batchSize))
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	r := s.runner()

	if appendOpts.from == "" {
		n, err := r.Append(ctx, tour.DemoRows(tableops.Now()))
		if err != nil {
			return err
		}
		s.display.Success("Appended %d rows to %s", n, s.cfg.Table.Identifier)
		return nil
	}

	data, err := importer.ReadRows(ctx, appendOpts.from, tableops.AppendSchema(), memory.DefaultAllocator)
	if err != nil {
		return withHint(fmt.Errorf("failed to read %s: %w", appendOpts.from, err),
			fmt.Sprintf("Supported formats: %v", importer.SupportedFormats()))
	}
	defer data.Release()

	n, err := r.AppendData(ctx, data)
	if err != nil {
		return err
	}
	s.display.Success("Appended %d rows from %s to %s", n, appendOpts.from, s.cfg.Table.Identifier)
	return nil
}
