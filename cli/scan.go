package cli

import (
	"github.com/TFMV/icetour/display"
	"github.com/TFMV/icetour/tableops"
	"github.com/TFMV/icetour/tour"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print the full contents of the table",
	Long: `Read every row of the table's current snapshot and print it.

Examples:
  icetour scan
  icetour scan --format csv > rows.csv
  icetour scan --format json --max-rows 10`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

type scanOptions struct {
	format  string
	maxRows int
}

var scanOpts = &scanOptions{}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanOpts.format, "format", "table", "output format: table, csv, json, markdown")
	scanCmd.Flags().IntVar(&scanOpts.maxRows, "max-rows", 0, "maximum number of rows to print (0 prints all)")
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := display.ParseFormat(scanOpts.format)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.runner().Scan(cmd.Context())
	if err != nil {
		return err
	}
	defer data.Release()

	tb := s.display.Table(tableops.ToTableData(data)).WithFormat(format).WithMaxRows(scanOpts.maxRows)
	if format == display.FormatTable {
		tb = tb.WithTitle(tour.ScanTitle)
	}
	return tb.Render()
}
