package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/TFMV/icetour/config"
	"github.com/TFMV/icetour/display"
	"github.com/TFMV/icetour/engine/duckdb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run SQL against the table with DuckDB",
	Long: `Run a SQL query with DuckDB's iceberg extension.

The configured table is registered as a view named after its identifier
with dots replaced by underscores, plus an alias named after the table
itself, reading the current snapshot straight from object storage.

Examples:
  icetour query "SELECT COUNT(*) FROM my_table"
  icetour query "SELECT name, created_at FROM my_namespace_my_table ORDER BY id"
  icetour query --format csv "SELECT * FROM my_table WHERE deleted_at IS NULL"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

type queryOptions struct {
	format   string
	maxRows  int
	timeout  int
	memoryMB int
	register bool
	timing   bool
}

var queryOpts = &queryOptions{}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryOpts.format, "format", "table", "output format: table, csv, json, markdown")
	queryCmd.Flags().IntVar(&queryOpts.maxRows, "max-rows", 1000, "maximum number of rows to fetch and display")
	queryCmd.Flags().IntVar(&queryOpts.timeout, "timeout", 300, "query timeout in seconds, 0 for none")
	queryCmd.Flags().IntVar(&queryOpts.memoryMB, "memory-limit", 512, "DuckDB memory limit in MB")
	queryCmd.Flags().BoolVar(&queryOpts.register, "register", true, "register the configured table before running the query")
	queryCmd.Flags().BoolVar(&queryOpts.timing, "timing", false, "show query execution time")
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := display.ParseFormat(queryOpts.format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	d := getDisplay(cmd)

	var s3 *config.S3Config
	var s *session
	if queryOpts.register {
		s, err = openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		s3 = s.cfg.Storage.S3
	}

	engineCfg := duckdb.DefaultEngineConfig()
	engineCfg.MaxRows = int64(queryOpts.maxRows)
	engineCfg.QueryTimeoutSec = queryOpts.timeout
	engineCfg.MaxMemoryMB = queryOpts.memoryMB

	engine, err := duckdb.NewEngine(s3, duckdb.WithLogger(getLogger()), duckdb.WithConfig(engineCfg))
	if err != nil {
		return withHint(fmt.Errorf("failed to create SQL engine: %w", err), "This might be a DuckDB installation issue")
	}
	defer engine.Close()

	if s != nil {
		h, err := s.manager.Open(ctx, s.ident)
		if err != nil {
			return withHint(err, "Run 'icetour create' to create the table")
		}
		name, err := engine.RegisterTable(ctx, s.ident, h.MetadataLocation())
		if err != nil {
			return withHint(err, "DuckDB needs network access to install the httpfs and iceberg extensions on first use")
		}
		getLogger().Debug("table registered", zap.String("view", name))
	}

	result, err := engine.ExecuteQuery(ctx, args[0])
	if err != nil {
		if strings.Contains(err.Error(), "table not found") {
			return withHint(err, availableTablesHint(ctx, engine))
		}
		return err
	}

	if err := d.Table(result.ToTableData()).WithFormat(format).WithMaxRows(queryOpts.maxRows).Render(); err != nil {
		return fmt.Errorf("failed to display results: %w", err)
	}
	if result.Truncated {
		d.Warning("Result truncated after %d rows", result.RowCount)
	}
	if queryOpts.timing {
		m := engine.GetMetrics()
		d.Info("%s: %d rows in %v (%d tables registered)", result.QueryID, result.RowCount, result.Duration, m.TablesRegistered)
	}

	return nil
}

func availableTablesHint(ctx context.Context, engine *duckdb.Engine) string {
	tables, err := engine.ListTables(ctx)
	if err != nil || len(tables) == 0 {
		return "No tables are registered; leave --register on to query the configured table"
	}
	return "Available tables: " + strings.Join(tables, ", ")
}
