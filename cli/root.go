package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/icetour/display"
	"github.com/TFMV/icetour/display/renderers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "icetour",
	Short: "A guided tour of an Apache Iceberg REST catalog",
	Long: `icetour walks through the basics of Apache Iceberg against a REST catalog
backed by S3-compatible storage such as MinIO.

The tour defines a schema, creates a table if it is absent, appends rows,
scans the table back and evolves the schema by adding a column. Each step
is also available as its own command.`,
	Version:           "0.1.0",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

type rootOptions struct {
	configPath string
	verbose    bool
	logFormat  string

	logger *zap.Logger
}

var rootOpts = &rootOptions{}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.configPath, "config", "c", "", "path to .icetour.yml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logFormat, "log-format", "console", "log format: console or json")
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	defer func() {
		if rootOpts.logger != nil {
			_ = rootOpts.logger.Sync()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// PrintError reports a failed command: the error line goes to out next to the
// command's normal output and the hint, if any, goes to errOut
func PrintError(out, errOut io.Writer, err error) {
	fmt.Fprintf(out, "Error: %v\n", err)
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(errOut, "💡 %s\n", hint)
	}
}

// setup builds the logger and the display shared by every command
func setup(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(effectiveLogLevel(rootOpts.verbose, nil), rootOpts.logFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	rootOpts.logger = logger

	out := cmd.OutOrStdout()
	caps := display.TerminalCapabilities{IsPiped: true}
	if out == os.Stdout {
		caps = display.DetectCapabilities()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(display.WithDisplay(ctx, display.NewWithRenderer(renderers.Auto(out, caps))))
	return nil
}

// getDisplay returns the display set up for the running command
func getDisplay(cmd *cobra.Command) display.Display {
	if d := display.FromContext(cmd.Context()); d != nil {
		return d
	}
	return display.NewWithRenderer(renderers.NewFallbackRenderer(cmd.OutOrStdout()))
}

func getLogger() *zap.Logger {
	if rootOpts.logger == nil {
		return zap.NewNop()
	}
	return rootOpts.logger
}
