package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/TFMV/icetour/catalog"
	"github.com/TFMV/icetour/config"
	"github.com/TFMV/icetour/display"
	"github.com/TFMV/icetour/fs/minio"
	"github.com/TFMV/icetour/tableops"
	"github.com/TFMV/icetour/tour"
	"github.com/apache/iceberg-go/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// hintError carries a suggestion printed below the error message
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }

func withHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &hintError{err: err, hint: hint}
}

// Hint returns the suggestion attached to err, if any
func Hint(err error) string {
	var he *hintError
	if errors.As(err, &he) {
		return he.hint
	}
	return ""
}

// session is the per-command state: configuration, catalog connection and output
type session struct {
	configPath string
	cfg        *config.Config
	ident      table.Identifier
	catalog    catalog.CatalogInterface
	manager    *tableops.Manager
	logger     *zap.Logger
	display    display.Display
}

// loadConfig resolves the configuration and applies its logging section
func loadConfig(cmd *cobra.Command) (string, *config.Config, error) {
	configPath, cfg, err := config.Load(rootOpts.configPath)
	if err != nil {
		return "", nil, withHint(fmt.Errorf("failed to load configuration: %w", err),
			"Run 'icetour init' to write a default "+config.FileName)
	}

	format := rootOpts.logFormat
	if !cmd.Flags().Changed("log-format") && cfg.Logging.Format != "" {
		format = cfg.Logging.Format
	}
	logger, err := newLogger(effectiveLogLevel(rootOpts.verbose, cfg), format, cmd.ErrOrStderr())
	if err != nil {
		return "", nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	rootOpts.logger = logger

	if configPath != "" {
		logger.Debug("using configuration", zap.String("path", configPath))
	} else {
		logger.Debug("no configuration file found, using defaults")
	}

	return configPath, cfg, nil
}

// openSession loads the configuration and connects to the catalog. opts are
// applied to the table manager after the logger.
func openSession(cmd *cobra.Command, opts ...tableops.Option) (*session, error) {
	configPath, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	ident, err := cfg.Table.TableIdentifier()
	if err != nil {
		return nil, err
	}

	logger := getLogger()
	cat, err := catalog.NewCatalog(cmd.Context(), cfg)
	if err != nil {
		return nil, withHint(tour.ConnectError(err),
			fmt.Sprintf("Check that the REST catalog at %s is running and reachable", cfg.Catalog.REST.URI))
	}
	logger.Debug("connected to catalog", zap.String("catalog", cat.Name()), zap.String("uri", cfg.Catalog.REST.URI))

	return &session{
		configPath: configPath,
		cfg:        cfg,
		ident:      ident,
		catalog:    cat,
		manager:    tableops.NewManager(cat, append([]tableops.Option{tableops.WithLogger(logger)}, opts...)...),
		logger:     logger,
		display:    getDisplay(cmd),
	}, nil
}

// runner builds a tour runner for the configured table
func (s *session) runner(opts ...tour.Option) *tour.Runner {
	base := []tour.Option{
		tour.WithDisplay(s.display),
		tour.WithLogger(s.logger),
		tour.WithTableProperties(s.cfg.Table.TableProperties()),
	}
	return tour.NewRunner(tour.FromManager(s.manager), s.ident, append(base, opts...)...)
}

// storage returns a client for the warehouse object store
func (s *session) storage() (*minio.Client, error) {
	client, err := minio.NewClient(s.cfg.Storage.S3, minio.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// ensureWarehouseBucket creates the bucket named by the warehouse location if it is missing
func (s *session) ensureWarehouseBucket(ctx context.Context) error {
	bucket, _, err := minio.WarehouseBucket(s.cfg.Catalog.REST.WarehouseLocation)
	if err != nil {
		return err
	}

	client, err := s.storage()
	if err != nil {
		return err
	}

	created, err := client.EnsureBucket(ctx, bucket)
	if err != nil {
		return withHint(fmt.Errorf("failed to prepare warehouse bucket: %w", err),
			"Use --skip-bucket if the bucket is managed outside icetour")
	}
	if created {
		s.display.Success("Created warehouse bucket %s", bucket)
	}
	return nil
}

func (s *session) Close() {
	if err := s.catalog.Close(); err != nil {
		s.logger.Warn("failed to close catalog", zap.Error(err))
	}
}
