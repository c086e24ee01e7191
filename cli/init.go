package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TFMV/icetour/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Write a default .icetour.yml",
	Long: `Write a .icetour.yml configuration pointing at a local REST catalog and MinIO.

The defaults match the docker compose setup of the Iceberg REST fixture:
catalog at http://localhost:8181, warehouse s3://warehouse/ on MinIO at
http://localhost:9000 with admin/password credentials. Flags override
individual values.

If no directory is specified the file is written to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

type initOptions struct {
	catalogURI string
	warehouse  string
	s3Endpoint string
	table      string
	force      bool
}

var initOpts = &initOptions{}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initOpts.catalogURI, "catalog-uri", config.DefaultCatalogURI, "REST catalog URI")
	initCmd.Flags().StringVar(&initOpts.warehouse, "warehouse", config.DefaultWarehouse, "warehouse location")
	initCmd.Flags().StringVar(&initOpts.s3Endpoint, "s3-endpoint", config.DefaultS3Endpoint, "S3 endpoint of the warehouse")
	initCmd.Flags().StringVar(&initOpts.table, "table", config.DefaultTable, "table identifier (namespace.table)")
	initCmd.Flags().BoolVar(&initOpts.force, "force", false, "overwrite an existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", absPath, err)
	}

	configPath := filepath.Join(absPath, config.FileName)
	if _, err := os.Stat(configPath); err == nil && !initOpts.force {
		return withHint(fmt.Errorf("%s already exists", configPath), "Use --force to overwrite it")
	}

	cfg := config.Default()
	cfg.Name = filepath.Base(absPath)
	cfg.Catalog.REST.URI = initOpts.catalogURI
	cfg.Catalog.REST.WarehouseLocation = initOpts.warehouse
	cfg.Storage.S3.Endpoint = initOpts.s3Endpoint
	cfg.Table.Identifier = initOpts.table

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.WriteConfig(configPath, cfg); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	d := getDisplay(cmd)
	d.Success("Wrote %s", configPath)
	d.Info("Catalog: %s", cfg.Catalog.REST.URI)
	d.Info("Warehouse: %s", cfg.Catalog.REST.WarehouseLocation)
	d.Info("Table: %s", cfg.Table.Identifier)
	d.Info("Next: icetour run")

	return nil
}
