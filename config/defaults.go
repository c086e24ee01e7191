package config

import (
	"fmt"
	"strconv"
)

// Defaults for a local REST catalog fronting a MinIO warehouse
const (
	DefaultName            = "demo"
	DefaultCatalogURI      = "http://localhost:8181"
	DefaultWarehouse       = "s3://warehouse/"
	DefaultS3Endpoint      = "http://localhost:9000"
	DefaultAccessKeyID     = "admin"
	DefaultSecretAccessKey = "password"
	DefaultRegion          = "us-east-1"
	DefaultTable           = "my_namespace.my_table"
	DefaultFormatVersion   = "2"
)

// Default returns the configuration used when no .icetour.yml is present
func Default() *Config {
	return &Config{
		Name:    DefaultName,
		Version: "1",
		Catalog: CatalogConfig{
			Type: "rest",
			REST: &RESTConfig{
				URI:               DefaultCatalogURI,
				WarehouseLocation: DefaultWarehouse,
			},
		},
		Storage: StorageConfig{
			Type: "s3",
			S3: &S3Config{
				Endpoint:        DefaultS3Endpoint,
				Region:          DefaultRegion,
				AccessKeyID:     DefaultAccessKeyID,
				SecretAccessKey: DefaultSecretAccessKey,
				PathStyleAccess: true,
			},
		},
		Table: TableConfig{
			Identifier: DefaultTable,
			Properties: map[string]string{
				"format-version": DefaultFormatVersion,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides configuration values from ICETOUR_* environment variables
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup("ICETOUR_CATALOG_URI"); ok && v != "" {
		if cfg.Catalog.REST == nil {
			cfg.Catalog.REST = &RESTConfig{}
		}
		cfg.Catalog.REST.URI = v
	}
	if v, ok := lookup("ICETOUR_WAREHOUSE"); ok && v != "" {
		if cfg.Catalog.REST == nil {
			cfg.Catalog.REST = &RESTConfig{}
		}
		cfg.Catalog.REST.WarehouseLocation = v
	}
	if v, ok := lookup("ICETOUR_TABLE"); ok && v != "" {
		cfg.Table.Identifier = v
	}

	s3Vars := map[string]*string{}
	s3 := cfg.Storage.S3
	if s3 == nil {
		s3 = &S3Config{}
	}
	s3Vars["ICETOUR_S3_ENDPOINT"] = &s3.Endpoint
	s3Vars["ICETOUR_S3_REGION"] = &s3.Region
	s3Vars["ICETOUR_S3_ACCESS_KEY_ID"] = &s3.AccessKeyID
	s3Vars["ICETOUR_S3_SECRET_ACCESS_KEY"] = &s3.SecretAccessKey

	touched := false
	for key, dst := range s3Vars {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
			touched = true
		}
	}

	if v, ok := lookup("ICETOUR_S3_PATH_STYLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ICETOUR_S3_PATH_STYLE %q: %w", v, err)
		}
		s3.PathStyleAccess = b
		touched = true
	}

	if touched && cfg.Storage.S3 == nil {
		cfg.Storage.S3 = s3
		if cfg.Storage.Type == "" {
			cfg.Storage.Type = "s3"
		}
	}

	return nil
}
