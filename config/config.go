package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apache/iceberg-go"
	icebergcatalog "github.com/apache/iceberg-go/catalog"
	"github.com/apache/iceberg-go/table"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the project configuration file
const FileName = ".icetour.yml"

// ErrConfigNotFound is returned by FindConfig when no configuration file exists
var ErrConfigNotFound = errors.New("no " + FileName + " found in current directory or parents")

// Config represents the main icetour configuration
type Config struct {
	Name    string        `yaml:"name"`
	Version string        `yaml:"version,omitempty"`
	Catalog CatalogConfig `yaml:"catalog"`
	Storage StorageConfig `yaml:"storage"`
	Table   TableConfig   `yaml:"table"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// CatalogConfig holds catalog-specific configuration
type CatalogConfig struct {
	Type string      `yaml:"type"`
	REST *RESTConfig `yaml:"rest,omitempty"`
}

// RESTConfig holds REST catalog configuration
type RESTConfig struct {
	URI               string            `yaml:"uri"`
	Credentials       map[string]string `yaml:"credentials,omitempty"`
	OAuth             *OAuthConfig      `yaml:"oauth,omitempty"`
	SigV4             *SigV4Config      `yaml:"sigv4,omitempty"`
	TLS               *TLSConfig        `yaml:"tls,omitempty"`
	WarehouseLocation string            `yaml:"warehouse_location,omitempty"`
	Prefix            string            `yaml:"prefix,omitempty"`
	AdditionalProps   map[string]string `yaml:"additional_properties,omitempty"`
}

// OAuthConfig holds OAuth authentication configuration
type OAuthConfig struct {
	Token      string `yaml:"token,omitempty"`
	Credential string `yaml:"credential,omitempty"`
	AuthURL    string `yaml:"auth_url,omitempty"`
	Scope      string `yaml:"scope,omitempty"`
}

// SigV4Config holds AWS Signature Version 4 authentication configuration
type SigV4Config struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region,omitempty"`
	Service string `yaml:"service,omitempty"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	SkipVerify bool `yaml:"skip_verify,omitempty"`
}

// StorageConfig holds storage-specific configuration
type StorageConfig struct {
	Type string    `yaml:"type"`
	S3   *S3Config `yaml:"s3,omitempty"`
}

// S3Config holds S3-compatible storage configuration for the warehouse
type S3Config struct {
	Endpoint        string `yaml:"endpoint,omitempty"`
	Region          string `yaml:"region,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	PathStyleAccess bool   `yaml:"path_style_access"`
}

// TableConfig names the table the tour works on
type TableConfig struct {
	Identifier string            `yaml:"identifier"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// LoggingConfig controls the diagnostic logger
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// FileIO property keys understood by the iceberg-go S3 FileIO. The path-style key is
// the one the REST catalog servers document; the virtual-addressing key is what
// iceberg-go reads.
const (
	PropS3Endpoint          = "s3.endpoint"
	PropS3AccessKeyID       = "s3.access-key-id"
	PropS3SecretAccessKey   = "s3.secret-access-key"
	PropS3Region            = "s3.region"
	PropS3PathStyleAccess   = "s3.path-style-access"
	PropS3VirtualAddressing = "s3.force-virtual-addressing"
	PropRegion              = "region"
)

// FileIOProperties returns the properties the catalog needs to read and write
// table files in the warehouse
func (s *S3Config) FileIOProperties() iceberg.Properties {
	props := iceberg.Properties{}
	if s == nil {
		return props
	}

	if s.Endpoint != "" {
		props[PropS3Endpoint] = s.Endpoint
	}
	if s.AccessKeyID != "" {
		props[PropS3AccessKeyID] = s.AccessKeyID
	}
	if s.SecretAccessKey != "" {
		props[PropS3SecretAccessKey] = s.SecretAccessKey
	}
	if s.Region != "" {
		props[PropS3Region] = s.Region
		props[PropRegion] = s.Region
	}
	props[PropS3PathStyleAccess] = strconv.FormatBool(s.PathStyleAccess)
	props[PropS3VirtualAddressing] = strconv.FormatBool(!s.PathStyleAccess)

	return props
}

// TableIdentifier parses the configured "namespace.table" name
func (t TableConfig) TableIdentifier() (table.Identifier, error) {
	if strings.TrimSpace(t.Identifier) == "" {
		return nil, fmt.Errorf("table identifier cannot be empty")
	}

	ident := icebergcatalog.ToIdentifier(t.Identifier)
	if len(ident) < 2 {
		return nil, fmt.Errorf("table identifier %q must be of the form namespace.table", t.Identifier)
	}
	for _, part := range ident {
		if part == "" {
			return nil, fmt.Errorf("table identifier %q has an empty component", t.Identifier)
		}
	}

	return ident, nil
}

// TableProperties returns the configured table properties as iceberg properties
func (t TableConfig) TableProperties() iceberg.Properties {
	props := make(iceberg.Properties, len(t.Properties))
	for k, v := range t.Properties {
		props[k] = v
	}
	return props
}

// Validate checks that the configuration can be used to reach a catalog
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch c.Catalog.Type {
	case "rest":
		if c.Catalog.REST == nil {
			return fmt.Errorf("catalog.rest is required for catalog type rest")
		}
		if c.Catalog.REST.URI == "" {
			return fmt.Errorf("catalog.rest.uri is required")
		}
	case "":
		return fmt.Errorf("catalog.type is required")
	default:
		return fmt.Errorf("unsupported catalog type: %s", c.Catalog.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3 == nil {
		return fmt.Errorf("storage.s3 is required for storage type s3")
	}

	if _, err := c.Table.TableIdentifier(); err != nil {
		return err
	}

	return nil
}

// WriteConfig writes a configuration to a YAML file
func WriteConfig(path string, cfg *Config) error {
	if cfg.Version == "" {
		cfg.Version = "1"
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// ReadConfig reads a configuration from a YAML file
func ReadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// FindConfig searches for a .icetour.yml file in the current directory or parents
func FindConfig() (string, *Config, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath, err := findConfigFile(currentDir)
	if err != nil {
		return "", nil, err
	}

	cfg, err := ReadConfig(configPath)
	if err != nil {
		return "", nil, err
	}

	return configPath, cfg, nil
}

// Load resolves the configuration for a command: an explicit path wins, otherwise the
// nearest .icetour.yml, otherwise the built-in defaults. Environment overrides are
// applied last. The returned path is empty when defaults were used.
func Load(path string) (string, *Config, error) {
	var cfg *Config

	switch {
	case path != "":
		c, err := ReadConfig(path)
		if err != nil {
			return "", nil, err
		}
		cfg = c
	default:
		found, c, err := FindConfig()
		switch {
		case err == nil:
			path, cfg = found, c
		case errors.Is(err, ErrConfigNotFound):
			cfg = Default()
		default:
			return "", nil, err
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return "", nil, err
	}

	if err := cfg.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return path, cfg, nil
}

// findConfigFile searches for .icetour.yml starting from the given directory
func findConfigFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		configPath := filepath.Join(currentDir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", ErrConfigNotFound
}
