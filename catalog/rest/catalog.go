package rest

import (
	"context"
	"crypto/tls"
	"fmt"
	"maps"
	"net/url"

	"github.com/TFMV/icetour/config"
	"github.com/apache/iceberg-go"
	icebergrest "github.com/apache/iceberg-go/catalog/rest"
	"github.com/apache/iceberg-go/table"
)

// Catalog is an iceberg-go REST catalog client that remembers its endpoint and the
// warehouse storage properties
type Catalog struct {
	*icebergrest.Catalog

	name        string
	uri         string
	fileIOProps iceberg.Properties
}

// NewCatalog creates a new REST catalog wrapper. The underlying client fetches the
// server configuration while being created, so an unreachable catalog fails here.
func NewCatalog(ctx context.Context, cfg *config.Config) (*Catalog, error) {
	if cfg.Catalog.REST == nil {
		return nil, fmt.Errorf("REST catalog configuration is required")
	}

	restConfig := cfg.Catalog.REST
	if restConfig.URI == "" {
		return nil, fmt.Errorf("REST catalog URI is required")
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}

	restCatalog, err := icebergrest.NewCatalog(ctx, cfg.Name, restConfig.URI, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to REST catalog at %s: %w", restConfig.URI, err)
	}

	return &Catalog{
		Catalog:     restCatalog,
		name:        cfg.Name,
		uri:         restConfig.URI,
		fileIOProps: cfg.Storage.S3.FileIOProperties(),
	}, nil
}

// buildOptions translates the REST configuration into iceberg-go client options
func buildOptions(cfg *config.Config) ([]icebergrest.Option, error) {
	restConfig := cfg.Catalog.REST
	var opts []icebergrest.Option

	if restConfig.OAuth != nil {
		if restConfig.OAuth.Token != "" {
			opts = append(opts, icebergrest.WithOAuthToken(restConfig.OAuth.Token))
		}
		if restConfig.OAuth.Credential != "" {
			opts = append(opts, icebergrest.WithCredential(restConfig.OAuth.Credential))
		}
		if restConfig.OAuth.AuthURL != "" {
			authURL, err := url.Parse(restConfig.OAuth.AuthURL)
			if err != nil {
				return nil, fmt.Errorf("invalid auth URL: %w", err)
			}
			if authURL.Scheme == "" || authURL.Host == "" {
				return nil, fmt.Errorf("invalid auth URL: %q must be absolute", restConfig.OAuth.AuthURL)
			}
			opts = append(opts, icebergrest.WithAuthURI(authURL))
		}
		if restConfig.OAuth.Scope != "" {
			opts = append(opts, icebergrest.WithScope(restConfig.OAuth.Scope))
		}
	}

	if restConfig.SigV4 != nil && restConfig.SigV4.Enabled {
		if restConfig.SigV4.Region != "" && restConfig.SigV4.Service != "" {
			opts = append(opts, icebergrest.WithSigV4RegionSvc(restConfig.SigV4.Region, restConfig.SigV4.Service))
		} else {
			opts = append(opts, icebergrest.WithSigV4())
		}
	}

	if restConfig.TLS != nil {
		opts = append(opts, icebergrest.WithTLSConfig(&tls.Config{
			InsecureSkipVerify: restConfig.TLS.SkipVerify,
		}))
	}

	if restConfig.WarehouseLocation != "" {
		opts = append(opts, icebergrest.WithWarehouseLocation(restConfig.WarehouseLocation))
	}

	if restConfig.Prefix != "" {
		opts = append(opts, icebergrest.WithPrefix(restConfig.Prefix))
	}

	// Storage credentials travel with the catalog properties so tables loaded through
	// the catalog get an S3 FileIO pointed at the warehouse.
	props := cfg.Storage.S3.FileIOProperties()
	for k, v := range restConfig.AdditionalProps {
		props[k] = v
	}
	for k, v := range restConfig.Credentials {
		props[k] = v
	}
	if len(props) > 0 {
		opts = append(opts, icebergrest.WithAdditionalProps(props))
	}

	return opts, nil
}

// Name returns the catalog name
func (c *Catalog) Name() string {
	return c.name
}

// URI returns the catalog endpoint
func (c *Catalog) URI() string {
	return c.uri
}

// FileIOProperties returns the storage properties handed to loaded tables
func (c *Catalog) FileIOProperties() iceberg.Properties {
	props := iceberg.Properties{}
	maps.Copy(props, c.fileIOProps)
	return props
}

// LoadTable loads a table, layering the storage properties under any caller
// supplied ones so the table can reach the warehouse
func (c *Catalog) LoadTable(ctx context.Context, identifier table.Identifier, props iceberg.Properties) (*table.Table, error) {
	merged := c.FileIOProperties()
	maps.Copy(merged, props)
	return c.Catalog.LoadTable(ctx, identifier, merged)
}

// Close releases nothing; the REST client keeps no open connections of its own
func (c *Catalog) Close() error {
	return nil
}
