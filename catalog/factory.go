package catalog

import (
	"context"
	"fmt"

	"github.com/TFMV/icetour/catalog/rest"
	"github.com/TFMV/icetour/config"
	icebergcatalog "github.com/apache/iceberg-go/catalog"
)

// CatalogInterface defines the common interface for all catalog implementations
type CatalogInterface interface {
	icebergcatalog.Catalog
	Name() string
	Close() error
}

// NewCatalog creates a new catalog based on the configuration type
func NewCatalog(ctx context.Context, cfg *config.Config) (CatalogInterface, error) {
	switch cfg.Catalog.Type {
	case "rest":
		cat, err := rest.NewCatalog(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return cat, nil
	default:
		return nil, fmt.Errorf("unsupported catalog type: %s", cfg.Catalog.Type)
	}
}
