package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TFMV/icetour/config"
	icebergcatalog "github.com/apache/iceberg-go/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogREST(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"defaults":  map[string]string{},
			"overrides": map[string]string{},
		})
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Name = "test-rest-catalog"
	cfg.Catalog.REST.URI = srv.URL

	catalog, err := NewCatalog(context.Background(), cfg)
	require.NoError(t, err)
	defer catalog.Close()

	assert.Equal(t, cfg.Name, catalog.Name())
	assert.Equal(t, icebergcatalog.REST, catalog.CatalogType())
}

func TestNewCatalogUnsupportedType(t *testing.T) {
	cfg := &config.Config{
		Name: "test-catalog",
		Catalog: config.CatalogConfig{
			Type: "unsupported",
		},
	}

	_, err := NewCatalog(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, "unsupported catalog type: unsupported", err.Error())
}

func TestNewCatalogWithMissingConfig(t *testing.T) {
	restConfig := &config.Config{
		Name: "test-catalog",
		Catalog: config.CatalogConfig{
			Type: "rest",
		},
	}

	_, err := NewCatalog(context.Background(), restConfig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REST catalog configuration is required")
}

func TestNewCatalogUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	uri := srv.URL
	srv.Close()

	cfg := config.Default()
	cfg.Catalog.REST.URI = uri

	_, err := NewCatalog(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), uri)
}
