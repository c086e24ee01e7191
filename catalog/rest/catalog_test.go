package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/TFMV/icetour/config"
	"github.com/apache/iceberg-go/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog answers the handful of REST catalog routes the client touches
type stubCatalog struct {
	mu         sync.Mutex
	namespaces map[string]bool
	configHits int
	authHeader string
	status     int
}

func newStubCatalog(t *testing.T, namespaces ...string) (*stubCatalog, *httptest.Server) {
	t.Helper()

	stub := &stubCatalog{namespaces: map[string]bool{}, status: http.StatusOK}
	for _, ns := range namespaces {
		stub.namespaces[ns] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/config", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.configHits++
		stub.authHeader = r.Header.Get("Authorization")
		status := stub.status
		stub.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "boom", "type": "ServerError", "code": status},
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"defaults":  map[string]string{},
			"overrides": map[string]string{},
		})
	})
	mux.HandleFunc("/v1/namespaces/", func(w http.ResponseWriter, r *http.Request) {
		ns := r.URL.Path[len("/v1/namespaces/"):]
		stub.mu.Lock()
		ok := stub.namespaces[ns]
		stub.mu.Unlock()

		if r.Method == http.MethodHead && ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "not found", "type": "NoSuchNamespaceException", "code": 404},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return stub, srv
}

func createTestConfig(uri string) *config.Config {
	cfg := config.Default()
	cfg.Name = "test-rest-catalog"
	cfg.Catalog.REST.URI = uri
	return cfg
}

func TestNewCatalog(t *testing.T) {
	stub, srv := newStubCatalog(t)

	catalog, err := NewCatalog(context.Background(), createTestConfig(srv.URL))
	require.NoError(t, err)
	defer catalog.Close()

	assert.Equal(t, "test-rest-catalog", catalog.Name())
	assert.Equal(t, srv.URL, catalog.URI())
	assert.NotNil(t, catalog.Catalog)
	assert.Equal(t, 1, stub.configHits)
}

func TestNewCatalogWithInvalidConfig(t *testing.T) {
	cfg := &config.Config{
		Name: "test",
		Catalog: config.CatalogConfig{
			Type: "rest",
		},
	}

	_, err := NewCatalog(context.Background(), cfg)
	require.Error(t, err)

	cfg.Catalog.REST = &config.RESTConfig{}
	_, err = NewCatalog(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URI is required")
}

func TestNewCatalogServerError(t *testing.T) {
	stub, srv := newStubCatalog(t)
	stub.status = http.StatusInternalServerError

	_, err := NewCatalog(context.Background(), createTestConfig(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to REST catalog")
}

func TestNewCatalogWithOAuthToken(t *testing.T) {
	stub, srv := newStubCatalog(t)

	cfg := createTestConfig(srv.URL)
	cfg.Catalog.REST.OAuth = &config.OAuthConfig{Token: "test-token"}

	catalog, err := NewCatalog(context.Background(), cfg)
	require.NoError(t, err)
	defer catalog.Close()

	assert.Equal(t, "Bearer test-token", stub.authHeader)
}

func TestBuildOptionsRejectsRelativeAuthURL(t *testing.T) {
	cfg := createTestConfig("http://localhost:8181")
	cfg.Catalog.REST.OAuth = &config.OAuthConfig{AuthURL: "oauth/tokens"}

	_, err := buildOptions(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid auth URL")
}

func TestBuildOptions(t *testing.T) {
	cfg := createTestConfig("http://localhost:8181")
	cfg.Catalog.REST.Prefix = "tenant"
	cfg.Catalog.REST.SigV4 = &config.SigV4Config{Enabled: true, Region: "us-east-1", Service: "glue"}
	cfg.Catalog.REST.TLS = &config.TLSConfig{SkipVerify: true}
	cfg.Catalog.REST.AdditionalProps = map[string]string{"client.region": "us-east-1"}

	opts, err := buildOptions(cfg)
	require.NoError(t, err)
	// sigv4, tls, warehouse, prefix, additional props
	assert.Len(t, opts, 5)
}

func TestFileIOProperties(t *testing.T) {
	_, srv := newStubCatalog(t)

	catalog, err := NewCatalog(context.Background(), createTestConfig(srv.URL))
	require.NoError(t, err)

	props := catalog.FileIOProperties()
	assert.Equal(t, config.DefaultS3Endpoint, props[config.PropS3Endpoint])
	assert.Equal(t, "true", props[config.PropS3PathStyleAccess])

	props[config.PropS3Endpoint] = "mutated"
	assert.Equal(t, config.DefaultS3Endpoint, catalog.FileIOProperties()[config.PropS3Endpoint])
}

func TestCheckNamespaceExists(t *testing.T) {
	_, srv := newStubCatalog(t, "my_namespace")

	catalog, err := NewCatalog(context.Background(), createTestConfig(srv.URL))
	require.NoError(t, err)

	exists, err := catalog.CheckNamespaceExists(context.Background(), table.Identifier{"my_namespace"})
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = catalog.CheckNamespaceExists(context.Background(), table.Identifier{"missing"})
	require.NoError(t, err)
	assert.False(t, exists)
}
