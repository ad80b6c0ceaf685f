package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/platform/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTPServer.Port = 3000
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Catalog.DefaultLimit = 5
	return cfg
}

func Test_SetupStore(t *testing.T) {
	t.Run("built-in catalog", func(t *testing.T) {
		// when
		repo, err := SetupStore(testConfig())

		// then
		require.NoError(t, err)
		assert.Equal(t, 11, repo.Len())
	})

	t.Run("seed file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Pad","stock":10}]`), 0o600))
		cfg := testConfig()
		cfg.Catalog.SeedFile = path

		// when
		repo, err := SetupStore(cfg)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("missing seed file", func(t *testing.T) {
		// given
		cfg := testConfig()
		cfg.Catalog.SeedFile = filepath.Join(t.TempDir(), "missing.json")

		// when
		repo, err := SetupStore(cfg)

		// then
		assert.Error(t, err)
		assert.Nil(t, repo)
	})
}

func Test_SetupHttpHandler(t *testing.T) {
	// given
	cfg := testConfig()
	repo, err := SetupStore(cfg)
	require.NoError(t, err)
	deps := SetupDependencies(cfg, repo, messaging.NoopPublisher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := SetupHttpHandler(deps)

	// when
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func Test_SetupHttpServer(t *testing.T) {
	// given
	cfg := testConfig()
	repo, err := SetupStore(cfg)
	require.NoError(t, err)
	deps := SetupDependencies(cfg, repo, messaging.NoopPublisher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// when
	srv := SetupHttpServer(deps, cfg)

	// then
	assert.Equal(t, ":3000", srv.Addr)
	assert.NotNil(t, srv.Handler)
}

func Test_SetupGrpcServer(t *testing.T) {
	// when
	grpcServer, healthServer := SetupGrpcServer(false)
	defer grpcServer.Stop()

	// then
	resp, err := healthServer.Check(context.Background(), &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	assert.Contains(t, grpcServer.GetServiceInfo(), healthpb.Health_ServiceDesc.ServiceName)
}
