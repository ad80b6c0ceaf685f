// Package app contains the application setup for the product catalog.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/platform/messaging"
	"github.com/abgdnv/productcatalog/internal/platform/server"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/abgdnv/productcatalog/internal/product/transport/rest"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "productcatalog"

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Logger         *slog.Logger
	AllowedOrigins []string
	DefaultLimit   int
}

// SetupStore creates the in-memory store filled from the configured seed file,
// or from the built-in catalog when none is set.
func SetupStore(cfg *config.Config) (store.ProductStore, error) {
	seed, err := store.LoadSeed(cfg.Catalog.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}
	return store.NewInMemoryStore(seed...), nil
}

func SetupDependencies(cfg *config.Config, repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	pService := service.NewService(repo,
		service.WithPublisher(publisher),
		service.WithLogger(logger),
	)

	return &Dependencies{
		ProductService: pService,
		Store:          repo,
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		DefaultLimit:   cfg.Catalog.DefaultLimit,
	}
}

// SetupHttpHandler initializes the routes and middleware of the product catalog.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger, deps.AllowedOrigins)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the product catalog.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.DefaultLimit, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the product catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, serviceName, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the standard health service.
// The returned health server is used to flip the status to NOT_SERVING on shutdown.
func SetupGrpcServer(reflectionEnabled bool) (*grpc.Server, *health.Server) {
	healthServer := health.NewServer()
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	// create a new gRPC server with reflection if enabled
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(healthServer)), healthServer
}
