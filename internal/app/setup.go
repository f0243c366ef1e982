// Package app contains the application setup for the catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	grpcImpl "github.com/abgdnv/catalog/internal/transport/grpc"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/pkg/auth"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/messaging"
	pkgnats "github.com/abgdnv/catalog/pkg/nats"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
)

const ServiceName = "catalog"

type Dependencies struct {
	ProductService service.ProductService
	// Verifier guards write endpoints when set.
	Verifier auth.Verifier
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore, publisher),
		Logger:         logger,
	}
}

// SetupStore returns the product store selected by cfg and a function releasing its resources.
// For PostgreSQL, migrations run first when enabled.
func SetupStore(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	if cfg.InMemory {
		logger.Warn("Using in-memory product store, data will not survive a restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	if cfg.Migrate {
		if err := store.Migrate(cfg.URL); err != nil {
			return nil, nil, err
		}
		logger.Info("Database migrations applied")
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

// SetupPublisher connects to NATS JetStream and makes sure the product stream exists.
// With NATS disabled, events are dropped.
func SetupPublisher(ctx context.Context, cfg pkgconfig.NATSConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		logger.Info("NATS disabled, product events will not be published")
		return messaging.NopPublisher{}, func() {}, nil
	}

	nc, err := pkgnats.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pkgnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}

	streamCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := pkgnats.EnsureStream(streamCtx, js, cfg.Stream, messaging.ProductsSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS JetStream", "stream", cfg.Stream)

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", "error", err)
		}
	}
	return pkgnats.NewNatsPublisher(js), closeFn, nil
}

// SetupVerifier returns nil when token verification is disabled.
func SetupVerifier(ctx context.Context, cfg pkgconfig.IdP) (auth.Verifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	verifier, err := auth.NewJWTVerifier(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	return verifier, nil
}

// SetupHttpHandler initializes the router and routes for the catalog service.
// Used by tests to exercise the HTTP surface without a listener.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	var authMiddleware func(http.Handler) http.Handler
	if deps.Verifier != nil {
		authMiddleware = web.Authenticator(deps.Verifier, deps.Logger)
	}
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger, authMiddleware)
	productHandler.RegisterRoutes(mux)

	if deps.MetricsHandler != nil {
		mux.Handle("/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, ServiceName, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server for the catalog service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	catalogServer := grpcImpl.NewServer(deps.ProductService, deps.Logger)
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, catalogServer.Register)
}
