package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sitecraft/sitecraft/backend/go-services/handlers"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/asset"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/config"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/database"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/oidc"
	profilerepo "github.com/sitecraft/sitecraft/backend/go-services/internal/profile/repository"
	profileservice "github.com/sitecraft/sitecraft/backend/go-services/internal/profile/service"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/server"
	siteservice "github.com/sitecraft/sitecraft/backend/go-services/internal/site/service"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/storage"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/tokens"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/tracing"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/logger"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/metrics"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

var version = "dev"

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: oidc=%v mongo=%v redis=%v storage=%s", cfg.OIDC.IssuerURL() != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Storage.Backend)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, version)
	if err != nil {
		logger.Fatalf("failed to initialize tracing: %v", err)
	}

	checks := map[string]handlers.Check{}

	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis ping failed (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis at %s", addr)
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	sites, profiles, mongoClient := buildStores(ctx, cfg, checks)
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize %s object store: %v", cfg.Storage.Backend, err)
	}
	checks["storage"] = store.Ping

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	engine := server.New(server.Deps{
		Config:      cfg,
		Verifier:    verifier,
		Revocations: tokens.NewRevocationList(rdb),
		Redis:       rdb,
		Sites:       sites,
		Profiles:    profiles,
		Assets:      asset.NewService(store),
		Checks:      checks,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      tracing.Wrap(engine, cfg.Tracing.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting sitecraft api on %s (base path %s)", srv.Addr, cfg.Server.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("tracing shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

// buildStores connects to MongoDB when configured and falls back to the
// in-memory repositories otherwise.
func buildStores(ctx context.Context, cfg *config.Config, checks map[string]handlers.Check) (*siteservice.Service, *profileservice.Service, *mongo.Client) {
	sender, err := profileservice.NewSender(cfg.SMS.Sender)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Warn("MONGODB_URI not set: using in-memory storage, data is lost on restart")
		return siteservice.NewMemoryService(), profileservice.NewService(profilerepo.NewMemoryRepo(), sender), nil
	}

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	db := client.Database(cfg.MongoDB.Database)
	sites, err := siteservice.NewMongoService(ctx, db)
	if err != nil {
		logger.Fatalf("failed to prepare site collections: %v", err)
	}
	checks["mongo"] = func(ctx context.Context) error { return database.Ping(ctx, client) }
	logger.Infof("using MongoDB database %q", cfg.MongoDB.Database)
	return sites, profileservice.NewService(profilerepo.NewMongoRepo(db), sender), client
}

// buildVerifier chains every configured token verifier. OIDC comes first,
// then first-party HS256 tokens, then the insecure verifier when explicitly allowed.
func buildVerifier(ctx context.Context, cfg *config.Config) (middleware.Verifier, error) {
	var chain oidc.Chain
	if issuer := cfg.OIDC.IssuerURL(); issuer != "" {
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier for %s: %v", issuer, err)
		} else {
			chain = append(chain, ver)
		}
	}
	if cfg.JWT.Secret != "" {
		ver, err := oidc.NewHMACVerifier(cfg.JWT.Secret)
		if err != nil {
			return nil, err
		}
		chain = append(chain, ver)
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		chain = append(chain, oidc.NewInsecureVerifier())
	}
	if len(chain) == 0 {
		return nil, errors.New("no token verifier configured: set OIDC_ISSUER, KEYCLOAK_URL or JWT_SECRET")
	}
	return chain, nil
}
