package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sitecraft/sitecraft/backend/go-services/handlers"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/asset"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/config"
	profilehandler "github.com/sitecraft/sitecraft/backend/go-services/internal/profile/handler"
	profileservice "github.com/sitecraft/sitecraft/backend/go-services/internal/profile/service"
	sitehandler "github.com/sitecraft/sitecraft/backend/go-services/internal/site/handler"
	siteservice "github.com/sitecraft/sitecraft/backend/go-services/internal/site/service"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/tokens"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/middleware"
)

// Deps are the constructed services the HTTP layer routes to.
type Deps struct {
	Config      *config.Config
	Verifier    middleware.Verifier
	Revocations *tokens.RevocationList
	// Redis backs the shared rate limiters when set.
	Redis    *redis.Client
	Sites    *siteservice.Service
	Profiles *profileservice.Service
	Assets   *asset.Service
	Checks   map[string]handlers.Check
}

// New builds the gin engine with every route mounted.
func New(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(middleware.CORS(cfg.Server.CORSOrigin), middleware.Observe(), gin.Recovery())

	handlers.RegisterHealth(r, d.Checks)
	handlers.RegisterSwagger(r, cfg.Server.BasePath)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.Server.BasePath, middleware.AuthMiddleware(d.Verifier, d.Revocations))
	if cfg.RateLimit.Enabled {
		api.Use(globalLimiter(cfg.RateLimit, d.Redis))
	}

	sitehandler.RegisterSiteRoutes(api, d.Sites)
	profilehandler.RegisterProfileRoutes(api, d.Profiles, smsLimiter(cfg.RateLimit, d.Redis))
	asset.RegisterRoutes(api, d.Assets, cfg.Server.MaxUploadBytes)
	handlers.NewAuthHandler(d.Revocations, cfg.JWT.AccessTokenTTL).Register(api)
	return r
}

func globalLimiter(rl config.RateLimitConfig, client *redis.Client) gin.HandlerFunc {
	if rl.UseRedis && client != nil {
		win := time.Duration(rl.WindowSeconds) * time.Second
		return middleware.RedisRateLimitMiddleware(client, rl.RPS, rl.Burst, win)
	}
	return middleware.RateLimitMiddleware(rl.RPS, rl.Burst)
}

// smsLimiter caps verification codes per caller per minute. It is applied
// even when the global limiter is off.
func smsLimiter(rl config.RateLimitConfig, client *redis.Client) gin.HandlerFunc {
	if rl.SMSPerMinute <= 0 {
		return nil
	}
	if client != nil {
		return middleware.NamedRedisRateLimitMiddleware("sms", client, 0, rl.SMSPerMinute, time.Minute)
	}
	return middleware.NamedRateLimitMiddleware("sms", float64(rl.SMSPerMinute)/60, rl.SMSPerMinute)
}
