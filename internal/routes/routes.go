package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/walletsvc/wallet_service/internal/auth"
	"github.com/walletsvc/wallet_service/internal/config"
	"github.com/walletsvc/wallet_service/internal/identity"
	"github.com/walletsvc/wallet_service/internal/metrics"
	"github.com/walletsvc/wallet_service/internal/middleware"
	"github.com/walletsvc/wallet_service/internal/notification"
	"github.com/walletsvc/wallet_service/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a database
// (development only) both stores fall back to memory.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", metrics.Handler())

	var (
		identityRepo identity.Repository
		walletRepo   wallet.Repository
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("no database configured, using in-memory stores")
		identityRepo = identity.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
	}

	var notifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
	if d.Cache != nil {
		notifier = notification.NewRedisNotifier(d.Cache, d.Cfg.NotifyChannel)
	}

	tokens := auth.NewTokenManager(d.Cfg.JWTSecret, d.Cfg.JWTIssuer, d.Cfg.JWTAudience, d.Cfg.TokenTTL)
	authSvc := auth.NewService(identity.NewService(identityRepo), tokens, d.Logger)
	walletSvc := wallet.NewService(walletRepo, notifier, d.Logger, wallet.WithMaxPerOwner(d.Cfg.MaxWalletsPerOwner))

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, auth.NewHandler(authSvc), middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit, d.Logger))
	RegisterWalletRoutes(api, wallet.NewHandler(walletSvc),
		middleware.JWTAuth(authSvc),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	)
	return nil
}
