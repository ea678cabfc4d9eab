package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/z-cash/z_cash/internal/auth"
	"github.com/z-cash/z_cash/internal/config"
	"github.com/z-cash/z_cash/internal/identity"
	"github.com/z-cash/z_cash/internal/ledger"
	"github.com/z-cash/z_cash/internal/middleware"
	"github.com/z-cash/z_cash/internal/notification"
	"github.com/z-cash/z_cash/internal/payments"
	"github.com/z-cash/z_cash/internal/transactions"
	"github.com/z-cash/z_cash/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Outside development
// both Postgres and Redis are mandatory; the dev profile falls back to the
// in-memory backends.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
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
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Ledger backends.
	var (
		store ledger.AccountStore
		txlog ledger.TransactionLog
	)
	if d.DB != nil {
		pg := ledger.NewPostgresStore(d.DB)
		store, txlog = pg, pg
	} else {
		store, txlog = ledger.NewMemoryStore(), ledger.NewMemoryLog()
	}

	// A crash mid-commit may leave PENDING records; resolve them before
	// serving traffic.
	recoverCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	swept, err := txlog.FailPending(recoverCtx)
	if err != nil {
		return fmt.Errorf("recover pending transactions: %w", err)
	}
	if swept > 0 {
		d.Logger.Warn("failed stale pending transactions", "count", swept)
	}

	engine := ledger.NewEngine(store, txlog, d.Cfg.CommitRetries, d.Cfg.LockTimeout)

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo, store, d.Cfg.StartingBalance)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	authHandler := auth.NewHandler(identitySvc, authSvc)

	notifier := notification.NewLoggerNotifier(d.Logger)
	walletHandler := wallet.NewHandler(wallet.NewService(engine, store))
	paymentHandler := payments.NewHandler(payments.NewService(engine, identityRepo, notifier))
	txHandler := transactions.NewHandler(transactions.NewService(txlog))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	jwtmw := middleware.JWTAuth(d.Cfg, identityRepo)
	protected := api.Group("", jwtmw)
	RegisterUserRoutes(protected, identitySvc)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterTransactionRoutes(protected, paymentHandler, txHandler)

	return nil
}
