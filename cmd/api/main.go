package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jetpos/jetpos-api/internal/application/auth"
	"github.com/jetpos/jetpos-api/internal/application/billing"
	"github.com/jetpos/jetpos-api/internal/infrastructure/postgres"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
	httpRouter "github.com/jetpos/jetpos-api/internal/interfaces/http"
	"github.com/jetpos/jetpos-api/pkg/config"
	"github.com/jetpos/jetpos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	tenantRepo := postgres.NewTenantRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)

	gatewayClient := qnb.NewClient(log)
	fallback := qnb.Config{
		VKN:            cfg.QNB.VKN,
		Password:       cfg.QNB.Password,
		EarsivUsername: cfg.QNB.EarsivUsername,
		ErpCode:        cfg.QNB.ErpCode,
	}

	sendUC := billing.NewSendInvoiceUseCase(
		invoiceRepo, customerRepo, tenantRepo,
		gatewayClient, fallback, cfg.QNB.IsTest,
		cfg.QNB.SupplierName, log,
	)
	statusUC := billing.NewCheckStatusUseCase(
		invoiceRepo, tenantRepo,
		gatewayClient, fallback, cfg.QNB.IsTest, log,
	)
	queryUC := billing.NewInvoiceQueryUseCase(invoiceRepo)
	customerUC := billing.NewCustomerUseCase(customerRepo)
	diagnosticsUC := billing.NewDiagnosticsUseCase(tenantRepo, gatewayClient, fallback, cfg.QNB.IsTest)
	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CustomerUC:  customerUC,
		SendUC:      sendUC,
		StatusUC:    statusUC,
		QueryUC:     queryUC,
		Diagnostics: diagnosticsUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
