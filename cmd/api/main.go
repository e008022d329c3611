package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Trazabilidad-api/internal/application/auth"
	"github.com/jhoicas/Trazabilidad-api/internal/application/certificate"
	applifecycle "github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/application/usecase"
	"github.com/jhoicas/Trazabilidad-api/internal/application/views"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/ethereum"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/localstore"
	infrapdf "github.com/jhoicas/Trazabilidad-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/Trazabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("namespace", cfg.Store.Namespace).
		Str("network", cfg.Chain.Network).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	storage, err := localstore.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén local")
	}
	defer storage.Close()

	store, err := localstore.New(storage, localstore.Options{
		Namespace:     cfg.Store.Namespace,
		AdminPassword: cfg.App.AdminPassword,
		SeedNetwork:   cfg.Chain.Network,
		SeedContract:  cfg.Chain.ContractAddress,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén de registros")
	}

	// Ledger: una conexión por red, abierta al primer uso.
	networks, err := ethereum.NewNetworks(cfg.Chain.RPCURLs, cfg.Chain.Network, ethereum.DialLedger)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar redes del ledger")
	}
	defer networks.Close()

	var approver ethereum.Approver = ethereum.NewAutoApprover(log)
	if cfg.Chain.RequireConfirmation {
		approver = ethereum.NewContextApprover(log)
	}
	gateway := ethereum.NewGateway(networks, store, ethereum.AccountKeys{}, approver, log)

	reconciler := applifecycle.New(store, gateway, cfg.Chain.Network, log)
	authUC := auth.NewAuthUseCase(store, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	accountUC := usecase.NewAccountUseCase(store, ethereum.NewAccountKey, 0, log)
	networkUC := usecase.NewNetworkUseCase(store, gateway, cfg.Chain.Network, log)
	viewUC := views.NewViewUseCase(store)

	// PDF: certificado de procedencia con QR del producto en el ledger
	pdfGenerator := infrapdf.NewMarotoCertificateGenerator()
	certificateUC := certificate.NewPDFUseCase(store, gateway, cfg.Chain.Network, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // espera de recibos del ledger
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Trazabilidad API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "network": cfg.Chain.Network})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		AccountUC:   accountUC,
		NetworkUC:   networkUC,
		ViewUC:      viewUC,
		Lifecycle:   reconciler,
		Certificate: certificateUC,
		Contracts:   store,
		Network:     cfg.Chain.Network,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
