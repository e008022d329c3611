package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/auth"
	"github.com/jhoicas/Trazabilidad-api/internal/application/certificate"
	applifecycle "github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/application/usecase"
	"github.com/jhoicas/Trazabilidad-api/internal/application/views"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	AccountUC   *usecase.AccountUseCase
	NetworkUC   *usecase.NetworkUseCase
	ViewUC      *views.ViewUseCase
	Lifecycle   *applifecycle.Reconciler
	Certificate *certificate.PDFUseCase
	Contracts   ContractBookReader
	Network     string // red esperada (hex)
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (Bearer Token + cuenta vigente)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), CurrentAccount(deps.AuthUC))

	admin := RequireRole(entity.RoleAdmin.String())
	producer := RequireRole(entity.RoleProducer.String())
	holder := RequireRole(entity.RoleSupplier.String(), entity.RoleConsumer.String())
	ledger := RequireContract(deps.Contracts, deps.Network)

	// Wallet y contratos
	chainHandler := NewChainHandler(deps.NetworkUC)
	protected.Get("/wallet/connect", chainHandler.Connect)
	protected.Get("/networks/contracts", chainHandler.Contracts)
	protected.Put("/networks/:networkId/contract", admin, chainHandler.SetContract)

	// Accounts (admin)
	accounts := protected.Group("/accounts", admin)
	accountHandler := NewAccountHandler(deps.AccountUC)
	accounts.Get("/", accountHandler.List)
	accounts.Post("/", accountHandler.Create)
	accounts.Put("/admin/address", accountHandler.SetAdminAddress)
	accounts.Delete("/:id", accountHandler.Delete)

	// Paneles por rol
	dashboardHandler := NewDashboardHandler(deps.ViewUC)
	protected.Get("/views/:role", dashboardHandler.View)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Lifecycle, deps.Certificate)
	products.Get("/", productHandler.List)
	products.Post("/", producer, productHandler.Propose)
	products.Get("/:id", productHandler.GetByID)
	products.Delete("/:id", producer, productHandler.Withdraw)
	products.Post("/:id/publish", producer, ledger, productHandler.Publish)
	products.Post("/:id/transfer", holder, ledger, productHandler.Transfer)
	products.Post("/:id/reconcile", productHandler.Reconcile)
	products.Get("/:id/history", ledger, productHandler.History)
	products.Get("/:id/certificate", ledger, productHandler.Certificate)

	// Lectura directa del ledger
	protected.Get("/chain/products/:onChainId", ledger, productHandler.Inspect)
}
