package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/dailybakes-api/internal/application/analytics"
	"github.com/jhoicas/dailybakes-api/internal/application/auth"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/application/ledger"
	"github.com/jhoicas/dailybakes-api/internal/application/usecase"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	IngredientUC *inventory.IngredientUseCase
	SupplierUC   *usecase.SupplierUseCase
	CustomerUC   *usecase.CustomerUseCase
	Engine       *ledger.Engine
	Receipt      *ledger.ReceiptUseCase
	Reports      *analytics.ReportUseCase
	Export       *analytics.ExportUseCase
	Metrics      nethttp.Handler // nil = sin /metrics
	JWTSecret    string
}

// Router registra las rutas de la API con la matriz de roles.
func Router(app *fiber.App, deps RouterDeps) {
	const (
		admin     = entity.RoleAdmin
		bodeguero = entity.RoleBodeguero
		vendedor  = entity.RoleVendedor
	)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/profile", authHandler.Profile)

	users := protected.Group("/users", RequireRole(admin))
	users.Get("/", authHandler.ListUsers)
	users.Post("/", authHandler.Register)

	// Ingredientes y alertas: lectura para todos, escritura admin/bodeguero.
	inv := NewInventoryHandler(deps.IngredientUC)
	ingredients := protected.Group("/ingredients")
	ingredients.Get("/alerts", inv.ListAlerts)
	ingredients.Patch("/alerts/:id/resolve", RequireRole(admin, bodeguero), inv.ResolveAlert)
	ingredients.Get("/", inv.List)
	ingredients.Get("/:id", inv.GetByID)
	ingredients.Post("/", RequireRole(admin, bodeguero), inv.Create)
	ingredients.Put("/:id", RequireRole(admin, bodeguero), inv.Update)
	ingredients.Delete("/:id", RequireRole(admin, bodeguero), inv.Delete)

	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers := protected.Group("/suppliers", RequireRole(admin, bodeguero))
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", RequireRole(admin), supplierHandler.Delete)

	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := protected.Group("/customers", RequireRole(admin, vendedor))
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Post("/", customerHandler.Create)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", RequireRole(admin), customerHandler.Delete)

	purchaseHandler := NewPurchaseHandler(deps.Engine, deps.Receipt)
	purchases := protected.Group("/purchases", RequireRole(admin, bodeguero))
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Delete("/:id", RequireRole(admin), purchaseHandler.Delete)

	saleHandler := NewSaleHandler(deps.Engine, deps.Receipt)
	sales := protected.Group("/sales", RequireRole(admin, vendedor))
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Get("/:id/receipt", saleHandler.Receipt)
	sales.Post("/", saleHandler.Create)
	sales.Delete("/:id", RequireRole(admin), saleHandler.Delete)

	reportHandler := NewReportHandler(deps.Reports, deps.Export)
	reports := protected.Group("/reports")
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/stock", RequireRole(admin, bodeguero), reportHandler.Stock)
	reports.Get("/stock/export", RequireRole(admin, bodeguero), reportHandler.Export(analytics.ExportStock))
	reports.Get("/sales", RequireRole(admin), reportHandler.Sales)
	reports.Get("/sales/export", RequireRole(admin), reportHandler.Export(analytics.ExportSales))
	reports.Get("/purchases", RequireRole(admin), reportHandler.Purchases)
	reports.Get("/purchases/export", RequireRole(admin), reportHandler.Export(analytics.ExportPurchases))
	reports.Get("/profit", RequireRole(admin), reportHandler.Profit)
}
