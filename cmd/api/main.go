package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/dailybakes-api/internal/application/analytics"
	"github.com/jhoicas/dailybakes-api/internal/application/auth"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/application/ledger"
	"github.com/jhoicas/dailybakes-api/internal/application/usecase"
	infraexcel "github.com/jhoicas/dailybakes-api/internal/infrastructure/excel"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/dailybakes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/dailybakes-api/internal/interfaces/http"
	"github.com/jhoicas/dailybakes-api/pkg/config"
	"github.com/jhoicas/dailybakes-api/pkg/logger"
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
		Str("invoice_tz", cfg.Invoice.TimeZone).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	loc, _ := cfg.Invoice.Location() // validada en config.Load
	m := metrics.New("dailybakes")

	ingredientRepo := postgres.NewIngredientRepository(pool)
	alertRepo := postgres.NewStockAlertRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.TxMaxRetries, m)

	// Núcleo: stock + alertas + numeración + motor de transacciones
	reconciler := inventory.NewAlertReconciler(m, log.Component("alerts"))
	stockSvc := inventory.NewStockService(reconciler)
	engine := ledger.NewEngine(
		txRunner, transactionRepo, stockSvc,
		ledger.NewInvoiceSequencer(loc),
		ledger.Config{PurchasePrefix: cfg.Invoice.PurchasePrefix, SalePrefix: cfg.Invoice.SalePrefix},
		m, log.Component("ledger"),
	)

	ingredientUC := inventory.NewIngredientUseCase(txRunner, ingredientRepo, alertRepo, reconciler)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo, transactionRepo)
	receiptUC := ledger.NewReceiptUseCase(engine, infrapdf.NewReceiptGenerator(cfg.App.StoreName))
	reportUC := analytics.NewReportUseCase(reportRepo, ingredientRepo, alertRepo, loc)
	exportUC := analytics.NewExportUseCase(reportUC, infraexcel.NewReportExporter())
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(httpRouter.RequestLogger(log.Component("http"), m))

	// Swagger UI en local: http://localhost:<port>/docs (el middleware exige que el archivo exista)
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Daily Bakes API",
		}))
	} else {
		log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		IngredientUC: ingredientUC,
		SupplierUC:   supplierUC,
		CustomerUC:   customerUC,
		Engine:       engine,
		Receipt:      receiptUC,
		Reports:      reportUC,
		Export:       exportUC,
		Metrics:      m.Handler(),
		JWTSecret:    cfg.JWT.Secret,
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
