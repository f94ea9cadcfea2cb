// seed aplica el esquema y carga los datos de ejemplo de la panadería: tres usuarios (uno por rol),
// dos proveedores, dos clientes y los ingredientes básicos. Es idempotente: lo que ya existe se omite.
//
// Uso: go run ./cmd/seed [password]
// Sin argumento todos los usuarios quedan con password123.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/application/auth"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/application/usecase"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/dailybakes-api/pkg/config"
	"github.com/jhoicas/dailybakes-api/pkg/logger"
	"github.com/shopspring/decimal"
)

func main() {
	password := "password123"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	s := seeder{
		log: log,
		auth: auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
		}),
		suppliers: usecase.NewSupplierUseCase(postgres.NewSupplierRepository(pool)),
		customers: usecase.NewCustomerUseCase(
			postgres.NewCustomerRepository(pool), postgres.NewTransactionRepository(pool),
		),
		ingredients: inventory.NewIngredientUseCase(
			postgres.NewTxRunner(pool, cfg.DB.TxMaxRetries, nil),
			postgres.NewIngredientRepository(pool),
			postgres.NewStockAlertRepository(pool),
			inventory.NewAlertReconciler(nil, log),
		),
	}
	for _, step := range []func(context.Context, string) error{s.users, s.parties, s.stock} {
		if err := step(ctx, password); err != nil {
			log.Fatal().Err(err).Msg("seed interrumpido")
		}
	}
	log.Info().
		Strs("users", []string{"admin@dailybakes.com", "kasir@dailybakes.com", "stock@dailybakes.com"}).
		Msg("seed completado")
}

type seeder struct {
	log         *logger.Logger
	auth        *auth.AuthUseCase
	suppliers   *usecase.SupplierUseCase
	customers   *usecase.CustomerUseCase
	ingredients *inventory.IngredientUseCase
}

func (s seeder) users(ctx context.Context, password string) error {
	users := []dto.CreateUserRequest{
		{Email: "admin@dailybakes.com", Name: "Admin dailybakes", Role: entity.RoleAdmin},
		{Email: "kasir@dailybakes.com", Name: "Kasir 1", Role: entity.RoleVendedor},
		{Email: "stock@dailybakes.com", Name: "Stock Master", Role: entity.RoleBodeguero},
	}
	for _, u := range users {
		u.Password = password
		if _, err := s.auth.RegisterUser(ctx, u); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				s.log.Debug().Str("email", u.Email).Msg("usuario ya existe")
				continue
			}
			return err
		}
		s.log.Info().Str("email", u.Email).Str("role", u.Role).Msg("usuario creado")
	}
	return nil
}

func (s seeder) parties(ctx context.Context, _ string) error {
	suppliers := []dto.CreateSupplierRequest{
		{
			Name: "PT Tepung Nusantara", Contact: "Budi Santoso", Phone: "08123456789",
			Email: "budi@tepungnusantara.com", Address: "Jl. Soekarno Hatta No. 111, Bandung",
		},
		{
			Name: "CV Gula Indonesia Sejahtera", Contact: "Siti Rahayu", Phone: "08198765432",
			Email: "siti@gulaid.com", Address: "Jl. Turangga No. 45, Bandung",
		},
	}
	for _, in := range suppliers {
		existing, err := s.suppliers.List(ctx, dto.SearchRequest{Search: in.Name})
		if err != nil {
			return err
		}
		if existing.Meta.Total > 0 {
			continue
		}
		if _, err := s.suppliers.Create(ctx, in); err != nil {
			return err
		}
		s.log.Info().Str("name", in.Name).Msg("proveedor creado")
	}

	start := time.Now()
	end := start.AddDate(0, 0, 30)
	customers := []dto.CreateCustomerRequest{
		{
			Name: "Toko Kue Melati", Phone: "08111222333", Email: "melati@tokokuue.com",
			Address: "Jl. Bunga No. 10, Bandung", MembershipType: entity.MembershipMonthly,
			MembershipStart: &start, MembershipEnd: &end, Discount: decimal.NewFromInt(5),
		},
		{
			Name: "Bakery Mawar", Phone: "08222333444", Address: "Jl. Rose No. 20, Bandung",
			MembershipType: entity.MembershipNone,
		},
	}
	for _, in := range customers {
		existing, err := s.customers.List(ctx, dto.SearchRequest{Search: in.Name})
		if err != nil {
			return err
		}
		if existing.Meta.Total > 0 {
			continue
		}
		if _, err := s.customers.Create(ctx, in); err != nil {
			return err
		}
		s.log.Info().Str("name", in.Name).Msg("cliente creado")
	}
	return nil
}

func (s seeder) stock(ctx context.Context, _ string) error {
	ingredients := []dto.CreateIngredientRequest{
		{Name: "Tepung Terigu", Description: "Tepung terigu protein tinggi", Unit: entity.UnitKG, StockQuantity: decimal.NewFromInt(100), MinStock: decimal.NewFromInt(20), Price: decimal.NewFromInt(15000)},
		{Name: "Gula Pasir", Description: "Gula pasir putih", Unit: entity.UnitKG, StockQuantity: decimal.NewFromInt(50), MinStock: decimal.NewFromInt(10), Price: decimal.NewFromInt(18000)},
		{Name: "Mentega", Description: "Mentega tawar", Unit: entity.UnitKG, StockQuantity: decimal.NewFromInt(30), MinStock: decimal.NewFromInt(5), Price: decimal.NewFromInt(45000)},
		{Name: "Telur", Description: "Telur ayam segar", Unit: entity.UnitPCS, StockQuantity: decimal.NewFromInt(200), MinStock: decimal.NewFromInt(50), Price: decimal.NewFromInt(2500)},
		{Name: "Susu Cair", Description: "Susu full cream", Unit: entity.UnitLiter, StockQuantity: decimal.NewFromInt(40), MinStock: decimal.NewFromInt(10), Price: decimal.NewFromInt(25000)},
	}
	for _, in := range ingredients {
		existing, err := s.ingredients.List(ctx, dto.IngredientListRequest{Search: in.Name})
		if err != nil {
			return err
		}
		if existing.Meta.Total > 0 {
			continue
		}
		if _, err := s.ingredients.Create(ctx, in); err != nil {
			return err
		}
		s.log.Info().Str("name", in.Name).Msg("ingrediente creado")
	}
	return nil
}
