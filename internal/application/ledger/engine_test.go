package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/application/ledger"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testNow = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

type recordingObserver struct{ events []string }

func (o *recordingObserver) ObserveTransaction(kind, op, outcome string, _ time.Duration) {
	o.events = append(o.events, kind+"/"+op+"/"+outcome)
}

type env struct {
	store  *memory.Store
	tx     *memory.TxRunner
	engine *ledger.Engine
	obs    *recordingObserver
}

func newEnv(t *testing.T, retries int) *env {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store, retries)
	obs := &recordingObserver{}
	stock := inventory.NewStockService(inventory.NewAlertReconciler(nil, nil))
	engine := ledger.NewEngine(
		tx,
		store.Repos().Transactions,
		stock,
		ledger.NewInvoiceSequencer(time.UTC),
		ledger.Config{PurchasePrefix: "PUR", SalePrefix: "SAL"},
		obs,
		nil,
	)
	engine.SetClock(func() time.Time { return testNow })

	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &entity.User{
		ID: "u-1", Email: "kasir@dailybakes.com", Name: "Kasir", Role: entity.RoleVendedor, IsActive: true,
	}))
	repos := store.Repos()
	require.NoError(t, repos.Suppliers.Create(ctx, &entity.Supplier{ID: "sup-1", Name: "PT Bogasari", IsActive: true}))
	require.NoError(t, repos.Suppliers.Create(ctx, &entity.Supplier{ID: "sup-off", Name: "Toko Lama", IsActive: false}))
	return &env{store: store, tx: tx, engine: engine, obs: obs}
}

func (e *env) seedIngredient(t *testing.T, id, stock, min, price string) {
	t.Helper()
	require.NoError(t, e.store.Repos().Ingredients.Create(context.Background(), &entity.Ingredient{
		ID: id, Name: "Ingrediente " + id, Unit: entity.UnitKG,
		StockQuantity: d(stock), MinStock: d(min), Price: d(price), IsActive: true,
	}))
}

func (e *env) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	ing, err := e.store.Repos().Ingredients.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, ing)
	return ing.StockQuantity
}

func (e *env) alerts(t *testing.T, resolved bool) []*entity.StockAlert {
	t.Helper()
	list, err := e.store.Repos().Alerts.List(context.Background(), &resolved)
	require.NoError(t, err)
	return list
}

func (e *env) count(t *testing.T, kind string) int {
	t.Helper()
	out, err := e.engine.List(context.Background(), kind, dto.TransactionListRequest{})
	require.NoError(t, err)
	return out.Meta.Total
}

func sale(ingredientID, qty string) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items:         []dto.SaleItemRequest{{IngredientID: ingredientID, Quantity: d(qty)}},
	}
}

func purchase(ingredientID, qty, price string) dto.CreatePurchaseRequest {
	return dto.CreatePurchaseRequest{
		SupplierID: "sup-1",
		Items:      []dto.PurchaseItemRequest{{IngredientID: ingredientID, Quantity: d(qty), PricePerUnit: d(price)}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de stock y alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_VentaAbreAlertaYCompraLaResuelve(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "100", "20", "15000")

	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "90"))
	require.NoError(t, err)
	assert.True(t, e.stock(t, "ing-1").Equal(d("10")))
	open := e.alerts(t, false)
	require.Len(t, open, 1)
	assert.Equal(t, "ing-1", open[0].IngredientID)
	assert.Contains(t, open[0].Message, "quedan 10 KG")
	assert.Equal(t, "SAL/20260105/0001", s.InvoiceNumber)

	_, err = e.engine.CreatePurchase(ctx, "u-1", purchase("ing-1", "50", "12000"))
	require.NoError(t, err)
	assert.True(t, e.stock(t, "ing-1").Equal(d("60")))
	assert.Empty(t, e.alerts(t, false))
	resolved := e.alerts(t, true)
	require.Len(t, resolved, 1)
	assert.True(t, resolved[0].IsResolved)
	assert.NotNil(t, resolved[0].ResolvedAt)
}

func TestEngine_EliminarVentaRestauraStock(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "15", "2", "15000")

	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "5"))
	require.NoError(t, err)
	require.True(t, e.stock(t, "ing-1").Equal(d("10")))

	require.NoError(t, e.engine.Remove(ctx, entity.TransactionSale, s.ID))
	assert.True(t, e.stock(t, "ing-1").Equal(d("15")))

	_, err = e.engine.Get(ctx, entity.TransactionSale, s.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, e.count(t, entity.TransactionSale))
}

func TestEngine_EliminarCompraConStockConsumidoFalla(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "0", "0", "15000")

	p, err := e.engine.CreatePurchase(ctx, "u-1", purchase("ing-1", "10", "12000"))
	require.NoError(t, err)
	_, err = e.engine.CreateSale(ctx, "u-1", sale("ing-1", "8"))
	require.NoError(t, err)

	err = e.engine.Remove(ctx, entity.TransactionPurchase, p.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, e.stock(t, "ing-1").Equal(d("2")), "el stock no debe cambiar")
	_, err = e.engine.Get(ctx, entity.TransactionPurchase, p.ID)
	assert.NoError(t, err, "la compra debe seguir existiendo")
}

func TestEngine_EliminarInexistente(t *testing.T) {
	e := newEnv(t, 0)
	err := e.engine.Remove(context.Background(), entity.TransactionSale, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, e.obs.events, "SALE/remove/not_found")
}

func TestEngine_EliminarConTipoEquivocado(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "10", "0", "100")
	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "1"))
	require.NoError(t, err)

	err = e.engine.Remove(ctx, entity.TransactionPurchase, s.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, e.stock(t, "ing-1").Equal(d("9")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales y precios
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_DescuentoPorMembresia(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "50", "0", "100")
	end := testNow.AddDate(0, 1, 0)
	require.NoError(t, e.store.Repos().Customers.Create(ctx, &entity.Customer{
		ID: "cus-1", Name: "Budi", Email: "budi@example.com",
		MembershipType: entity.MembershipMonthly, MembershipEnd: &end,
		Discount: d("5"), IsActive: true,
	}))

	in := sale("ing-1", "10")
	in.CustomerID = "cus-1"
	s, err := e.engine.CreateSale(ctx, "u-1", in)
	require.NoError(t, err)

	assert.True(t, s.Subtotal.Equal(d("1000")))
	assert.True(t, s.Discount.Equal(d("50")))
	assert.True(t, s.TotalAmount.Equal(d("950")), "total = %s", s.TotalAmount)
	require.NotNil(t, s.Customer)
	assert.Equal(t, "Budi", s.Customer.Name)
}

func TestEngine_MembresiaVencidaSinDescuento(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "50", "0", "100")
	end := testNow.Add(-time.Hour)
	require.NoError(t, e.store.Repos().Customers.Create(ctx, &entity.Customer{
		ID: "cus-1", Name: "Budi", MembershipType: entity.MembershipYearly, MembershipEnd: &end,
		Discount: d("5"), IsActive: true,
	}))

	in := sale("ing-1", "10")
	in.CustomerID = "cus-1"
	s, err := e.engine.CreateSale(ctx, "u-1", in)
	require.NoError(t, err)
	assert.True(t, s.Discount.IsZero())
	assert.True(t, s.TotalAmount.Equal(d("1000")))
}

func TestEngine_PrecioCompraDelCallerYVentaDelIngrediente(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "10", "0", "15000")

	p, err := e.engine.CreatePurchase(ctx, "u-1", purchase("ing-1", "2.5", "12000"))
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.True(t, p.Items[0].PricePerUnit.Equal(d("12000")))
	assert.True(t, p.Items[0].Subtotal.Equal(d("30000")))
	assert.True(t, p.TotalAmount.Equal(d("30000")))
	assert.True(t, p.Discount.IsZero())
	require.NotNil(t, p.Supplier)
	assert.Equal(t, "PT Bogasari", p.Supplier.Name)
	require.NotNil(t, p.User)
	assert.Equal(t, "Kasir", p.User.Name)
	assert.Equal(t, "Ingrediente ing-1", p.Items[0].IngredientName)

	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "2"))
	require.NoError(t, err)
	assert.True(t, s.Items[0].PricePerUnit.Equal(d("15000")))
	assert.True(t, s.TotalAmount.Equal(d("30000")))
	assert.True(t, e.stock(t, "ing-1").Equal(d("10.5")))
}

func TestEngine_DecimalesFueraDeEscalaSeRechazan(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "10", "0", "100")

	_, err := e.engine.CreatePurchase(ctx, "u-1", purchase("ing-1", "1.0004", "10"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
	_, err = e.engine.CreatePurchase(ctx, "u-1", purchase("ing-1", "1", "10.005"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
	_, err = e.engine.CreateSale(ctx, "u-1", sale("ing-1", "0.0004"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
	assert.True(t, e.stock(t, "ing-1").Equal(d("10")))
	assert.Equal(t, 0, e.count(t, entity.TransactionPurchase))
	assert.Equal(t, 0, e.count(t, entity.TransactionSale))

	// En escala, el subtotal guardado es exactamente cantidad × precio.
	p, err := e.engine.CreatePurchase(ctx, "u-1", purchase("ing-1", "1.250", "10.05"))
	require.NoError(t, err)
	line := p.Items[0]
	assert.True(t, line.Subtotal.Equal(line.Quantity.Mul(line.PricePerUnit)))
	assert.True(t, p.TotalAmount.Equal(d("12.5625")))
	assert.True(t, e.stock(t, "ing-1").Equal(d("11.25")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones (sin efectos)
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_VentaInsuficienteAgregadaNoCambiaNada(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "10", "2", "100")

	in := dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentQRIS,
		Items: []dto.SaleItemRequest{
			{IngredientID: "ing-1", Quantity: d("6")},
			{IngredientID: "ing-1", Quantity: d("6")},
		},
	}
	_, err := e.engine.CreateSale(ctx, "u-1", in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, e.stock(t, "ing-1").Equal(d("10")))
	assert.Equal(t, 0, e.count(t, entity.TransactionSale))
	assert.Empty(t, e.alerts(t, false))

	// El consecutivo reservado se devolvió con el Rollback.
	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "6"))
	require.NoError(t, err)
	assert.Equal(t, "SAL/20260105/0001", s.InvoiceNumber)
}

func TestEngine_ErroresDeValidacion(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "10", "0", "100")
	require.NoError(t, e.store.Repos().Ingredients.Create(ctx, &entity.Ingredient{
		ID: "ing-off", Name: "Ragi", Unit: entity.UnitGram, IsActive: false,
	}))
	require.NoError(t, e.store.Repos().Customers.Create(ctx, &entity.Customer{
		ID: "cus-off", Name: "Inactivo", IsActive: false,
	}))

	withCustomer := sale("ing-1", "1")
	withCustomer.CustomerID = "cus-off"
	unknownCustomer := sale("ing-1", "1")
	unknownCustomer.CustomerID = "cus-x"
	badPayment := sale("ing-1", "1")
	badPayment.PaymentMethod = "BITCOIN"
	inactiveSupplier := purchase("ing-1", "1", "100")
	inactiveSupplier.SupplierID = "sup-off"
	unknownSupplier := purchase("ing-1", "1", "100")
	unknownSupplier.SupplierID = "sup-x"
	negativePrice := purchase("ing-1", "1", "-1")

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"proveedor inactivo", func() error { _, err := e.engine.CreatePurchase(ctx, "u-1", inactiveSupplier); return err }, domain.ErrInactive},
		{"proveedor inexistente", func() error { _, err := e.engine.CreatePurchase(ctx, "u-1", unknownSupplier); return err }, domain.ErrNotFound},
		{"ingrediente inexistente", func() error { _, err := e.engine.CreatePurchase(ctx, "u-1", purchase("ing-x", "1", "100")); return err }, domain.ErrNotFound},
		{"ingrediente inactivo", func() error { _, err := e.engine.CreateSale(ctx, "u-1", sale("ing-off", "1")); return err }, domain.ErrInactive},
		{"cliente inactivo", func() error { _, err := e.engine.CreateSale(ctx, "u-1", withCustomer); return err }, domain.ErrInactive},
		{"cliente inexistente", func() error { _, err := e.engine.CreateSale(ctx, "u-1", unknownCustomer); return err }, domain.ErrNotFound},
		{"método de pago", func() error { _, err := e.engine.CreateSale(ctx, "u-1", badPayment); return err }, domain.ErrInvalidInput},
		{"cantidad cero", func() error { _, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "0")); return err }, domain.ErrInvalidInput},
		{"precio negativo", func() error { _, err := e.engine.CreatePurchase(ctx, "u-1", negativePrice); return err }, domain.ErrInvalidInput},
		{"sin líneas", func() error {
			_, err := e.engine.CreateSale(ctx, "u-1", dto.CreateSaleRequest{PaymentMethod: entity.PaymentCash})
			return err
		}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
	assert.True(t, e.stock(t, "ing-1").Equal(d("10")))
	assert.Equal(t, 0, e.count(t, entity.TransactionSale))
	assert.Equal(t, 0, e.count(t, entity.TransactionPurchase))
}

// ──────────────────────────────────────────────────────────────────────────────
// Numeración, rollback y reintentos
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_NumeracionConsecutivaPorTipo(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "100", "0", "100")

	var numbers []string
	for i := 0; i < 3; i++ {
		p, err := e.engine.CreatePurchase(ctx, "u-1", purchase("ing-1", "1", "90"))
		require.NoError(t, err)
		numbers = append(numbers, p.InvoiceNumber)
	}
	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"PUR/20260105/0001", "PUR/20260105/0002", "PUR/20260105/0003"}, numbers)
	assert.Equal(t, "SAL/20260105/0001", s.InvoiceNumber)
}

func TestEngine_EliminarNoReciclaNumeros(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "100", "0", "100")

	first, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "1"))
	require.NoError(t, err)
	require.NoError(t, e.engine.Remove(ctx, entity.TransactionSale, first.ID))

	next, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "1"))
	require.NoError(t, err)
	assert.Equal(t, "SAL/20260105/0002", next.InvoiceNumber)
}

func TestEngine_CambioDeDiaReiniciaConsecutivo(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "100", "0", "100")

	_, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "1"))
	require.NoError(t, err)
	e.engine.SetClock(func() time.Time { return testNow.AddDate(0, 0, 1) })
	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "1"))
	require.NoError(t, err)
	assert.Equal(t, "SAL/20260106/0001", s.InvoiceNumber)
}

func TestEngine_FalloTardioRevierteTodo(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "100", "20", "100")
	e.store.FailOn("ingredients.update_stock", errors.New("disco lleno"))

	_, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "90"))
	require.Error(t, err)
	assert.True(t, e.stock(t, "ing-1").Equal(d("100")))
	assert.Equal(t, 0, e.count(t, entity.TransactionSale))
	assert.Empty(t, e.alerts(t, false))
	assert.Contains(t, e.obs.events, "SALE/create/error")

	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "90"))
	require.NoError(t, err)
	assert.Equal(t, "SAL/20260105/0001", s.InvoiceNumber, "sin huecos tras el rollback")
}

func TestEngine_ReintentoPorSerializacionReconstruyeEstado(t *testing.T) {
	e := newEnv(t, 2)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "100", "0", "100")
	e.store.FailOn("commit", memory.ErrSerialization)

	s, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "30"))
	require.NoError(t, err)
	assert.Equal(t, 2, e.tx.Attempts)
	assert.Equal(t, "SAL/20260105/0001", s.InvoiceNumber)
	assert.True(t, e.stock(t, "ing-1").Equal(d("70")), "el stock se descuenta una sola vez")
	assert.Equal(t, 1, e.count(t, entity.TransactionSale))
	assert.Equal(t, []string{"SALE/create/ok"}, e.obs.events)
}

func TestEngine_ErrorDeNegocioNoSeReintenta(t *testing.T) {
	e := newEnv(t, 3)
	e.seedIngredient(t, "ing-1", "1", "0", "100")

	_, err := e.engine.CreateSale(context.Background(), "u-1", sale("ing-1", "5"))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, e.tx.Attempts)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_ListPaginadoYFiltrado(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.seedIngredient(t, "ing-1", "100", "0", "100")
	require.NoError(t, e.store.Repos().Customers.Create(ctx, &entity.Customer{ID: "cus-1", Name: "Budi", IsActive: true}))

	for i := 0; i < 3; i++ {
		_, err := e.engine.CreateSale(ctx, "u-1", sale("ing-1", "1"))
		require.NoError(t, err)
	}
	withCustomer := sale("ing-1", "1")
	withCustomer.CustomerID = "cus-1"
	_, err := e.engine.CreateSale(ctx, "u-1", withCustomer)
	require.NoError(t, err)

	out, err := e.engine.List(ctx, entity.TransactionSale, dto.TransactionListRequest{
		PageRequest: dto.PageRequest{Page: 1, Limit: 3},
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)
	assert.Equal(t, dto.PageMeta{Total: 4, Page: 1, Limit: 3, TotalPages: 2}, out.Meta)

	out, err = e.engine.List(ctx, entity.TransactionSale, dto.TransactionListRequest{CounterpartyID: "cus-1"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "SAL/20260105/0004", out.Items[0].InvoiceNumber)

	out, err = e.engine.List(ctx, entity.TransactionSale, dto.TransactionListRequest{StartDate: "2026-01-05", EndDate: "2026-01-05"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Meta.Total, "end_date es inclusiva")

	out, err = e.engine.List(ctx, entity.TransactionSale, dto.TransactionListRequest{StartDate: "2026-01-06"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Meta.Total)

	_, err = e.engine.List(ctx, entity.TransactionSale, dto.TransactionListRequest{StartDate: "2026-01-07", EndDate: "2026-01-05"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
