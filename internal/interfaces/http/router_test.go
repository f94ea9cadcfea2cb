package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dailybakes-api/internal/application/analytics"
	"github.com/jhoicas/dailybakes-api/internal/application/auth"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/application/ledger"
	"github.com/jhoicas/dailybakes-api/internal/application/usecase"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/excel"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/memory"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/dailybakes-api/internal/interfaces/http"
	"github.com/jhoicas/dailybakes-api/pkg/logger"
	pkgjwt "github.com/jhoicas/dailybakes-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación completa sobre repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeReceipts struct{}

func (fakeReceipts) GenerateReceipt(_ context.Context, t *entity.Transaction) ([]byte, error) {
	return []byte("%PDF-1.4 " + t.InvoiceNumber), nil
}

type api struct {
	app    *fiber.App
	authUC *auth.AuthUseCase
	tokens map[string]string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	tx := memory.NewTxRunner(store, 0)
	m := metrics.New("dailybakes")

	reconciler := inventory.NewAlertReconciler(m, nil)
	engine := ledger.NewEngine(
		tx, repos.Transactions,
		inventory.NewStockService(reconciler),
		ledger.NewInvoiceSequencer(time.UTC),
		ledger.Config{PurchasePrefix: "PUR", SalePrefix: "SAL"},
		m, nil,
	)
	reports := analytics.NewReportUseCase(nil, repos.Ingredients, repos.Alerts, time.UTC)
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer})

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(logger.Nop(), m))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       authUC,
		IngredientUC: inventory.NewIngredientUseCase(tx, repos.Ingredients, repos.Alerts, reconciler),
		SupplierUC:   usecase.NewSupplierUseCase(repos.Suppliers),
		CustomerUC:   usecase.NewCustomerUseCase(repos.Customers, repos.Transactions),
		Engine:       engine,
		Receipt:      ledger.NewReceiptUseCase(engine, fakeReceipts{}),
		Reports:      reports,
		Export:       analytics.NewExportUseCase(reports, excel.NewReportExporter()),
		Metrics:      m.Handler(),
		JWTSecret:    testJWTSecret,
	})

	ctx := context.Background()
	tokens := map[string]string{}
	for _, role := range entity.Roles {
		id := "u-" + role
		require.NoError(t, store.Users().Create(ctx, &entity.User{
			ID: id, Email: role + "@dailybakes.com", Name: role, Role: role, IsActive: true,
		}))
		tok, err := pkgjwt.Generate(testJWTSecret, id, role, testIssuer, testExpMin)
		require.NoError(t, err)
		tokens[role] = "Bearer " + tok
	}
	require.NoError(t, repos.Suppliers.Create(ctx, &entity.Supplier{ID: "sup-1", Name: "PT Bogasari", IsActive: true}))
	require.NoError(t, repos.Suppliers.Create(ctx, &entity.Supplier{ID: "sup-off", Name: "Toko Lama", IsActive: false}))
	return &api{app: app, authUC: authUC, tokens: tokens}
}

// call ejecuta la petición; body puede ser nil, string (JSON crudo) o cualquier valor serializable.
func (a *api) call(t *testing.T, method, path, role string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", a.tokens[role])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode(t *testing.T, raw []byte, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, raw, &e)
	return e.Code
}

func (a *api) createIngredient(t *testing.T, name string, stock, min, price float64) dto.IngredientResponse {
	t.Helper()
	resp, raw := a.call(t, http.MethodPost, "/api/ingredients", entity.RoleBodeguero, map[string]interface{}{
		"name": name, "unit": "KG", "stock_quantity": stock, "min_stock": min, "price": price,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var out dto.IngredientResponse
	decode(t, raw, &out)
	return out
}

func (a *api) stockOf(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	resp, raw := a.call(t, http.MethodGet, "/api/ingredients/"+id, entity.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.IngredientResponse
	decode(t, raw, &out)
	return out.StockQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_LoginYPerfil(t *testing.T) {
	a := newAPI(t)
	_, err := a.authUC.RegisterUser(context.Background(), dto.CreateUserRequest{
		Email: "kasir@dailybakes.com", Password: "kasir12345", Name: "Kasir", Role: entity.RoleVendedor,
	})
	require.NoError(t, err)

	resp, raw := a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "kasir@dailybakes.com", "password": "kasir12345",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var login dto.LoginResponse
	decode(t, raw, &login)
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	profileResp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer profileResp.Body.Close()
	assert.Equal(t, http.StatusOK, profileResp.StatusCode)
	var me dto.UserResponse
	require.NoError(t, json.NewDecoder(profileResp.Body).Decode(&me))
	assert.Equal(t, "kasir@dailybakes.com", me.Email)
	assert.Equal(t, entity.RoleVendedor, me.Role)
}

func TestRouter_LoginPasswordIncorrecto(t *testing.T) {
	a := newAPI(t)
	_, err := a.authUC.RegisterUser(context.Background(), dto.CreateUserRequest{
		Email: "admin@toko.com", Password: "admin12345", Name: "Admin", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)

	resp, raw := a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@toko.com", "password": "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, raw))
}

func TestRouter_AltaDeUsuarioSoloAdmin(t *testing.T) {
	a := newAPI(t)
	body := map[string]string{"email": "nuevo@dailybakes.com", "password": "clave12345", "name": "Nuevo", "role": "bodeguero"}

	resp, _ := a.call(t, http.MethodPost, "/api/users", entity.RoleVendedor, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := a.call(t, http.MethodPost, "/api/users", entity.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = a.call(t, http.MethodPost, "/api/users", entity.RoleAdmin, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// Matriz de roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_MatrizDeRoles(t *testing.T) {
	a := newAPI(t)
	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"sin token", http.MethodGet, "/api/ingredients", "", http.StatusUnauthorized},
		{"vendedor lee ingredientes", http.MethodGet, "/api/ingredients", entity.RoleVendedor, http.StatusOK},
		{"vendedor no crea ingredientes", http.MethodPost, "/api/ingredients", entity.RoleVendedor, http.StatusForbidden},
		{"vendedor no ve compras", http.MethodGet, "/api/purchases", entity.RoleVendedor, http.StatusForbidden},
		{"bodeguero no ve ventas", http.MethodGet, "/api/sales", entity.RoleBodeguero, http.StatusForbidden},
		{"bodeguero no ve clientes", http.MethodGet, "/api/customers", entity.RoleBodeguero, http.StatusForbidden},
		{"vendedor no ve proveedores", http.MethodGet, "/api/suppliers", entity.RoleVendedor, http.StatusForbidden},
		{"bodeguero no elimina compras", http.MethodDelete, "/api/purchases/x", entity.RoleBodeguero, http.StatusForbidden},
		{"vendedor no elimina ventas", http.MethodDelete, "/api/sales/x", entity.RoleVendedor, http.StatusForbidden},
		{"bodeguero ve reporte de stock", http.MethodGet, "/api/reports/stock", entity.RoleBodeguero, http.StatusOK},
		{"vendedor no ve reporte de stock", http.MethodGet, "/api/reports/stock", entity.RoleVendedor, http.StatusForbidden},
		{"bodeguero no ve utilidad", http.MethodGet, "/api/reports/profit", entity.RoleBodeguero, http.StatusForbidden},
		{"bodeguero no lista usuarios", http.MethodGet, "/api/users", entity.RoleBodeguero, http.StatusForbidden},
		{"admin lista usuarios", http.MethodGet, "/api/users", entity.RoleAdmin, http.StatusOK},
		{"admin ve ventas", http.MethodGet, "/api/sales", entity.RoleAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := a.call(t, tc.method, tc.path, tc.role, nil)
			assert.Equal(t, tc.want, resp.StatusCode, string(raw))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras, ventas y alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_FlujoCompraVentaYReverso(t *testing.T) {
	a := newAPI(t)
	ing := a.createIngredient(t, "Harina", 0, 5, 15000)
	assert.True(t, ing.IsLowStock)

	// stock inicial 0 <= mínimo 5: alerta abierta
	resp, raw := a.call(t, http.MethodGet, "/api/ingredients/alerts", entity.RoleBodeguero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var alerts struct {
		Total  int                      `json:"total"`
		Alerts []dto.StockAlertResponse `json:"alerts"`
	}
	decode(t, raw, &alerts)
	require.Equal(t, 1, alerts.Total)
	assert.Equal(t, ing.ID, alerts.Alerts[0].IngredientID)

	resp, raw = a.call(t, http.MethodPost, "/api/purchases", entity.RoleBodeguero, map[string]interface{}{
		"supplier_id": "sup-1",
		"items":       []map[string]interface{}{{"ingredient_id": ing.ID, "quantity": 10, "price_per_unit": 12000}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var pur dto.TransactionResponse
	decode(t, raw, &pur)
	assert.True(t, strings.HasPrefix(pur.InvoiceNumber, "PUR/"), pur.InvoiceNumber)
	assert.True(t, strings.HasSuffix(pur.InvoiceNumber, "/0001"), pur.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(120000).Equal(pur.TotalAmount))
	assert.Equal(t, "PT Bogasari", pur.Supplier.Name)

	// 10 > 5: la alerta se resolvió sola
	resp, raw = a.call(t, http.MethodGet, "/api/ingredients/alerts", entity.RoleBodeguero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, raw, &alerts)
	assert.Equal(t, 0, alerts.Total)

	resp, raw = a.call(t, http.MethodPost, "/api/sales", entity.RoleVendedor, map[string]interface{}{
		"payment_method": "CASH",
		"items":          []map[string]interface{}{{"ingredient_id": ing.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var sale dto.TransactionResponse
	decode(t, raw, &sale)
	assert.True(t, strings.HasPrefix(sale.InvoiceNumber, "SAL/"))
	assert.True(t, decimal.NewFromInt(60000).Equal(sale.TotalAmount), "la venta usa el precio de lista")
	assert.True(t, decimal.NewFromInt(6).Equal(a.stockOf(t, ing.ID)))

	resp, raw = a.call(t, http.MethodPost, "/api/sales", entity.RoleVendedor, map[string]interface{}{
		"payment_method": "QRIS",
		"items":          []map[string]interface{}{{"ingredient_id": ing.ID, "quantity": 100}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, raw))
	assert.True(t, decimal.NewFromInt(6).Equal(a.stockOf(t, ing.ID)))

	resp, raw = a.call(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", entity.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "recibo_SAL-")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, _ = a.call(t, http.MethodDelete, "/api/sales/"+sale.ID, entity.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decimal.NewFromInt(10).Equal(a.stockOf(t, ing.ID)))

	resp, raw = a.call(t, http.MethodGet, "/api/sales/"+sale.ID, entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))
}

func TestRouter_CompraConProveedorInactivo(t *testing.T) {
	a := newAPI(t)
	ing := a.createIngredient(t, "Azúcar", 10, 2, 14000)

	resp, raw := a.call(t, http.MethodPost, "/api/purchases", entity.RoleBodeguero, map[string]interface{}{
		"supplier_id": "sup-off",
		"items":       []map[string]interface{}{{"ingredient_id": ing.ID, "quantity": 1, "price_per_unit": 13000}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INACTIVE", errorCode(t, raw))
	assert.True(t, decimal.NewFromInt(10).Equal(a.stockOf(t, ing.ID)))
}

func TestRouter_ListadoDeVentasConFiltroDeCliente(t *testing.T) {
	a := newAPI(t)
	ing := a.createIngredient(t, "Mentega", 50, 5, 30000)

	resp, raw := a.call(t, http.MethodPost, "/api/customers", entity.RoleVendedor, map[string]interface{}{
		"name": "Budi", "email": "budi@mail.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var budi dto.CustomerResponse
	decode(t, raw, &budi)

	for _, customer := range []string{budi.ID, ""} {
		resp, raw = a.call(t, http.MethodPost, "/api/sales", entity.RoleVendedor, map[string]interface{}{
			"customer_id":    customer,
			"payment_method": "TRANSFER",
			"items":          []map[string]interface{}{{"ingredient_id": ing.ID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw = a.call(t, http.MethodGet, "/api/sales?customer_id="+budi.ID, entity.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.TransactionListResponse
	decode(t, raw, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Budi", list.Items[0].Customer.Name)

	resp, raw = a.call(t, http.MethodGet, "/api/sales?page=1&limit=1", entity.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, raw, &list)
	assert.Equal(t, dto.PageMeta{Total: 2, Page: 1, Limit: 1, TotalPages: 2}, list.Meta)

	// el cliente con ventas no se puede eliminar
	resp, raw = a.call(t, http.MethodDelete, "/api/customers/"+budi.ID, entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y errores
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ValidacionDeCampos(t *testing.T) {
	a := newAPI(t)
	resp, raw := a.call(t, http.MethodPost, "/api/ingredients", entity.RoleAdmin, map[string]interface{}{
		"name": "Ragi", "unit": "TON", "price": -1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, raw, &e)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Fields, "unit")
	assert.Contains(t, e.Fields, "price")
}

func TestRouter_CuerpoMalformado(t *testing.T) {
	a := newAPI(t)
	resp, raw := a.call(t, http.MethodPost, "/api/sales", entity.RoleVendedor, `{"payment_method": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, raw))
}

func TestRouter_FechaDeListadoInvalida(t *testing.T) {
	a := newAPI(t)
	resp, raw := a.call(t, http.MethodGet, "/api/purchases?start_date=2026-13-01", entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes, exportación y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ReporteDeStockYExportacion(t *testing.T) {
	a := newAPI(t)
	a.createIngredient(t, "Telur", 0, 10, 2000)
	a.createIngredient(t, "Gula", 20, 5, 14000)

	resp, raw := a.call(t, http.MethodGet, "/api/reports/stock", entity.RoleBodeguero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.StockReportDTO
	decode(t, raw, &report)
	assert.Equal(t, 2, report.Summary.TotalIngredients)
	assert.Equal(t, 1, report.Summary.OutOfStockCount)
	assert.True(t, decimal.NewFromInt(280000).Equal(report.Summary.TotalStockValue))

	resp, raw = a.call(t, http.MethodGet, "/api/reports/stock/export", entity.RoleBodeguero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "reporte_stock_")
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx es un zip")
}

func TestRouter_Metricas(t *testing.T) {
	a := newAPI(t)
	ing := a.createIngredient(t, "Susu", 5, 1, 20000)
	resp, _ := a.call(t, http.MethodPost, "/api/sales", entity.RoleVendedor, map[string]interface{}{
		"payment_method": "CASH",
		"items":          []map[string]interface{}{{"ingredient_id": ing.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := a.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(raw)
	assert.Contains(t, body, `ledger_transactions_total{kind="SALE",outcome="ok"} 1`)
	assert.Contains(t, body, "dailybakes_http_requests_total")
}
