package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/application/analytics"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/jhoicas/dailybakes-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var now = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

// ── Mock de ReportRepository ───────────────────────────────────────────────────

type mockReports struct{ mock.Mock }

func (m *mockReports) Totals(ctx context.Context, kind string, start, end time.Time) (repository.TransactionTotals, error) {
	args := m.Called(ctx, kind, start, end)
	return args.Get(0).(repository.TransactionTotals), args.Error(1)
}

func (m *mockReports) SalesByPaymentMethod(ctx context.Context, start, end time.Time) ([]repository.GroupTotal, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]repository.GroupTotal), args.Error(1)
}

func (m *mockReports) PurchasesBySupplier(ctx context.Context, start, end time.Time) ([]repository.GroupTotal, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]repository.GroupTotal), args.Error(1)
}

func (m *mockReports) TopIngredients(ctx context.Context, kind string, start, end time.Time, limit int) ([]repository.IngredientTotal, error) {
	args := m.Called(ctx, kind, start, end, limit)
	return args.Get(0).([]repository.IngredientTotal), args.Error(1)
}

func (m *mockReports) SaleLineCosts(ctx context.Context, start, end time.Time) ([]repository.SaleLineCost, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]repository.SaleLineCost), args.Error(1)
}

func newUseCase(t *testing.T, reports repository.ReportRepository) (*analytics.ReportUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	uc := analytics.NewReportUseCase(reports, repos.Ingredients, repos.Alerts, time.UTC)
	uc.SetClock(func() time.Time { return now })
	return uc, store
}

// ──────────────────────────────────────────────────────────────────────────────
// Períodos
// ──────────────────────────────────────────────────────────────────────────────

func TestPeriod(t *testing.T) {
	uc, _ := newUseCase(t, &mockReports{})

	cases := []struct {
		name      string
		in        dto.ReportRequest
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"diario", dto.ReportRequest{Type: dto.PeriodDaily}, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)},
		{"semanal", dto.ReportRequest{Type: dto.PeriodWeekly}, now.AddDate(0, 0, -7), now},
		{"mensual", dto.ReportRequest{Type: dto.PeriodMonthly}, now.AddDate(0, -1, 0), now},
		{"anual", dto.ReportRequest{Type: dto.PeriodYearly}, now.AddDate(-1, 0, 0), now},
		{"por defecto mensual", dto.ReportRequest{}, now.AddDate(0, -1, 0), now},
		{"personalizado", dto.ReportRequest{Type: dto.PeriodCustom, StartDate: "2026-01-01", EndDate: "2026-01-31"},
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"personalizado sin fechas", dto.ReportRequest{Type: dto.PeriodCustom}, now.AddDate(0, -1, 0), now},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := uc.Period(tc.in)
			require.NoError(t, err)
			assert.True(t, p.StartDate.Equal(tc.wantStart), "start %s", p.StartDate)
			assert.True(t, p.EndDate.Equal(tc.wantEnd), "end %s", p.EndDate)
		})
	}
}

func TestPeriod_Invalido(t *testing.T) {
	uc, _ := newUseCase(t, &mockReports{})

	_, err := uc.Period(dto.ReportRequest{Type: "HOURLY"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Period(dto.ReportRequest{Type: dto.PeriodCustom, StartDate: "2026-02-10", EndDate: "2026-02-01"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Period(dto.ReportRequest{Type: dto.PeriodCustom, StartDate: "10/02/2026"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas y compras
// ──────────────────────────────────────────────────────────────────────────────

func TestSales(t *testing.T) {
	reports := &mockReports{}
	uc, _ := newUseCase(t, reports)
	start, end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	reports.On("Totals", mock.Anything, entity.TransactionSale, start, end).
		Return(repository.TransactionTotals{Count: 3, Subtotal: d("1050"), Discount: d("50"), Total: d("1000")}, nil)
	reports.On("SalesByPaymentMethod", mock.Anything, start, end).
		Return([]repository.GroupTotal{{Key: entity.PaymentCash, Count: 2, Total: d("700")}, {Key: entity.PaymentQRIS, Count: 1, Total: d("300")}}, nil)
	reports.On("TopIngredients", mock.Anything, entity.TransactionSale, start, end, 10).
		Return([]repository.IngredientTotal{{IngredientID: "ing-1", Name: "Tepung", Unit: "KG", Quantity: d("7"), Amount: d("1050")}}, nil)

	out, err := uc.Sales(context.Background(), dto.ReportRequest{Type: dto.PeriodDaily})
	require.NoError(t, err)
	assert.True(t, out.Summary.TotalSales.Equal(d("1000")))
	assert.True(t, out.Summary.TotalDiscount.Equal(d("50")))
	assert.Equal(t, 3, out.Summary.TotalTransactions)
	assert.True(t, out.Summary.AverageTransaction.Equal(d("333.33")))
	require.Len(t, out.PaymentMethodBreakdown, 2)
	assert.Equal(t, entity.PaymentCash, out.PaymentMethodBreakdown[0].Key)
	require.Len(t, out.TopIngredients, 1)
	assert.Equal(t, "Tepung", out.TopIngredients[0].Name)
	reports.AssertExpectations(t)
}

func TestPurchases_SinMovimientos(t *testing.T) {
	reports := &mockReports{}
	uc, _ := newUseCase(t, reports)

	reports.On("Totals", mock.Anything, entity.TransactionPurchase, mock.Anything, mock.Anything).
		Return(repository.TransactionTotals{Subtotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero}, nil)
	reports.On("PurchasesBySupplier", mock.Anything, mock.Anything, mock.Anything).Return([]repository.GroupTotal{}, nil)
	reports.On("TopIngredients", mock.Anything, entity.TransactionPurchase, mock.Anything, mock.Anything, 10).
		Return([]repository.IngredientTotal{}, nil)

	out, err := uc.Purchases(context.Background(), dto.ReportRequest{Type: dto.PeriodWeekly})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Summary.TotalTransactions)
	assert.True(t, out.Summary.AverageTransaction.IsZero())
	assert.NotNil(t, out.SupplierBreakdown)
	assert.Empty(t, out.TopPurchasedIngredients)
}

func TestSales_PropagaError(t *testing.T) {
	reports := &mockReports{}
	uc, _ := newUseCase(t, reports)
	boom := errors.New("timeout")
	reports.On("Totals", mock.Anything, entity.TransactionSale, mock.Anything, mock.Anything).
		Return(repository.TransactionTotals{}, boom)

	_, err := uc.Sales(context.Background(), dto.ReportRequest{})
	assert.ErrorIs(t, err, boom)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rentabilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestProfit(t *testing.T) {
	reports := &mockReports{}
	uc, _ := newUseCase(t, reports)

	reports.On("Totals", mock.Anything, entity.TransactionSale, mock.Anything, mock.Anything).
		Return(repository.TransactionTotals{Count: 2, Subtotal: d("1000"), Discount: d("50"), Total: d("950")}, nil)
	reports.On("Totals", mock.Anything, entity.TransactionPurchase, mock.Anything, mock.Anything).
		Return(repository.TransactionTotals{Count: 1, Subtotal: d("2000"), Discount: decimal.Zero, Total: d("2000")}, nil)
	reports.On("SaleLineCosts", mock.Anything, mock.Anything, mock.Anything).
		Return([]repository.SaleLineCost{
			{IngredientID: "ing-1", Quantity: d("5"), Subtotal: d("600"), UnitCost: d("80")},
			{IngredientID: "ing-2", Quantity: d("2"), Subtotal: d("400"), UnitCost: decimal.Zero},
		}, nil)

	out, err := uc.Profit(context.Background(), dto.ReportRequest{Type: dto.PeriodMonthly})
	require.NoError(t, err)
	s := out.Summary
	assert.True(t, s.TotalRevenue.Equal(d("1000")))
	assert.True(t, s.TotalCost.Equal(d("2000")))
	assert.True(t, s.COGS.Equal(d("400")))
	assert.True(t, s.GrossProfit.Equal(d("600")))
	assert.True(t, s.NetProfit.Equal(d("550")))
	assert.Equal(t, "55.00%", s.ProfitMargin)
}

func TestProfit_SinVentas(t *testing.T) {
	reports := &mockReports{}
	uc, _ := newUseCase(t, reports)
	zero := repository.TransactionTotals{Subtotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero}
	reports.On("Totals", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(zero, nil)
	reports.On("SaleLineCosts", mock.Anything, mock.Anything, mock.Anything).Return([]repository.SaleLineCost{}, nil)

	out, err := uc.Profit(context.Background(), dto.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "0.00%", out.Summary.ProfitMargin)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock y dashboard
// ──────────────────────────────────────────────────────────────────────────────

func seed(t *testing.T, store *memory.Store, id, stock, min, price string, active bool) {
	t.Helper()
	require.NoError(t, store.Repos().Ingredients.Create(context.Background(), &entity.Ingredient{
		ID: id, Name: "Ingrediente " + id, Unit: entity.UnitKG,
		StockQuantity: d(stock), MinStock: d(min), Price: d(price), IsActive: active,
	}))
}

func TestStock(t *testing.T) {
	uc, store := newUseCase(t, &mockReports{})
	seed(t, store, "a", "50", "10", "2", true)
	seed(t, store, "b", "0", "5", "100", true)
	seed(t, store, "c", "3", "5", "10", true)
	seed(t, store, "z", "999", "0", "1", false)

	out, err := uc.Stock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Summary.TotalIngredients)
	assert.True(t, out.Summary.TotalStockValue.Equal(d("130")), "got %s", out.Summary.TotalStockValue)
	assert.Equal(t, 2, out.Summary.LowStockCount)
	assert.Equal(t, 1, out.Summary.OutOfStockCount)
	require.Len(t, out.AllIngredients, 3)
	assert.Equal(t, "b", out.AllIngredients[0].ID, "ordenado por stock ascendente")
	assert.Equal(t, "a", out.AllIngredients[2].ID)
}

func TestDashboard(t *testing.T) {
	reports := &mockReports{}
	uc, store := newUseCase(t, reports)
	seed(t, store, "a", "50", "10", "2", true)
	seed(t, store, "b", "1", "5", "100", true)
	require.NoError(t, store.Repos().Alerts.Create(context.Background(), &entity.StockAlert{
		ID: "al-1", IngredientID: "b", Message: "bajo", CreatedAt: now,
	}))

	start, end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	reports.On("Totals", mock.Anything, entity.TransactionSale, start, end).
		Return(repository.TransactionTotals{Count: 4, Total: d("400")}, nil)
	reports.On("Totals", mock.Anything, entity.TransactionPurchase, start, end).
		Return(repository.TransactionTotals{Count: 1, Total: d("1500")}, nil)

	out, err := uc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", out.Date)
	assert.Equal(t, 4, out.Today.SalesCount)
	assert.True(t, out.Today.SalesRevenue.Equal(d("400")))
	assert.Equal(t, 1, out.Today.PurchasesCount)
	assert.True(t, out.Today.PurchasesTotal.Equal(d("1500")))
	assert.Equal(t, dto.DashboardInventoryDTO{TotalIngredients: 2, LowStockCount: 1, ActiveAlertsCount: 1}, out.Inventory)
	reports.AssertExpectations(t)
}
