// Package analytics contiene los reportes de negocio: ventas, compras, stock, rentabilidad y dashboard.
// Solo lee; nunca modifica el libro de inventario.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const topIngredients = 10 // tamaño de los rankings de ingredientes

var hundred = decimal.NewFromInt(100)

// ReportUseCase genera los reportes a partir de consultas de solo lectura.
type ReportUseCase struct {
	reports     repository.ReportRepository
	ingredients repository.IngredientRepository
	alerts      repository.StockAlertRepository
	loc         *time.Location
	now         func() time.Time
}

// NewReportUseCase construye el caso de uso. loc es la zona horaria de los días calendario (nil = UTC).
func NewReportUseCase(
	reports repository.ReportRepository,
	ingredients repository.IngredientRepository,
	alerts repository.StockAlertRepository,
	loc *time.Location,
) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportUseCase{reports: reports, ingredients: ingredients, alerts: alerts, loc: loc, now: time.Now}
}

// Period resuelve el rango [start, end) del request.
//
//   - DAILY: el día calendario actual.
//   - WEEKLY, MONTHLY, YEARLY: desde hace 7 días, 1 mes o 1 año hasta ahora.
//   - CUSTOM: start_date (default hace 1 mes) hasta el final de end_date (default ahora).
//   - Sin type: MONTHLY.
func (uc *ReportUseCase) Period(in dto.ReportRequest) (dto.PeriodDTO, error) {
	now := uc.now().In(uc.loc)
	kind := in.Type
	if kind == "" {
		kind = dto.PeriodMonthly
	}
	p := dto.PeriodDTO{Type: kind, EndDate: now}
	switch kind {
	case dto.PeriodDaily:
		p.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
		p.EndDate = p.StartDate.AddDate(0, 0, 1)
	case dto.PeriodWeekly:
		p.StartDate = now.AddDate(0, 0, -7)
	case dto.PeriodMonthly:
		p.StartDate = now.AddDate(0, -1, 0)
	case dto.PeriodYearly:
		p.StartDate = now.AddDate(-1, 0, 0)
	case dto.PeriodCustom:
		p.StartDate = now.AddDate(0, -1, 0)
		if in.StartDate != "" {
			s, err := time.ParseInLocation("2006-01-02", in.StartDate, uc.loc)
			if err != nil {
				return p, fmt.Errorf("%w: start_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
			}
			p.StartDate = s
		}
		if in.EndDate != "" {
			e, err := time.ParseInLocation("2006-01-02", in.EndDate, uc.loc)
			if err != nil {
				return p, fmt.Errorf("%w: end_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
			}
			p.EndDate = e.AddDate(0, 0, 1)
		}
		if !p.StartDate.Before(p.EndDate) {
			return p, fmt.Errorf("%w: start_date no puede ser posterior a end_date", domain.ErrInvalidInput)
		}
	default:
		return p, fmt.Errorf("%w: tipo de período %q no soportado", domain.ErrInvalidInput, in.Type)
	}
	return p, nil
}

// Sales reporte de ventas: totales, desglose por método de pago y top 10 ingredientes por ingreso.
func (uc *ReportUseCase) Sales(ctx context.Context, in dto.ReportRequest) (*dto.SalesReportDTO, error) {
	p, err := uc.Period(in)
	if err != nil {
		return nil, err
	}
	totals, err := uc.reports.Totals(ctx, entity.TransactionSale, p.StartDate, p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("reporte de ventas: totales: %w", err)
	}
	byMethod, err := uc.reports.SalesByPaymentMethod(ctx, p.StartDate, p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("reporte de ventas: métodos de pago: %w", err)
	}
	top, err := uc.reports.TopIngredients(ctx, entity.TransactionSale, p.StartDate, p.EndDate, topIngredients)
	if err != nil {
		return nil, fmt.Errorf("reporte de ventas: ranking: %w", err)
	}
	return &dto.SalesReportDTO{
		Period: p,
		Summary: dto.SalesSummaryDTO{
			TotalSales:         totals.Total,
			TotalDiscount:      totals.Discount,
			TotalTransactions:  totals.Count,
			AverageTransaction: average(totals.Total, totals.Count),
		},
		PaymentMethodBreakdown: breakdown(byMethod),
		TopIngredients:         ingredientTotals(top),
	}, nil
}

// Purchases reporte de compras: totales, desglose por proveedor y top 10 ingredientes por costo.
func (uc *ReportUseCase) Purchases(ctx context.Context, in dto.ReportRequest) (*dto.PurchasesReportDTO, error) {
	p, err := uc.Period(in)
	if err != nil {
		return nil, err
	}
	totals, err := uc.reports.Totals(ctx, entity.TransactionPurchase, p.StartDate, p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("reporte de compras: totales: %w", err)
	}
	bySupplier, err := uc.reports.PurchasesBySupplier(ctx, p.StartDate, p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("reporte de compras: proveedores: %w", err)
	}
	top, err := uc.reports.TopIngredients(ctx, entity.TransactionPurchase, p.StartDate, p.EndDate, topIngredients)
	if err != nil {
		return nil, fmt.Errorf("reporte de compras: ranking: %w", err)
	}
	return &dto.PurchasesReportDTO{
		Period: p,
		Summary: dto.PurchasesSummaryDTO{
			TotalPurchases:     totals.Total,
			TotalTransactions:  totals.Count,
			AverageTransaction: average(totals.Total, totals.Count),
		},
		SupplierBreakdown:       breakdown(bySupplier),
		TopPurchasedIngredients: ingredientTotals(top),
	}, nil
}

// Stock foto del inventario activo ordenado por stock ascendente.
func (uc *ReportUseCase) Stock(ctx context.Context) (*dto.StockReportDTO, error) {
	list, _, err := uc.ingredients.List(ctx, repository.IngredientFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("reporte de stock: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StockQuantity.LessThan(list[j].StockQuantity)
	})

	out := &dto.StockReportDTO{
		LowStockIngredients:   []dto.IngredientResponse{},
		OutOfStockIngredients: []dto.IngredientResponse{},
		AllIngredients:        make([]dto.IngredientResponse, 0, len(list)),
	}
	value := decimal.Zero
	for _, ing := range list {
		r := dto.NewIngredientResponse(ing)
		value = value.Add(ing.StockQuantity.Mul(ing.Price))
		if ing.IsLowStock() {
			out.LowStockIngredients = append(out.LowStockIngredients, r)
		}
		if ing.StockQuantity.IsZero() {
			out.OutOfStockIngredients = append(out.OutOfStockIngredients, r)
		}
		out.AllIngredients = append(out.AllIngredients, r)
	}
	out.Summary = dto.StockSummaryDTO{
		TotalIngredients: len(list),
		TotalStockValue:  value,
		LowStockCount:    len(out.LowStockIngredients),
		OutOfStockCount:  len(out.OutOfStockIngredients),
	}
	return out, nil
}

// Profit rentabilidad del período. El costo de lo vendido usa, por línea de venta, el último precio
// de compra del ingrediente anterior a la venta (cero si nunca se compró).
//
//	revenue      = subtotal de ventas (antes de descuento)
//	gross_profit = revenue - cogs
//	net_profit   = gross_profit - descuentos
//	margin       = net_profit / revenue * 100
func (uc *ReportUseCase) Profit(ctx context.Context, in dto.ReportRequest) (*dto.ProfitReportDTO, error) {
	p, err := uc.Period(in)
	if err != nil {
		return nil, err
	}
	sales, err := uc.reports.Totals(ctx, entity.TransactionSale, p.StartDate, p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("reporte de rentabilidad: ventas: %w", err)
	}
	purchases, err := uc.reports.Totals(ctx, entity.TransactionPurchase, p.StartDate, p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("reporte de rentabilidad: compras: %w", err)
	}
	lines, err := uc.reports.SaleLineCosts(ctx, p.StartDate, p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("reporte de rentabilidad: costo de ventas: %w", err)
	}

	cogs := decimal.Zero
	for _, l := range lines {
		cogs = cogs.Add(l.Quantity.Mul(l.UnitCost))
	}
	revenue := sales.Subtotal
	gross := revenue.Sub(cogs)
	net := gross.Sub(sales.Discount)
	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = net.Div(revenue).Mul(hundred)
	}
	return &dto.ProfitReportDTO{
		Period: p,
		Summary: dto.ProfitSummaryDTO{
			TotalRevenue:  revenue,
			TotalCost:     purchases.Total,
			COGS:          cogs,
			TotalDiscount: sales.Discount,
			GrossProfit:   gross,
			NetProfit:     net,
			ProfitMargin:  margin.StringFixed(2) + "%",
		},
	}, nil
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

func breakdown(groups []repository.GroupTotal) []dto.BreakdownDTO {
	out := make([]dto.BreakdownDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.BreakdownDTO{Key: g.Key, Name: g.Name, Count: g.Count, Total: g.Total})
	}
	return out
}

func ingredientTotals(list []repository.IngredientTotal) []dto.IngredientTotalDTO {
	out := make([]dto.IngredientTotalDTO, 0, len(list))
	for _, it := range list {
		out = append(out, dto.IngredientTotalDTO{
			IngredientID: it.IngredientID,
			Name:         it.Name,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			Amount:       it.Amount,
		})
	}
	return out
}
