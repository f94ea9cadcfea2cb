package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

// Dashboard resumen del día calendario actual y del estado del inventario.
//
// Cuatro consultas en paralelo:
//  1. Totals(ventas, hoy)
//  2. Totals(compras, hoy)
//  3. Ingredientes (total y bajo mínimo)
//  4. Alertas abiertas
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	p, err := uc.Period(dto.ReportRequest{Type: dto.PeriodDaily})
	if err != nil {
		return nil, err
	}

	type totalsResult struct {
		totals repository.TransactionTotals
		err    error
	}
	type inventoryResult struct {
		total, low int
		err        error
	}
	type alertsResult struct {
		open int
		err  error
	}

	salesCh := make(chan totalsResult, 1)
	purchasesCh := make(chan totalsResult, 1)
	invCh := make(chan inventoryResult, 1)
	alertsCh := make(chan alertsResult, 1)

	go func() {
		t, err := uc.reports.Totals(ctx, entity.TransactionSale, p.StartDate, p.EndDate)
		salesCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.reports.Totals(ctx, entity.TransactionPurchase, p.StartDate, p.EndDate)
		purchasesCh <- totalsResult{t, err}
	}()
	go func() {
		_, total, err := uc.ingredients.List(ctx, repository.IngredientFilter{ListFilter: repository.ListFilter{Limit: 1}})
		if err != nil {
			invCh <- inventoryResult{err: err}
			return
		}
		_, low, err := uc.ingredients.List(ctx, repository.IngredientFilter{ListFilter: repository.ListFilter{Limit: 1}, LowStock: true})
		invCh <- inventoryResult{total: total, low: low, err: err}
	}()
	go func() {
		n, err := uc.alerts.CountUnresolved(ctx)
		alertsCh <- alertsResult{n, err}
	}()

	sales := <-salesCh
	purchases := <-purchasesCh
	inv := <-invCh
	alerts := <-alertsCh

	if sales.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", sales.err)
	}
	if purchases.err != nil {
		return nil, fmt.Errorf("dashboard: compras de hoy: %w", purchases.err)
	}
	if inv.err != nil {
		return nil, fmt.Errorf("dashboard: inventario: %w", inv.err)
	}
	if alerts.err != nil {
		return nil, fmt.Errorf("dashboard: alertas: %w", alerts.err)
	}

	return &dto.DashboardDTO{
		Date: p.StartDate.Format("2006-01-02"),
		Today: dto.DashboardTodayDTO{
			SalesCount:     sales.totals.Count,
			SalesRevenue:   sales.totals.Total,
			PurchasesCount: purchases.totals.Count,
			PurchasesTotal: purchases.totals.Total,
		},
		Inventory: dto.DashboardInventoryDTO{
			TotalIngredients:  inv.total,
			LowStockCount:     inv.low,
			ActiveAlertsCount: alerts.open,
		},
	}, nil
}
