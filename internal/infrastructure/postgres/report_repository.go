package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes de ventas, compras y rentabilidad.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// Totals agrega las cabeceras del tipo dado en [start, end).
// Usa COALESCE para devolver cero si no hay transacciones en el período.
func (r *ReportRepo) Totals(ctx context.Context, kind string, start, end time.Time) (repository.TransactionTotals, error) {
	var t repository.TransactionTotals
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(SUM(discount), 0), COALESCE(SUM(total_amount), 0)
		FROM transactions
		WHERE kind = $1 AND created_at >= $2 AND created_at < $3`,
		kind, start, end,
	).Scan(&t.Count, &t.Subtotal, &t.Discount, &t.Total)
	if err != nil {
		return t, fmt.Errorf("report.Totals: %w", err)
	}
	return t, nil
}

// SalesByPaymentMethod agrupa ventas por método de pago, mayor monto primero.
func (r *ReportRepo) SalesByPaymentMethod(ctx context.Context, start, end time.Time) ([]repository.GroupTotal, error) {
	const query = `
	SELECT payment_method, payment_method, COUNT(*), COALESCE(SUM(total_amount), 0) AS total
	FROM transactions
	WHERE kind = 'SALE' AND created_at >= $1 AND created_at < $2
	GROUP BY payment_method
	ORDER BY total DESC`
	return r.groupTotals(ctx, "report.SalesByPaymentMethod", query, start, end)
}

// PurchasesBySupplier agrupa compras por proveedor, mayor monto primero.
func (r *ReportRepo) PurchasesBySupplier(ctx context.Context, start, end time.Time) ([]repository.GroupTotal, error) {
	const query = `
	SELECT s.id, s.name, COUNT(*), COALESCE(SUM(t.total_amount), 0) AS total
	FROM transactions t
	JOIN suppliers s ON s.id = t.supplier_id
	WHERE t.kind = 'PURCHASE' AND t.created_at >= $1 AND t.created_at < $2
	GROUP BY s.id, s.name
	ORDER BY total DESC`
	return r.groupTotals(ctx, "report.PurchasesBySupplier", query, start, end)
}

func (r *ReportRepo) groupTotals(ctx context.Context, op, query string, start, end time.Time) ([]repository.GroupTotal, error) {
	rows, err := r.q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []repository.GroupTotal
	for rows.Next() {
		var g repository.GroupTotal
		if err := rows.Scan(&g.Key, &g.Name, &g.Count, &g.Total); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// TopIngredients devuelve los `limit` ingredientes con mayor monto en el período.
func (r *ReportRepo) TopIngredients(ctx context.Context, kind string, start, end time.Time, limit int) ([]repository.IngredientTotal, error) {
	const query = `
	SELECT g.id, g.name, g.unit, SUM(it.quantity), SUM(it.subtotal) AS amount
	FROM transaction_items it
	JOIN transactions t ON t.id = it.transaction_id
	JOIN ingredients g ON g.id = it.ingredient_id
	WHERE t.kind = $1 AND t.created_at >= $2 AND t.created_at < $3
	GROUP BY g.id, g.name, g.unit
	ORDER BY amount DESC, g.name ASC
	LIMIT $4`
	rows, err := r.q.Query(ctx, query, kind, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("report.TopIngredients: %w", err)
	}
	defer rows.Close()
	var out []repository.IngredientTotal
	for rows.Next() {
		var it repository.IngredientTotal
		if err := rows.Scan(&it.IngredientID, &it.Name, &it.Unit, &it.Quantity, &it.Amount); err != nil {
			return nil, fmt.Errorf("report.TopIngredients scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SaleLineCosts devuelve cada línea de venta con el precio de la última compra del mismo
// ingrediente registrada en o antes del momento de la venta (base del COGS).
func (r *ReportRepo) SaleLineCosts(ctx context.Context, start, end time.Time) ([]repository.SaleLineCost, error) {
	const query = `
	SELECT it.ingredient_id, it.quantity, it.subtotal,
	       COALESCE((
	           SELECT pi.price_per_unit
	           FROM transaction_items pi
	           JOIN transactions p ON p.id = pi.transaction_id
	           WHERE p.kind = $3 AND pi.ingredient_id = it.ingredient_id AND p.created_at <= t.created_at
	           ORDER BY p.created_at DESC
	           LIMIT 1
	       ), 0)
	FROM transaction_items it
	JOIN transactions t ON t.id = it.transaction_id
	WHERE t.kind = $4 AND t.created_at >= $1 AND t.created_at < $2`
	rows, err := r.q.Query(ctx, query, start, end, entity.TransactionPurchase, entity.TransactionSale)
	if err != nil {
		return nil, fmt.Errorf("report.SaleLineCosts: %w", err)
	}
	defer rows.Close()
	var out []repository.SaleLineCost
	for rows.Next() {
		var l repository.SaleLineCost
		if err := rows.Scan(&l.IngredientID, &l.Quantity, &l.Subtotal, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("report.SaleLineCosts scan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
