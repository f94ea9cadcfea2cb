package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionTotals agregados de cabeceras de un tipo de transacción en un rango.
type TransactionTotals struct {
	Count    int
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// GroupTotal total agrupado por una clave (método de pago, proveedor).
type GroupTotal struct {
	Key   string
	Name  string
	Count int
	Total decimal.Decimal
}

// IngredientTotal cantidad y monto por ingrediente.
type IngredientTotal struct {
	IngredientID string
	Name         string
	Unit         string
	Quantity     decimal.Decimal
	Amount       decimal.Decimal
}

// SaleLineCost línea de venta con el último precio de compra anterior a la venta.
// UnitCost es cero cuando el ingrediente no tiene compras previas.
type SaleLineCost struct {
	IngredientID string
	Quantity     decimal.Decimal
	Subtotal     decimal.Decimal
	UnitCost     decimal.Decimal
}

// ReportRepository consultas de solo lectura para reportes. Rango [start, end).
type ReportRepository interface {
	Totals(ctx context.Context, kind string, start, end time.Time) (TransactionTotals, error)
	// SalesByPaymentMethod agrupa las ventas por método de pago.
	SalesByPaymentMethod(ctx context.Context, start, end time.Time) ([]GroupTotal, error)
	// PurchasesBySupplier agrupa las compras por proveedor.
	PurchasesBySupplier(ctx context.Context, start, end time.Time) ([]GroupTotal, error)
	// TopIngredients ingredientes con mayor monto en el período, descendente.
	TopIngredients(ctx context.Context, kind string, start, end time.Time, limit int) ([]IngredientTotal, error)
	SaleLineCosts(ctx context.Context, start, end time.Time) ([]SaleLineCost, error)
}
