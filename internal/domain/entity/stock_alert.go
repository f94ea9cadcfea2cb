package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAlert alerta de stock bajo para un ingrediente.
// Como máximo una alerta sin resolver por ingrediente (índice único parcial en BD).
type StockAlert struct {
	ID           string
	IngredientID string
	Message      string
	IsResolved   bool
	CreatedAt    time.Time
	ResolvedAt   *time.Time // solo cuando IsResolved

	// Resumen del ingrediente para listados (no se persiste en stock_alerts).
	Ingredient *IngredientSummary
}

// IngredientSummary datos mínimos de un ingrediente para respuestas anidadas.
type IngredientSummary struct {
	ID            string
	Name          string
	Unit          string
	StockQuantity decimal.Decimal
	MinStock      decimal.Decimal
}
