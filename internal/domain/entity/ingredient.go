package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida válidas para Ingredient.
const (
	UnitKG    = "KG"
	UnitGram  = "GRAM"
	UnitLiter = "LITER"
	UnitML    = "ML"
	UnitPCS   = "PCS"
	UnitPack  = "PACK"
)

// Units lista las unidades aceptadas (validación de requests).
var Units = []string{UnitKG, UnitGram, UnitLiter, UnitML, UnitPCS, UnitPack}

// Decimales que admiten las columnas NUMERIC: cantidades (14,3), precios y porcentajes (14,2).
const (
	QuantityScale int32 = 3
	PriceScale    int32 = 2
)

// FitsScale indica si d se guarda sin redondeo con places decimales.
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// Ingredient representa un insumo del inventario.
// StockQuantity solo cambia a través del ajuste de stock (inventory.StockService);
// Update de CRUD no lo toca.
type Ingredient struct {
	ID            string
	Name          string
	Description   string
	Unit          string
	StockQuantity decimal.Decimal // siempre >= 0
	MinStock      decimal.Decimal // umbral de alerta
	Price         decimal.Decimal // precio de venta vigente
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si el stock está en o por debajo del mínimo. Derivado, nunca se persiste.
func (i *Ingredient) IsLowStock() bool {
	return i.StockQuantity.LessThanOrEqual(i.MinStock)
}

// StockDirection sentido de un ajuste de stock.
type StockDirection int

const (
	StockIncrease StockDirection = iota + 1
	StockDecrease
)

// String devuelve el nombre del sentido (logs y métricas).
func (d StockDirection) String() string {
	switch d {
	case StockIncrease:
		return "increase"
	case StockDecrease:
		return "decrease"
	default:
		return "unknown"
	}
}

// Reverse devuelve el sentido opuesto (reversión de transacciones).
func (d StockDirection) Reverse() StockDirection {
	if d == StockIncrease {
		return StockDecrease
	}
	return StockIncrease
}
