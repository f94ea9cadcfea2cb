package entity

import "github.com/shopspring/decimal"

// LineItem línea de una transacción. PricePerUnit es una foto del precio al momento de la transacción.
type LineItem struct {
	ID            string
	TransactionID string
	Position      int // orden dentro de la transacción
	IngredientID  string
	Quantity      decimal.Decimal // > 0
	PricePerUnit  decimal.Decimal
	Subtotal      decimal.Decimal // Quantity * PricePerUnit

	// Resumen del ingrediente para respuestas.
	IngredientName string
	IngredientUnit string
}
