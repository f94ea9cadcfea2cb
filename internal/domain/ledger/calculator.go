package ledger

import (
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineSubtotal implementa el subtotal de una línea (servicio de dominio).
// Subtotal = Cantidad * PrecioUnitario, aritmética decimal exacta.
func LineSubtotal(quantity, pricePerUnit decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pricePerUnit)
}

// Subtotal suma los subtotales de las líneas.
func Subtotal(items []entity.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal)
	}
	return sum
}

// MembershipDiscount descuento de venta por membresía:
// Descuento = Subtotal * PorcentajeCliente / 100 si la membresía está vigente en now; 0 en otro caso.
func MembershipDiscount(subtotal decimal.Decimal, customer *entity.Customer, now time.Time) decimal.Decimal {
	if customer == nil || !customer.HasActiveMembership(now) {
		return decimal.Zero
	}
	if !customer.Discount.IsPositive() {
		return decimal.Zero
	}
	return subtotal.Mul(customer.Discount).Div(hundred)
}

// AggregateQuantities suma cantidades por ingrediente. Devuelve los ids ordenados
// por primera aparición junto con el mapa de totales.
func AggregateQuantities(items []entity.LineItem) ([]string, map[string]decimal.Decimal) {
	order := make([]string, 0, len(items))
	totals := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		if cur, ok := totals[it.IngredientID]; ok {
			totals[it.IngredientID] = cur.Add(it.Quantity)
			continue
		}
		order = append(order, it.IngredientID)
		totals[it.IngredientID] = it.Quantity
	}
	return order, totals
}
