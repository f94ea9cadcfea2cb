package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockService es el único camino de escritura de stock_quantity. Siempre trabaja con los
// repositorios de una transacción abierta por el caller (TxRunner).
type StockService struct {
	reconciler *AlertReconciler
	now        func() time.Time
}

// NewStockService construye el servicio de stock.
func NewStockService(reconciler *AlertReconciler) *StockService {
	return &StockService{reconciler: reconciler, now: time.Now}
}

// AdjustStock bloquea la fila del ingrediente (SELECT FOR UPDATE), suma o resta qty y reconcilia alertas.
// Una salida que dejaría el stock negativo devuelve ErrInsufficientStock sin modificar nada.
func (s *StockService) AdjustStock(
	ctx context.Context,
	repos repository.TxRepos,
	ingredientID string,
	qty decimal.Decimal,
	dir entity.StockDirection,
) (*entity.Ingredient, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if !entity.FitsScale(qty, entity.QuantityScale) {
		return nil, fmt.Errorf("%w: la cantidad admite como máximo %d decimales", domain.ErrInvalidInput, entity.QuantityScale)
	}

	// Bloquea la fila para evitar condiciones de carrera entre transacciones concurrentes
	ing, err := repos.Ingredients.GetForUpdate(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, ingredientID)
	}

	var next decimal.Decimal
	switch dir {
	case entity.StockIncrease:
		next = ing.StockQuantity.Add(qty)
	case entity.StockDecrease:
		next = ing.StockQuantity.Sub(qty)
		if next.IsNegative() {
			return nil, fmt.Errorf("%w: %s tiene %s %s, se requieren %s",
				domain.ErrInsufficientStock, ing.Name, ing.StockQuantity.String(), ing.Unit, qty.String())
		}
	default:
		return nil, fmt.Errorf("%w: sentido de ajuste desconocido", domain.ErrInvalidInput)
	}

	now := s.now()
	if err := repos.Ingredients.UpdateStock(ctx, ing.ID, next, now); err != nil {
		return nil, err
	}
	ing.StockQuantity = next
	ing.UpdatedAt = now

	if err := s.reconciler.Reconcile(ctx, repos.Alerts, ing); err != nil {
		return nil, err
	}
	return ing, nil
}
