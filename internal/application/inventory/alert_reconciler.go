package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/jhoicas/dailybakes-api/pkg/logger"
)

// AlertReconciler deriva el estado de alertas a partir del stock actual de un ingrediente.
// No es un log de eventos: reconciliar dos veces el mismo estado no cambia nada.
type AlertReconciler struct {
	observer AlertObserver
	log      *logger.Logger
	now      func() time.Time
}

// NewAlertReconciler construye el reconciliador. observer y log pueden ser nil.
func NewAlertReconciler(observer AlertObserver, log *logger.Logger) *AlertReconciler {
	if observer == nil {
		observer = nopAlertObserver{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AlertReconciler{observer: observer, log: log, now: time.Now}
}

// Reconcile abre una alerta si stock <= mínimo y no hay una abierta; si stock > mínimo resuelve las abiertas.
// Debe llamarse con los repositorios de la misma transacción que modificó el stock.
func (r *AlertReconciler) Reconcile(ctx context.Context, alerts repository.StockAlertRepository, ing *entity.Ingredient) error {
	now := r.now()
	if !ing.IsLowStock() {
		n, err := alerts.ResolveByIngredient(ctx, ing.ID, now)
		if err != nil {
			return err
		}
		if n > 0 {
			r.log.Info().Str("ingredient_id", ing.ID).Int("resolved", n).Msg("alertas de stock resueltas")
		}
		return nil
	}

	open, err := alerts.FindUnresolvedByIngredient(ctx, ing.ID)
	if err != nil {
		return err
	}
	if open != nil {
		return nil
	}
	alert := &entity.StockAlert{
		ID:           uuid.New().String(),
		IngredientID: ing.ID,
		Message:      AlertMessage(ing),
		CreatedAt:    now,
	}
	if err := alerts.Create(ctx, alert); err != nil {
		return err
	}
	r.observer.AlertOpened()
	r.log.Warn().
		Str("ingredient_id", ing.ID).
		Str("stock", ing.StockQuantity.String()).
		Str("min_stock", ing.MinStock.String()).
		Msg("alerta de stock bajo abierta")
	return nil
}

// AlertMessage texto de la alerta: nombre, stock restante con unidad y mínimo.
func AlertMessage(ing *entity.Ingredient) string {
	return fmt.Sprintf("Stock de %s bajo: quedan %s %s, mínimo %s %s",
		ing.Name, ing.StockQuantity.String(), ing.Unit, ing.MinStock.String(), ing.Unit)
}
