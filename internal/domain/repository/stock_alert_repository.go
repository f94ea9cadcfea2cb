package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
)

// StockAlertRepository define el puerto de persistencia para alertas de stock bajo.
type StockAlertRepository interface {
	Create(ctx context.Context, alert *entity.StockAlert) error
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	// FindUnresolvedByIngredient devuelve la alerta abierta del ingrediente o (nil, nil).
	FindUnresolvedByIngredient(ctx context.Context, ingredientID string) (*entity.StockAlert, error)
	// ResolveByIngredient marca como resueltas todas las alertas abiertas del ingrediente.
	ResolveByIngredient(ctx context.Context, ingredientID string, at time.Time) (int, error)
	// Resolve marca como resuelta una alerta concreta.
	Resolve(ctx context.Context, id string, at time.Time) error
	// List lista alertas con resumen del ingrediente; resolved nil = todas.
	List(ctx context.Context, resolved *bool) ([]*entity.StockAlert, error)
	CountUnresolved(ctx context.Context) (int, error)
}
