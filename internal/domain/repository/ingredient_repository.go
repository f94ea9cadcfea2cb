package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IngredientRepository define el puerto de persistencia para Ingredient.
// GetByID y GetForUpdate devuelven (nil, nil) cuando no existe.
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *entity.Ingredient) error
	GetByID(ctx context.Context, id string) (*entity.Ingredient, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error)
	// Update persiste los campos descriptivos; nunca stock_quantity.
	Update(ctx context.Context, ingredient *entity.Ingredient) error
	// UpdateStock es el único camino de escritura de stock_quantity.
	UpdateStock(ctx context.Context, id string, quantity decimal.Decimal, at time.Time) error
	List(ctx context.Context, filter IngredientFilter) ([]*entity.Ingredient, int, error)
	// Delete devuelve domain.ErrConflict si el ingrediente está referenciado por transacciones.
	Delete(ctx context.Context, id string) error
}
