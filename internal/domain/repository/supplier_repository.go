package repository

import (
	"context"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context, filter ListFilter) ([]*entity.Supplier, int, error)
	// Delete devuelve domain.ErrConflict si hay compras que lo referencian.
	Delete(ctx context.Context, id string) error
}
