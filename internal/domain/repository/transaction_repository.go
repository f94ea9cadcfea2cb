package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para compras y ventas (cabecera + líneas).
type TransactionRepository interface {
	// CreateWithItems inserta cabecera y líneas. invoice_number duplicado → domain.ErrConflict.
	CreateWithItems(ctx context.Context, tx *entity.Transaction) error
	// GetByID devuelve la transacción del tipo dado con líneas y resúmenes, o (nil, nil).
	GetByID(ctx context.Context, kind, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, int, error)
	// DeleteWithItems elimina cabecera y líneas (cascade).
	DeleteWithItems(ctx context.Context, id string) error
}

// InvoiceSequenceRepository contador atómico por (tipo, día).
type InvoiceSequenceRepository interface {
	// Next incrementa y devuelve el contador del día. Dentro de una transacción la fila
	// queda bloqueada hasta Commit/Rollback, lo que serializa a los creadores concurrentes.
	Next(ctx context.Context, kind string, day time.Time) (int, error)
}

// TxRepos agrupa los repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Ingredients  IngredientRepository
	Alerts       StockAlertRepository
	Suppliers    SupplierRepository
	Customers    CustomerRepository
	Transactions TransactionRepository
	Sequences    InvoiceSequenceRepository
}
