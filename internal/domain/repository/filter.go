package repository

import "time"

// ListFilter filtro común de listados paginados. Limit <= 0 significa sin límite.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// IngredientFilter filtro de listado de ingredientes.
type IngredientFilter struct {
	ListFilter
	LowStock   bool // solo stock <= min_stock
	ActiveOnly bool
}

// TransactionFilter filtro de listado de transacciones (compras o ventas).
type TransactionFilter struct {
	Kind           string
	CounterpartyID string // supplier_id (compras) o customer_id (ventas)
	StartDate      *time.Time
	EndDate        *time.Time // exclusivo
	Limit          int
	Offset         int
}
