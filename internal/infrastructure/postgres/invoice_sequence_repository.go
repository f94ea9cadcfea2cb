package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

var _ repository.InvoiceSequenceRepository = (*InvoiceSequenceRepo)(nil)

// InvoiceSequenceRepo contador de numeración por (tipo, día) sobre PostgreSQL.
type InvoiceSequenceRepo struct {
	q Querier
}

// NewInvoiceSequenceRepository construye el adaptador. Debe recibir la tx del motor para que el
// consecutivo se devuelva con el Rollback.
func NewInvoiceSequenceRepository(q Querier) *InvoiceSequenceRepo {
	return &InvoiceSequenceRepo{q: q}
}

// Next incrementa atómicamente el contador del día. La fila queda bloqueada por el UPDATE del
// upsert hasta el fin de la transacción, así que dos creadores concurrentes no obtienen el mismo valor.
func (r *InvoiceSequenceRepo) Next(ctx context.Context, kind string, day time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoice_sequences (kind, day, last_value) VALUES ($1, $2::date, 1)
		ON CONFLICT (kind, day) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`,
		kind, day.Format("2006-01-02"),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return n, nil
}
