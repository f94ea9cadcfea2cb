package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain"
	domledger "github.com/jhoicas/dailybakes-api/internal/domain/ledger"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

// InvoiceSequencer genera números PREFIX/YYYYMMDD/SSSS a partir del contador atómico por (tipo, día).
// El día se calcula en la zona horaria de numeración configurada.
type InvoiceSequencer struct {
	loc *time.Location
}

// NewInvoiceSequencer construye el generador. loc nil equivale a UTC.
func NewInvoiceSequencer(loc *time.Location) *InvoiceSequencer {
	if loc == nil {
		loc = time.UTC
	}
	return &InvoiceSequencer{loc: loc}
}

// Next reserva el siguiente consecutivo del día de at. Debe llamarse con el repositorio de la
// transacción que inserta la cabecera: si la transacción se revierte el número vuelve a quedar libre.
func (s *InvoiceSequencer) Next(
	ctx context.Context,
	seqs repository.InvoiceSequenceRepository,
	prefix, kind string,
	at time.Time,
) (string, error) {
	day := domledger.DayStart(at, s.loc)
	n, err := seqs.Next(ctx, kind, day)
	if err != nil {
		return "", fmt.Errorf("siguiente consecutivo: %w", err)
	}
	if n > domledger.MaxDailySequence {
		return "", fmt.Errorf("%w: se agotó la numeración de %s para el día %s",
			domain.ErrConflict, kind, day.Format("2006-01-02"))
	}
	return domledger.FormatInvoiceNumber(prefix, day, n), nil
}

// Location zona horaria de numeración.
func (s *InvoiceSequencer) Location() *time.Location { return s.loc }
