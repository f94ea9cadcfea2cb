package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/application/ledger"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSequence devuelve siempre el mismo valor y recuerda el día pedido.
type fixedSequence struct {
	value int
	err   error
	day   time.Time
}

func (f *fixedSequence) Next(_ context.Context, _ string, day time.Time) (int, error) {
	f.day = day
	return f.value, f.err
}

func TestInvoiceSequencer_Formato(t *testing.T) {
	seq := &fixedSequence{value: 7}
	s := ledger.NewInvoiceSequencer(nil)

	got, err := s.Next(context.Background(), seq, "PUR", "PURCHASE", time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "PUR/20261231/0007", got)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), seq.day)
}

func TestInvoiceSequencer_ZonaHorariaConfigurada(t *testing.T) {
	seq := &fixedSequence{value: 1}
	s := ledger.NewInvoiceSequencer(time.FixedZone("WIB", 7*3600))

	// 20:00 UTC del 5 de enero ya es 6 de enero en UTC+7.
	got, err := s.Next(context.Background(), seq, "SAL", "SALE", time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "SAL/20260106/0001", got)
}

func TestInvoiceSequencer_Agotado(t *testing.T) {
	s := ledger.NewInvoiceSequencer(time.UTC)

	_, err := s.Next(context.Background(), &fixedSequence{value: 10000}, "SAL", "SALE", time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := s.Next(context.Background(), &fixedSequence{value: 9999}, "SAL", "SALE", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "SAL/20260105/9999", got)
}

func TestInvoiceSequencer_PropagaError(t *testing.T) {
	boom := errors.New("conexión perdida")
	_, err := ledger.NewInvoiceSequencer(nil).Next(context.Background(), &fixedSequence{err: boom}, "SAL", "SALE", time.Now())
	assert.ErrorIs(t, err, boom)
}
