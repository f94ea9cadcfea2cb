package inventory

import (
	"context"

	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el servicio de stock y el motor de transacciones: si fn devuelve error
// no queda ningún cambio. fn puede ejecutarse más de una vez (reintento por serialización), así que
// debe reconstruir su estado en cada llamada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// AlertObserver recibe la apertura de alertas (métricas).
type AlertObserver interface {
	AlertOpened()
}

type nopAlertObserver struct{}

func (nopAlertObserver) AlertOpened() {}
