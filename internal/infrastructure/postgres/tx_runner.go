package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// RetryObserver recibe cada reintento (métricas).
type RetryObserver interface {
	TxRetried()
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + bloqueos de fila).
// Reintenta la unidad completa ante 40001/40P01; los errores de negocio nunca se reintentan.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	observer   RetryObserver
}

// NewTxRunner construye el runner con el pool. maxRetries 0 desactiva los reintentos.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, observer RetryObserver) *TxRunner {
	return &TxRunner{pool: pool, maxRetries: maxRetries, observer: observer}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := r.runOnce(ctx, fn)
		if err == nil || IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		if r.observer != nil {
			r.observer.TxRetried()
		}
	}
	err := backoff.RetryNotify(op, newTxBackOff(ctx, r.maxRetries), notify)
	if err != nil && IsRetryable(err) {
		return fmt.Errorf("transacción abortada tras %d intentos: %w", attempt, err)
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTxRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewTxRepos arma el conjunto de repositorios sobre un mismo Querier (tx o pool).
func NewTxRepos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Ingredients:  NewIngredientRepository(q),
		Alerts:       NewStockAlertRepository(q),
		Suppliers:    NewSupplierRepository(q),
		Customers:    NewCustomerRepository(q),
		Transactions: NewTransactionRepository(q),
		Sequences:    NewInvoiceSequenceRepository(q),
	}
}

// newTxBackOff backoff exponencial corto (las transacciones son breves) acotado en reintentos y por ctx.
func newTxBackOff(ctx context.Context, maxRetries int) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 20 * time.Millisecond
	exp.MaxInterval = 500 * time.Millisecond
	exp.MaxElapsedTime = 5 * time.Second
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(maxRetries)), ctx)
}
