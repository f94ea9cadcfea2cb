// Package memory implementa los puertos de persistencia en memoria. Lo usan los tests de
// aplicación y de HTTP; reproduce las restricciones del esquema SQL (únicos, llaves foráneas,
// una alerta abierta por ingrediente) y el Rollback de TxRunner.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

// ErrSerialization simula un fallo de serialización (40001): TxRunner reintenta la unidad.
var ErrSerialization = errors.New("memory: serialization failure")

var _ inventory.TxRunner = (*TxRunner)(nil)

type state struct {
	ingredients  map[string]entity.Ingredient
	alerts       map[string]entity.StockAlert
	suppliers    map[string]entity.Supplier
	customers    map[string]entity.Customer
	users        map[string]entity.User
	transactions map[string]entity.Transaction
	sequences    map[string]int
}

func newState() state {
	return state{
		ingredients:  map[string]entity.Ingredient{},
		alerts:       map[string]entity.StockAlert{},
		suppliers:    map[string]entity.Supplier{},
		customers:    map[string]entity.Customer{},
		users:        map[string]entity.User{},
		transactions: map[string]entity.Transaction{},
		sequences:    map[string]int{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.ingredients {
		c.ingredients[k] = v
	}
	for k, v := range s.alerts {
		c.alerts[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.transactions {
		v.Items = append([]entity.LineItem(nil), v.Items...)
		c.transactions[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store base de datos en memoria. Las transacciones se serializan con un mutex global,
// equivalente a que todas bloqueen las mismas filas.
type Store struct {
	mu       sync.Mutex
	data     state
	failures map[string][]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState(), failures: map[string][]error{}}
}

// FailOn programa que la próxima llamada a op (p.ej. "transactions.create") devuelva err.
// Varias llamadas encolan varios fallos.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// injected consume el siguiente fallo programado para op. Requiere s.mu tomado.
func (s *Store) injected(op string) error {
	q := s.failures[op]
	if len(q) == 0 {
		return nil
	}
	s.failures[op] = q[1:]
	return q[0]
}

// Repos devuelve repositorios fuera de transacción (equivalente al pool).
func (s *Store) Repos() repository.TxRepos {
	return s.repos(false)
}

// Users repositorio de usuarios fuera de transacción.
func (s *Store) Users() *UserRepo {
	return &UserRepo{base{s: s}}
}

func (s *Store) repos(inTx bool) repository.TxRepos {
	b := base{s: s, inTx: inTx}
	return repository.TxRepos{
		Ingredients:  &IngredientRepo{b},
		Alerts:       &StockAlertRepo{b},
		Suppliers:    &SupplierRepo{b},
		Customers:    &CustomerRepo{b},
		Transactions: &TransactionRepo{b},
		Sequences:    &InvoiceSequenceRepo{b},
	}
}

// base comparte el almacén; dentro de una transacción el mutex ya está tomado por TxRunner.
type base struct {
	s    *Store
	inTx bool
}

func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

// TxRunner ejecuta fn con todo el almacén bloqueado; si fn falla restaura la foto previa.
type TxRunner struct {
	store      *Store
	maxRetries int
	// Attempts cuenta ejecuciones de fn (tests de reintento).
	Attempts int
}

// NewTxRunner construye el runner; reintenta hasta maxRetries veces ante ErrSerialization.
func NewTxRunner(store *Store, maxRetries int) *TxRunner {
	return &TxRunner{store: store, maxRetries: maxRetries}
}

// Run ejecuta la unidad de trabajo con Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = r.runOnce(fn)
		if !errors.Is(err, ErrSerialization) {
			return err
		}
	}
	return err
}

func (r *TxRunner) runOnce(fn func(repos repository.TxRepos) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.Attempts++

	snapshot := r.store.data.clone()
	if err := fn(r.store.repos(true)); err != nil {
		r.store.data = snapshot
		return err
	}
	if err := r.store.injected("commit"); err != nil {
		r.store.data = snapshot
		return err
	}
	return nil
}
