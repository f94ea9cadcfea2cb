package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.IngredientRepository      = (*IngredientRepo)(nil)
	_ repository.StockAlertRepository      = (*StockAlertRepo)(nil)
	_ repository.SupplierRepository        = (*SupplierRepo)(nil)
	_ repository.CustomerRepository        = (*CustomerRepo)(nil)
	_ repository.UserRepository            = (*UserRepo)(nil)
	_ repository.TransactionRepository     = (*TransactionRepo)(nil)
	_ repository.InvoiceSequenceRepository = (*InvoiceSequenceRepo)(nil)
)

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(strings.TrimSpace(search))
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func page[T any](list []T, limit, offset int) []T {
	if limit <= 0 {
		return list
	}
	if offset >= len(list) {
		return nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

// ── Ingredientes ────────────────────────────────────────────────────────────

// IngredientRepo ingredientes en memoria.
type IngredientRepo struct{ base }

func (r *IngredientRepo) Create(_ context.Context, in *entity.Ingredient) error {
	defer r.lock()()
	if err := r.s.injected("ingredients.create"); err != nil {
		return err
	}
	if _, ok := r.s.data.ingredients[in.ID]; ok {
		return fmt.Errorf("%w: ingrediente %s ya existe", domain.ErrConflict, in.ID)
	}
	r.s.data.ingredients[in.ID] = *in
	return nil
}

func (r *IngredientRepo) GetByID(_ context.Context, id string) (*entity.Ingredient, error) {
	defer r.lock()()
	if err := r.s.injected("ingredients.get"); err != nil {
		return nil, err
	}
	ing, ok := r.s.data.ingredients[id]
	if !ok {
		return nil, nil
	}
	return &ing, nil
}

func (r *IngredientRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.GetByID(ctx, id)
}

func (r *IngredientRepo) Update(_ context.Context, in *entity.Ingredient) error {
	defer r.lock()()
	cur, ok := r.s.data.ingredients[in.ID]
	if !ok {
		return fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, in.ID)
	}
	// stock_quantity solo cambia por UpdateStock
	stock := cur.StockQuantity
	cur = *in
	cur.StockQuantity = stock
	r.s.data.ingredients[in.ID] = cur
	return nil
}

func (r *IngredientRepo) UpdateStock(_ context.Context, id string, quantity decimal.Decimal, at time.Time) error {
	defer r.lock()()
	if err := r.s.injected("ingredients.update_stock"); err != nil {
		return err
	}
	cur, ok := r.s.data.ingredients[id]
	if !ok {
		return fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, id)
	}
	if quantity.IsNegative() {
		// CHECK (stock_quantity >= 0)
		return fmt.Errorf("memory: check violation stock_quantity < 0 en %s", id)
	}
	cur.StockQuantity = quantity
	cur.UpdatedAt = at
	r.s.data.ingredients[id] = cur
	return nil
}

func (r *IngredientRepo) List(_ context.Context, f repository.IngredientFilter) ([]*entity.Ingredient, int, error) {
	defer r.lock()()
	var all []*entity.Ingredient
	for _, v := range r.s.data.ingredients {
		ing := v
		if !matches(f.Search, ing.Name, ing.Description) {
			continue
		}
		if f.LowStock && !ing.IsLowStock() {
			continue
		}
		if f.ActiveOnly && !ing.IsActive {
			continue
		}
		all = append(all, &ing)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *IngredientRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.data.ingredients[id]; !ok {
		return fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, id)
	}
	for _, t := range r.s.data.transactions {
		for _, it := range t.Items {
			if it.IngredientID == id {
				return fmt.Errorf("%w: el ingrediente tiene transacciones registradas", domain.ErrConflict)
			}
		}
	}
	delete(r.s.data.ingredients, id)
	for aid, a := range r.s.data.alerts {
		if a.IngredientID == id {
			delete(r.s.data.alerts, aid)
		}
	}
	return nil
}

// ── Alertas ─────────────────────────────────────────────────────────────────

// StockAlertRepo alertas en memoria.
type StockAlertRepo struct{ base }

func (r *StockAlertRepo) Create(_ context.Context, a *entity.StockAlert) error {
	defer r.lock()()
	if err := r.s.injected("alerts.create"); err != nil {
		return err
	}
	if !a.IsResolved {
		for _, cur := range r.s.data.alerts {
			if cur.IngredientID == a.IngredientID && !cur.IsResolved {
				return fmt.Errorf("%w: ya existe una alerta abierta para el ingrediente", domain.ErrConflict)
			}
		}
	}
	r.s.data.alerts[a.ID] = *a
	return nil
}

func (r *StockAlertRepo) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	defer r.lock()()
	a, ok := r.s.data.alerts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *StockAlertRepo) FindUnresolvedByIngredient(_ context.Context, ingredientID string) (*entity.StockAlert, error) {
	defer r.lock()()
	for _, a := range r.s.data.alerts {
		if a.IngredientID == ingredientID && !a.IsResolved {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (r *StockAlertRepo) ResolveByIngredient(_ context.Context, ingredientID string, at time.Time) (int, error) {
	defer r.lock()()
	n := 0
	for id, a := range r.s.data.alerts {
		if a.IngredientID == ingredientID && !a.IsResolved {
			ts := at
			a.IsResolved = true
			a.ResolvedAt = &ts
			r.s.data.alerts[id] = a
			n++
		}
	}
	return n, nil
}

func (r *StockAlertRepo) Resolve(_ context.Context, id string, at time.Time) error {
	defer r.lock()()
	a, ok := r.s.data.alerts[id]
	if !ok || a.IsResolved {
		return nil
	}
	ts := at
	a.IsResolved = true
	a.ResolvedAt = &ts
	r.s.data.alerts[id] = a
	return nil
}

func (r *StockAlertRepo) List(_ context.Context, resolved *bool) ([]*entity.StockAlert, error) {
	defer r.lock()()
	var out []*entity.StockAlert
	for _, v := range r.s.data.alerts {
		a := v
		if resolved != nil && a.IsResolved != *resolved {
			continue
		}
		if ing, ok := r.s.data.ingredients[a.IngredientID]; ok {
			a.Ingredient = &entity.IngredientSummary{
				ID: ing.ID, Name: ing.Name, Unit: ing.Unit, StockQuantity: ing.StockQuantity, MinStock: ing.MinStock,
			}
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *StockAlertRepo) CountUnresolved(_ context.Context) (int, error) {
	defer r.lock()()
	n := 0
	for _, a := range r.s.data.alerts {
		if !a.IsResolved {
			n++
		}
	}
	return n, nil
}

// ── Proveedores ─────────────────────────────────────────────────────────────

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ base }

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	defer r.lock()()
	if _, ok := r.s.data.suppliers[s.ID]; ok {
		return fmt.Errorf("%w: proveedor %s ya existe", domain.ErrConflict, s.ID)
	}
	r.s.data.suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	defer r.lock()()
	s, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	defer r.lock()()
	if _, ok := r.s.data.suppliers[s.ID]; !ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, s.ID)
	}
	r.s.data.suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepo) List(_ context.Context, f repository.ListFilter) ([]*entity.Supplier, int, error) {
	defer r.lock()()
	var all []*entity.Supplier
	for _, v := range r.s.data.suppliers {
		s := v
		if matches(f.Search, s.Name, s.Contact, s.Email) {
			all = append(all, &s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.data.suppliers[id]; !ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	for _, t := range r.s.data.transactions {
		if t.SupplierID == id {
			return fmt.Errorf("%w: el proveedor tiene compras registradas", domain.ErrConflict)
		}
	}
	delete(r.s.data.suppliers, id)
	return nil
}

// ── Clientes ────────────────────────────────────────────────────────────────

// CustomerRepo clientes en memoria (email único cuando está presente).
type CustomerRepo struct{ base }

func (r *CustomerRepo) emailTaken(email, exceptID string) bool {
	if email == "" {
		return false
	}
	for _, c := range r.s.data.customers {
		if c.ID != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	defer r.lock()()
	if r.emailTaken(c.Email, c.ID) {
		return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, c.Email)
	}
	r.s.data.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	defer r.lock()()
	c, ok := r.s.data.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CustomerRepo) GetByEmail(_ context.Context, email string) (*entity.Customer, error) {
	defer r.lock()()
	for _, c := range r.s.data.customers {
		if email != "" && strings.EqualFold(c.Email, email) {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	defer r.lock()()
	if _, ok := r.s.data.customers[c.ID]; !ok {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, c.ID)
	}
	if r.emailTaken(c.Email, c.ID) {
		return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, c.Email)
	}
	r.s.data.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) List(_ context.Context, f repository.ListFilter) ([]*entity.Customer, int, error) {
	defer r.lock()()
	var all []*entity.Customer
	for _, v := range r.s.data.customers {
		c := v
		if matches(f.Search, c.Name, c.Email, c.Phone) {
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *CustomerRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.data.customers[id]; !ok {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	for _, t := range r.s.data.transactions {
		if t.CustomerID == id {
			return fmt.Errorf("%w: el cliente tiene ventas registradas", domain.ErrConflict)
		}
	}
	delete(r.s.data.customers, id)
	return nil
}

// ── Usuarios ────────────────────────────────────────────────────────────────

// UserRepo usuarios en memoria.
type UserRepo struct{ base }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.lock()()
	for _, cur := range r.s.data.users {
		if strings.EqualFold(cur.Email, u.Email) {
			return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, u.Email)
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.lock()()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	defer r.lock()()
	if _, ok := r.s.data.users[u.ID]; !ok {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, u.ID)
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	defer r.lock()()
	var all []*entity.User
	for _, v := range r.s.data.users {
		u := v
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return page(all, limit, offset), nil
}

// ── Transacciones ───────────────────────────────────────────────────────────

// TransactionRepo compras y ventas en memoria.
type TransactionRepo struct{ base }

func (r *TransactionRepo) CreateWithItems(_ context.Context, t *entity.Transaction) error {
	defer r.lock()()
	if err := r.s.injected("transactions.create"); err != nil {
		return err
	}
	for _, cur := range r.s.data.transactions {
		if cur.InvoiceNumber == t.InvoiceNumber {
			return fmt.Errorf("%w: número de factura %s ya existe", domain.ErrConflict, t.InvoiceNumber)
		}
	}
	stored := *t
	stored.Supplier, stored.Customer, stored.User = nil, nil, nil
	stored.Items = make([]entity.LineItem, len(t.Items))
	for i, it := range t.Items {
		it.TransactionID = t.ID
		it.IngredientName, it.IngredientUnit = "", ""
		stored.Items[i] = it
	}
	r.s.data.transactions[t.ID] = stored
	return nil
}

// populate resuelve resúmenes como lo hacen los JOIN del adaptador SQL.
func (r *TransactionRepo) populate(t entity.Transaction) *entity.Transaction {
	out := t
	out.Items = make([]entity.LineItem, len(t.Items))
	for i, it := range t.Items {
		if ing, ok := r.s.data.ingredients[it.IngredientID]; ok {
			it.IngredientName, it.IngredientUnit = ing.Name, ing.Unit
		}
		out.Items[i] = it
	}
	if s, ok := r.s.data.suppliers[t.SupplierID]; ok && t.SupplierID != "" {
		out.Supplier = &entity.PartySummary{ID: s.ID, Name: s.Name, Email: s.Email}
	}
	if c, ok := r.s.data.customers[t.CustomerID]; ok && t.CustomerID != "" {
		out.Customer = &entity.PartySummary{ID: c.ID, Name: c.Name, Email: c.Email}
	}
	if u, ok := r.s.data.users[t.UserID]; ok {
		out.User = &entity.PartySummary{ID: u.ID, Name: u.Name, Email: u.Email}
	} else {
		out.User = &entity.PartySummary{ID: t.UserID}
	}
	return &out
}

func (r *TransactionRepo) GetByID(_ context.Context, kind, id string) (*entity.Transaction, error) {
	defer r.lock()()
	t, ok := r.s.data.transactions[id]
	if !ok || t.Kind != kind {
		return nil, nil
	}
	return r.populate(t), nil
}

func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	defer r.lock()()
	var all []*entity.Transaction
	for _, t := range r.s.data.transactions {
		if t.Kind != f.Kind {
			continue
		}
		if f.CounterpartyID != "" && t.CounterpartyID() != f.CounterpartyID {
			continue
		}
		if f.StartDate != nil && t.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && !t.CreatedAt.Before(*f.EndDate) {
			continue
		}
		all = append(all, r.populate(t))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].InvoiceNumber > all[j].InvoiceNumber
	})
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *TransactionRepo) DeleteWithItems(_ context.Context, id string) error {
	defer r.lock()()
	if err := r.s.injected("transactions.delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.transactions[id]; !ok {
		return fmt.Errorf("%w: transacción %s", domain.ErrNotFound, id)
	}
	delete(r.s.data.transactions, id)
	return nil
}

// ── Numeración ──────────────────────────────────────────────────────────────

// InvoiceSequenceRepo contador por (tipo, día) en memoria.
type InvoiceSequenceRepo struct{ base }

func (r *InvoiceSequenceRepo) Next(_ context.Context, kind string, day time.Time) (int, error) {
	defer r.lock()()
	if err := r.s.injected("sequences.next"); err != nil {
		return 0, err
	}
	key := kind + "|" + day.Format("2006-01-02")
	r.s.data.sequences[key]++
	return r.s.data.sequences[key], nil
}
