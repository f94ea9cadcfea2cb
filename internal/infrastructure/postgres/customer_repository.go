package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// email es NULL cuando el cliente no lo tiene: el UNIQUE solo aplica a los presentes.
const customerColumns = `id, name, COALESCE(email, ''), phone, address, membership_type, membership_start, membership_end, discount, is_active, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.MembershipType,
		&c.MembershipStart, &c.MembershipEnd, &c.Discount, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, address, membership_type, membership_start, membership_end, discount, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Name, nullIfEmpty(c.Email), c.Phone, c.Address, c.MembershipType,
		c.MembershipStart, c.MembershipEnd, c.Discount, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, c.Email)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByEmail obtiene un cliente por email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return c, nil
}

// Update actualiza un cliente existente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE customers SET name = $2, email = $3, phone = $4, address = $5, membership_type = $6,
		       membership_start = $7, membership_end = $8, discount = $9, is_active = $10, updated_at = $11
		WHERE id = $1`,
		c.ID, c.Name, nullIfEmpty(c.Email), c.Phone, c.Address, c.MembershipType,
		c.MembershipStart, c.MembershipEnd, c.Discount, c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, c.Email)
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, c.ID)
	}
	return nil
}

// List lista clientes por nombre, con búsqueda por nombre, email o teléfono.
func (r *CustomerRepo) List(ctx context.Context, f repository.ListFilter) ([]*entity.Customer, int, error) {
	var w whereBuilder
	if f.Search != "" {
		w.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR phone ILIKE $%[1]d)", likePattern(f.Search))
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}
	query, args := paginate(`SELECT `+customerColumns+` FROM customers`+w.sql()+` ORDER BY name ASC, id ASC`, w.args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Delete elimina un cliente; con ventas registradas devuelve ErrConflict.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el cliente tiene ventas registradas", domain.ErrConflict)
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return nil
}
