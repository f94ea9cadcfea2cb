package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

const ingredientColumns = `id, name, description, unit, stock_quantity, min_stock, price, is_active, created_at, updated_at`

// IngredientRepo implementación del puerto IngredientRepository sobre PostgreSQL (usable con pool o tx).
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador de persistencia para ingredientes. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

func scanIngredient(row pgx.Row) (*entity.Ingredient, error) {
	var i entity.Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Unit, &i.StockQuantity, &i.MinStock, &i.Price,
		&i.IsActive, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create persiste un nuevo ingrediente con su stock inicial.
func (r *IngredientRepo) Create(ctx context.Context, in *entity.Ingredient) error {
	query := `
		INSERT INTO ingredients (` + ingredientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		in.ID, in.Name, in.Description, in.Unit, in.StockQuantity, in.MinStock, in.Price,
		in.IsActive, in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ingrediente %s ya existe", domain.ErrConflict, in.ID)
		}
		return fmt.Errorf("insert ingredient: %w", err)
	}
	return nil
}

// GetByID obtiene un ingrediente por ID.
func (r *IngredientRepo) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	i, err := scanIngredient(r.q.QueryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return i, nil
}

// GetForUpdate obtiene el ingrediente y bloquea la fila para update (SELECT FOR UPDATE).
func (r *IngredientRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error) {
	i, err := scanIngredient(r.q.QueryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient for update: %w", err)
	}
	return i, nil
}

// Update actualiza los datos descriptivos. No modifica stock_quantity (solo vía UpdateStock).
func (r *IngredientRepo) Update(ctx context.Context, in *entity.Ingredient) error {
	query := `
		UPDATE ingredients SET name = $2, description = $3, unit = $4, min_stock = $5, price = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, in.ID, in.Name, in.Description, in.Unit, in.MinStock, in.Price, in.IsActive, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, in.ID)
	}
	return nil
}

// UpdateStock fija la cantidad en stock (usado por el servicio de stock dentro de la transacción).
func (r *IngredientRepo) UpdateStock(ctx context.Context, id string, quantity decimal.Decimal, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE ingredients SET stock_quantity = $2, updated_at = $3 WHERE id = $1`,
		id, quantity, at,
	)
	if err != nil {
		return fmt.Errorf("update ingredient stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, id)
	}
	return nil
}

// List lista ingredientes por nombre con filtros de búsqueda y stock bajo. Devuelve además el total sin paginar.
func (r *IngredientRepo) List(ctx context.Context, f repository.IngredientFilter) ([]*entity.Ingredient, int, error) {
	var w whereBuilder
	if f.Search != "" {
		w.add("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", likePattern(f.Search))
	}
	if f.LowStock {
		w.addRaw("stock_quantity <= min_stock")
	}
	if f.ActiveOnly {
		w.addRaw("is_active")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ingredients: %w", err)
	}

	query, args := paginate(`SELECT `+ingredientColumns+` FROM ingredients`+w.sql()+` ORDER BY name ASC, id ASC`, w.args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ingredient
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, i)
	}
	return list, total, rows.Err()
}

// Delete elimina un ingrediente. Las alertas se eliminan en cascada; si hay líneas de transacción que lo
// referencian devuelve ErrConflict.
func (r *IngredientRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el ingrediente tiene transacciones registradas", domain.ErrConflict)
		}
		return fmt.Errorf("delete ingredient: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, id)
	}
	return nil
}
