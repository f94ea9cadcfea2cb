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
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo implementación de StockAlertRepository (usable con pool o tx).
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

const alertColumns = `id, ingredient_id, message, is_resolved, created_at, resolved_at`

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	if err := row.Scan(&a.ID, &a.IngredientID, &a.Message, &a.IsResolved, &a.CreatedAt, &a.ResolvedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persiste una alerta abierta. El índice único parcial impide una segunda alerta abierta
// para el mismo ingrediente: en ese caso devuelve ErrConflict.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO stock_alerts (`+alertColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.IngredientID, a.Message, a.IsResolved, a.CreatedAt, a.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya existe una alerta abierta para el ingrediente", domain.ErrConflict)
		}
		return fmt.Errorf("insert stock alert: %w", err)
	}
	return nil
}

// GetByID obtiene una alerta por ID.
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock alert: %w", err)
	}
	return a, nil
}

// FindUnresolvedByIngredient devuelve la alerta abierta del ingrediente, si existe.
func (r *StockAlertRepo) FindUnresolvedByIngredient(ctx context.Context, ingredientID string) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM stock_alerts WHERE ingredient_id = $1 AND NOT is_resolved LIMIT 1`, ingredientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open stock alert: %w", err)
	}
	return a, nil
}

// ResolveByIngredient cierra todas las alertas abiertas del ingrediente.
func (r *StockAlertRepo) ResolveByIngredient(ctx context.Context, ingredientID string, at time.Time) (int, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_alerts SET is_resolved = TRUE, resolved_at = $2 WHERE ingredient_id = $1 AND NOT is_resolved`,
		ingredientID, at,
	)
	if err != nil {
		return 0, fmt.Errorf("resolve stock alerts: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// Resolve cierra una alerta concreta (resolución manual). Cerrar una alerta ya resuelta no la modifica.
func (r *StockAlertRepo) Resolve(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE stock_alerts SET is_resolved = TRUE, resolved_at = $2 WHERE id = $1 AND NOT is_resolved`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("resolve stock alert: %w", err)
	}
	return nil
}

// List lista alertas (más recientes primero) con el resumen del ingrediente.
func (r *StockAlertRepo) List(ctx context.Context, resolved *bool) ([]*entity.StockAlert, error) {
	var w whereBuilder
	if resolved != nil {
		w.add("a.is_resolved = $%d", *resolved)
	}
	query := `
		SELECT a.id, a.ingredient_id, a.message, a.is_resolved, a.created_at, a.resolved_at,
		       i.name, i.unit, i.stock_quantity, i.min_stock
		FROM stock_alerts a
		JOIN ingredients i ON i.id = a.ingredient_id` + w.sql() + `
		ORDER BY a.created_at DESC`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock alerts: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAlert
	for rows.Next() {
		var a entity.StockAlert
		var s entity.IngredientSummary
		if err := rows.Scan(&a.ID, &a.IngredientID, &a.Message, &a.IsResolved, &a.CreatedAt, &a.ResolvedAt,
			&s.Name, &s.Unit, &s.StockQuantity, &s.MinStock); err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		s.ID = a.IngredientID
		a.Ingredient = &s
		list = append(list, &a)
	}
	return list, rows.Err()
}

// CountUnresolved cuenta las alertas abiertas (dashboard).
func (r *StockAlertRepo) CountUnresolved(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_alerts WHERE NOT is_resolved`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count open stock alerts: %w", err)
	}
	return n, nil
}
