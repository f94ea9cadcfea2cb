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

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Cabecera con los resúmenes de contraparte y usuario ya resueltos.
const transactionSelect = `
	SELECT t.id, t.kind, t.invoice_number, COALESCE(t.supplier_id, ''), COALESCE(t.customer_id, ''), t.user_id,
	       t.subtotal, t.discount, t.total_amount, t.payment_method, t.notes, t.created_at,
	       COALESCE(s.name, ''), COALESCE(s.email, ''), COALESCE(c.name, ''), COALESCE(c.email, ''),
	       u.name, u.email
	FROM transactions t
	LEFT JOIN suppliers s ON s.id = t.supplier_id
	LEFT JOIN customers c ON c.id = t.customer_id
	JOIN users u ON u.id = t.user_id`

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var supplierName, supplierEmail, customerName, customerEmail, userName, userEmail string
	err := row.Scan(&t.ID, &t.Kind, &t.InvoiceNumber, &t.SupplierID, &t.CustomerID, &t.UserID,
		&t.Subtotal, &t.Discount, &t.TotalAmount, &t.PaymentMethod, &t.Notes, &t.CreatedAt,
		&supplierName, &supplierEmail, &customerName, &customerEmail, &userName, &userEmail)
	if err != nil {
		return nil, err
	}
	if t.SupplierID != "" {
		t.Supplier = &entity.PartySummary{ID: t.SupplierID, Name: supplierName, Email: supplierEmail}
	}
	if t.CustomerID != "" {
		t.Customer = &entity.PartySummary{ID: t.CustomerID, Name: customerName, Email: customerEmail}
	}
	t.User = &entity.PartySummary{ID: t.UserID, Name: userName, Email: userEmail}
	return &t, nil
}

// CreateWithItems persiste la cabecera y sus líneas. Debe ejecutarse dentro de la transacción del motor.
func (r *TransactionRepo) CreateWithItems(ctx context.Context, t *entity.Transaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transactions (id, kind, invoice_number, supplier_id, customer_id, user_id, subtotal, discount, total_amount, payment_method, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Kind, t.InvoiceNumber, nullIfEmpty(t.SupplierID), nullIfEmpty(t.CustomerID), t.UserID,
		t.Subtotal, t.Discount, t.TotalAmount, t.PaymentMethod, t.Notes, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura %s ya existe", domain.ErrConflict, t.InvoiceNumber)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	for i := range t.Items {
		it := &t.Items[i]
		_, err := r.q.Exec(ctx, `
			INSERT INTO transaction_items (id, transaction_id, position, ingredient_id, quantity, price_per_unit, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, t.ID, it.Position, it.IngredientID, it.Quantity, it.PricePerUnit, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la transacción del tipo dado con sus líneas.
func (r *TransactionRepo) GetByID(ctx context.Context, kind, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, transactionSelect+` WHERE t.id = $1 AND t.kind = $2`, id, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Transaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List lista transacciones (más recientes primero) con sus líneas y el total sin paginar.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	var w whereBuilder
	w.add("t.kind = $%d", f.Kind)
	if f.CounterpartyID != "" {
		if f.Kind == entity.TransactionPurchase {
			w.add("t.supplier_id = $%d", f.CounterpartyID)
		} else {
			w.add("t.customer_id = $%d", f.CounterpartyID)
		}
	}
	if f.StartDate != nil {
		w.add("t.created_at >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		w.add("t.created_at < $%d", *f.EndDate)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query, args := paginate(transactionSelect+w.sql()+` ORDER BY t.created_at DESC, t.invoice_number DESC`, w.args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// loadItems carga las líneas de varias transacciones en una sola consulta.
func (r *TransactionRepo) loadItems(ctx context.Context, list []*entity.Transaction) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*entity.Transaction, len(list))
	for i, t := range list {
		ids[i] = t.ID
		byID[t.ID] = t
	}
	rows, err := r.q.Query(ctx, `
		SELECT it.id, it.transaction_id, it.position, it.ingredient_id, it.quantity, it.price_per_unit, it.subtotal, g.name, g.unit
		FROM transaction_items it
		JOIN ingredients g ON g.id = it.ingredient_id
		WHERE it.transaction_id = ANY($1)
		ORDER BY it.transaction_id, it.position`, ids)
	if err != nil {
		return fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.Position, &it.IngredientID, &it.Quantity,
			&it.PricePerUnit, &it.Subtotal, &it.IngredientName, &it.IngredientUnit); err != nil {
			return fmt.Errorf("scan transaction item: %w", err)
		}
		if t, ok := byID[it.TransactionID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}

// DeleteWithItems elimina la cabecera; las líneas se eliminan en cascada.
func (r *TransactionRepo) DeleteWithItems(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: transacción %s", domain.ErrNotFound, id)
	}
	return nil
}
