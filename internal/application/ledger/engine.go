// Package ledger contiene el motor de transacciones del libro de inventario: compras y ventas
// que validan, calculan totales, numeran y mueven stock en una sola unidad atómica.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	domledger "github.com/jhoicas/dailybakes-api/internal/domain/ledger"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/jhoicas/dailybakes-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Observer recibe la duración y el resultado de cada operación del motor (métricas).
type Observer interface {
	ObserveTransaction(kind, op, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveTransaction(string, string, string, time.Duration) {}

// Config prefijos de numeración por tipo de transacción.
type Config struct {
	PurchasePrefix string
	SalePrefix     string
}

// Engine motor de compras y ventas.
type Engine struct {
	txRunner     inventory.TxRunner
	transactions repository.TransactionRepository
	stock        *inventory.StockService
	sequencer    *InvoiceSequencer
	prefixes     map[string]string
	observer     Observer
	log          *logger.Logger
	now          func() time.Time
}

// NewEngine construye el motor. transactions es el repositorio de lectura (pool);
// las escrituras usan siempre los repositorios de la transacción abierta por txRunner.
func NewEngine(
	txRunner inventory.TxRunner,
	transactions repository.TransactionRepository,
	stock *inventory.StockService,
	sequencer *InvoiceSequencer,
	cfg Config,
	observer Observer,
	log *logger.Logger,
) *Engine {
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		txRunner:     txRunner,
		transactions: transactions,
		stock:        stock,
		sequencer:    sequencer,
		prefixes: map[string]string{
			entity.TransactionPurchase: cfg.PurchasePrefix,
			entity.TransactionSale:     cfg.SalePrefix,
		},
		observer: observer,
		log:      log.Component("ledger"),
		now:      time.Now,
	}
}

// draftLine línea pedida por el caller. price solo viene informado en compras.
type draftLine struct {
	ingredientID string
	quantity     decimal.Decimal
	price        *decimal.Decimal
}

// draft forma común de compras y ventas antes de validar.
type draft struct {
	kind          string
	userID        string
	supplierID    string
	customerID    string
	paymentMethod string
	notes         string
	lines         []draftLine
}

// CreatePurchase registra una compra: el proveedor es obligatorio y el precio lo informa el caller.
func (e *Engine) CreatePurchase(ctx context.Context, userID string, in dto.CreatePurchaseRequest) (*entity.Transaction, error) {
	d := draft{
		kind:       entity.TransactionPurchase,
		userID:     userID,
		supplierID: in.SupplierID,
		notes:      in.Notes,
		lines:      make([]draftLine, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		price := it.PricePerUnit
		d.lines = append(d.lines, draftLine{ingredientID: it.IngredientID, quantity: it.Quantity, price: &price})
	}
	return e.create(ctx, d)
}

// CreateSale registra una venta: cliente opcional, precio tomado del ingrediente y descuento por membresía.
func (e *Engine) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*entity.Transaction, error) {
	d := draft{
		kind:          entity.TransactionSale,
		userID:        userID,
		customerID:    in.CustomerID,
		paymentMethod: in.PaymentMethod,
		notes:         in.Notes,
		lines:         make([]draftLine, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		d.lines = append(d.lines, draftLine{ingredientID: it.IngredientID, quantity: it.Quantity})
	}
	return e.create(ctx, d)
}

func (e *Engine) create(ctx context.Context, d draft) (*entity.Transaction, error) {
	start := time.Now()
	if err := validateDraft(d); err != nil {
		e.observe(d.kind, "create", start, err)
		return nil, err
	}

	var created *entity.Transaction
	err := e.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		// Todo el estado se reconstruye en cada intento: TxRunner puede reintentar la unidad.
		created = nil
		t, err := e.build(ctx, repos, d)
		if err != nil {
			return err
		}
		if err := repos.Transactions.CreateWithItems(ctx, t); err != nil {
			return fmt.Errorf("crear transacción: %w", err)
		}
		if err := e.applyStock(ctx, repos, t.Items, t.StockDirection()); err != nil {
			return err
		}
		out, err := repos.Transactions.GetByID(ctx, t.Kind, t.ID)
		if err != nil {
			return fmt.Errorf("recargar transacción: %w", err)
		}
		if out == nil {
			return fmt.Errorf("%w: transacción %s", domain.ErrNotFound, t.ID)
		}
		created = out
		return nil
	})
	e.observe(d.kind, "create", start, err)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("kind", created.Kind).
		Str("id", created.ID).
		Str("invoice_number", created.InvoiceNumber).
		Str("total", created.TotalAmount.String()).
		Int("items", len(created.Items)).
		Str("user_id", created.UserID).
		Msg("transacción registrada")
	return created, nil
}

// validateDraft validaciones que no requieren leer la BD.
func validateDraft(d draft) error {
	if d.userID == "" {
		return fmt.Errorf("%w: usuario requerido", domain.ErrUnauthorized)
	}
	if len(d.lines) == 0 {
		return fmt.Errorf("%w: la transacción debe tener al menos una línea", domain.ErrInvalidInput)
	}
	if d.kind == entity.TransactionPurchase && d.supplierID == "" {
		return fmt.Errorf("%w: proveedor requerido", domain.ErrInvalidInput)
	}
	if d.kind == entity.TransactionSale && !validPaymentMethod(d.paymentMethod) {
		return fmt.Errorf("%w: método de pago %q no soportado", domain.ErrInvalidInput, d.paymentMethod)
	}
	for i, l := range d.lines {
		if l.ingredientID == "" {
			return fmt.Errorf("%w: línea %d sin ingrediente", domain.ErrInvalidInput, i+1)
		}
		if !l.quantity.IsPositive() {
			return fmt.Errorf("%w: línea %d: la cantidad debe ser mayor que cero", domain.ErrInvalidInput, i+1)
		}
		if !entity.FitsScale(l.quantity, entity.QuantityScale) {
			return fmt.Errorf("%w: línea %d: la cantidad admite como máximo %d decimales", domain.ErrInvalidInput, i+1, entity.QuantityScale)
		}
		if l.price != nil && l.price.IsNegative() {
			return fmt.Errorf("%w: línea %d: el precio no puede ser negativo", domain.ErrInvalidInput, i+1)
		}
		if l.price != nil && !entity.FitsScale(*l.price, entity.PriceScale) {
			return fmt.Errorf("%w: línea %d: el precio admite como máximo %d decimales", domain.ErrInvalidInput, i+1, entity.PriceScale)
		}
	}
	return nil
}

func validPaymentMethod(m string) bool {
	for _, pm := range entity.PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// build valida contraparte e ingredientes con las filas bloqueadas y arma la transacción numerada.
// No escribe nada salvo el contador de numeración.
func (e *Engine) build(ctx context.Context, repos repository.TxRepos, d draft) (*entity.Transaction, error) {
	now := e.now()
	t := &entity.Transaction{
		ID:            uuid.New().String(),
		Kind:          d.kind,
		SupplierID:    d.supplierID,
		CustomerID:    d.customerID,
		UserID:        d.userID,
		PaymentMethod: d.paymentMethod,
		Notes:         d.notes,
		Discount:      decimal.Zero,
		CreatedAt:     now,
	}

	// 1. Contraparte
	var customer *entity.Customer
	switch d.kind {
	case entity.TransactionPurchase:
		s, err := repos.Suppliers.GetByID(ctx, d.supplierID)
		if err != nil {
			return nil, fmt.Errorf("obtener proveedor: %w", err)
		}
		if s == nil {
			return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, d.supplierID)
		}
		if !s.IsActive {
			return nil, fmt.Errorf("%w: el proveedor %s está inactivo", domain.ErrInactive, s.Name)
		}
	case entity.TransactionSale:
		if d.customerID != "" {
			c, err := repos.Customers.GetByID(ctx, d.customerID)
			if err != nil {
				return nil, fmt.Errorf("obtener cliente: %w", err)
			}
			if c == nil {
				return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, d.customerID)
			}
			if !c.IsActive {
				return nil, fmt.Errorf("%w: el cliente %s está inactivo", domain.ErrInactive, c.Name)
			}
			customer = c
		}
	}

	// 2. Ingredientes: se bloquean en orden de id, el mismo orden en que luego se ajusta el stock.
	items := make([]entity.LineItem, 0, len(d.lines))
	for i, l := range d.lines {
		items = append(items, entity.LineItem{
			ID:            uuid.New().String(),
			TransactionID: t.ID,
			Position:      i + 1,
			IngredientID:  l.ingredientID,
			Quantity:      l.quantity,
		})
	}
	ids, totals := domledger.AggregateQuantities(items)
	sort.Strings(ids)
	ingredients := make(map[string]*entity.Ingredient, len(ids))
	for _, id := range ids {
		ing, err := repos.Ingredients.GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("obtener ingrediente: %w", err)
		}
		if ing == nil {
			return nil, fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, id)
		}
		if !ing.IsActive {
			return nil, fmt.Errorf("%w: el ingrediente %s está inactivo", domain.ErrInactive, ing.Name)
		}
		if d.kind == entity.TransactionSale && totals[id].GreaterThan(ing.StockQuantity) {
			return nil, fmt.Errorf("%w: %s tiene %s %s, se requieren %s",
				domain.ErrInsufficientStock, ing.Name, ing.StockQuantity.String(), ing.Unit, totals[id].String())
		}
		ingredients[id] = ing
	}

	// 3. Precios y totales
	for i := range items {
		ing := ingredients[items[i].IngredientID]
		price := ing.Price
		if p := d.lines[i].price; p != nil {
			price = *p
		}
		items[i].PricePerUnit = price
		items[i].Subtotal = domledger.LineSubtotal(items[i].Quantity, price)
		items[i].IngredientName = ing.Name
		items[i].IngredientUnit = ing.Unit
	}
	t.Items = items
	t.Subtotal = domledger.Subtotal(items)
	if d.kind == entity.TransactionSale {
		t.Discount = domledger.MembershipDiscount(t.Subtotal, customer, now)
	}
	t.TotalAmount = t.Subtotal.Sub(t.Discount)

	// 4. Numeración
	number, err := e.sequencer.Next(ctx, repos.Sequences, e.prefixes[d.kind], d.kind, now)
	if err != nil {
		return nil, err
	}
	t.InvoiceNumber = number
	return t, nil
}

// applyStock ajusta el stock agregado por ingrediente en orden de id.
func (e *Engine) applyStock(ctx context.Context, repos repository.TxRepos, items []entity.LineItem, dir entity.StockDirection) error {
	ids, totals := domledger.AggregateQuantities(items)
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := e.stock.AdjustStock(ctx, repos, id, totals[id], dir); err != nil {
			return err
		}
	}
	return nil
}

// Remove elimina una compra o venta revirtiendo su efecto en stock. Una compra cuyo stock
// ya se consumió falla con ErrInsufficientStock y no cambia nada.
func (e *Engine) Remove(ctx context.Context, kind, id string) error {
	start := time.Now()
	var removed *entity.Transaction
	err := e.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		removed = nil
		t, err := repos.Transactions.GetByID(ctx, kind, id)
		if err != nil {
			return fmt.Errorf("obtener transacción: %w", err)
		}
		if t == nil {
			return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kindLabel(kind), id)
		}
		if err := e.applyStock(ctx, repos, t.Items, t.StockDirection().Reverse()); err != nil {
			return err
		}
		if err := repos.Transactions.DeleteWithItems(ctx, t.ID); err != nil {
			return fmt.Errorf("eliminar transacción: %w", err)
		}
		removed = t
		return nil
	})
	e.observe(kind, "remove", start, err)
	if err != nil {
		return err
	}
	e.log.Info().
		Str("kind", removed.Kind).
		Str("id", removed.ID).
		Str("invoice_number", removed.InvoiceNumber).
		Msg("transacción eliminada, stock revertido")
	return nil
}

// Get devuelve la transacción del tipo dado con líneas y resúmenes.
func (e *Engine) Get(ctx context.Context, kind, id string) (*entity.Transaction, error) {
	t, err := e.transactions.GetByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("obtener transacción: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kindLabel(kind), id)
	}
	return t, nil
}

// List lista compras o ventas paginadas. Las fechas se interpretan en la zona de numeración
// y end_date es inclusiva (hasta el final de ese día).
func (e *Engine) List(ctx context.Context, kind string, in dto.TransactionListRequest) (*dto.TransactionListResponse, error) {
	in.DefaultPage()
	filter := repository.TransactionFilter{
		Kind:           kind,
		CounterpartyID: in.CounterpartyID,
		Limit:          in.Limit,
		Offset:         in.Offset(),
	}
	loc := e.sequencer.Location()
	if in.StartDate != "" {
		s, err := time.ParseInLocation("2006-01-02", in.StartDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		filter.StartDate = &s
	}
	if in.EndDate != "" {
		end, err := time.ParseInLocation("2006-01-02", in.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		end = end.AddDate(0, 0, 1)
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil && !filter.StartDate.Before(*filter.EndDate) {
		return nil, fmt.Errorf("%w: start_date no puede ser posterior a end_date", domain.ErrInvalidInput)
	}

	list, total, err := e.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar transacciones: %w", err)
	}
	out := &dto.TransactionListResponse{
		Items: make([]dto.TransactionResponse, 0, len(list)),
		Meta:  dto.NewPageMeta(in.PageRequest, total),
	}
	for _, t := range list {
		out.Items = append(out.Items, dto.NewTransactionResponse(t))
	}
	return out, nil
}

func (e *Engine) observe(kind, op string, start time.Time, err error) {
	e.observer.ObserveTransaction(kind, op, Outcome(err), time.Since(start))
}

// Outcome etiqueta de resultado para métricas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInactive):
		return "inactive"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnauthorized):
		return "invalid"
	default:
		return "error"
	}
}

func kindLabel(kind string) string {
	if kind == entity.TransactionPurchase {
		return "compra"
	}
	return "venta"
}
