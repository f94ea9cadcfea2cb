package dto

import (
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PurchaseItemRequest línea de compra: el precio lo informa el proveedor.
type PurchaseItemRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0,decimal_scale=3"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" validate:"gte=0,decimal_scale=2"`
}

// CreatePurchaseRequest entrada para registrar una compra.
type CreatePurchaseRequest struct {
	SupplierID string                `json:"supplier_id" validate:"required"`
	Notes      string                `json:"notes" validate:"max=1000"`
	Items      []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemRequest línea de venta: el precio se toma del ingrediente.
type SaleItemRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0,decimal_scale=3"`
}

// CreateSaleRequest entrada para registrar una venta. CustomerID es opcional.
type CreateSaleRequest struct {
	CustomerID    string            `json:"customer_id"`
	PaymentMethod string            `json:"payment_method" validate:"required,payment_method"`
	Notes         string            `json:"notes" validate:"max=1000"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransactionListRequest filtros del listado de compras o ventas.
type TransactionListRequest struct {
	PageRequest
	StartDate      string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	CounterpartyID string `query:"-"`
}

// PartyResponse resumen de proveedor, cliente o usuario.
type PartyResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// LineItemResponse salida de una línea.
type LineItemResponse struct {
	ID             string          `json:"id"`
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	PricePerUnit   decimal.Decimal `json:"price_per_unit"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// TransactionResponse salida de una compra o venta con sus líneas.
type TransactionResponse struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	InvoiceNumber string             `json:"invoice_number"`
	Supplier      *PartyResponse     `json:"supplier,omitempty"`
	Customer      *PartyResponse     `json:"customer,omitempty"`
	User          *PartyResponse     `json:"user,omitempty"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []LineItemResponse `json:"items"`
}

// TransactionListResponse lista paginada de compras o ventas.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Meta  PageMeta              `json:"meta"`
}

func newParty(p *entity.PartySummary) *PartyResponse {
	if p == nil {
		return nil
	}
	return &PartyResponse{ID: p.ID, Name: p.Name, Email: p.Email}
}

// NewTransactionResponse convierte la transacción en DTO.
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	out := TransactionResponse{
		ID:            t.ID,
		Kind:          t.Kind,
		InvoiceNumber: t.InvoiceNumber,
		Supplier:      newParty(t.Supplier),
		Customer:      newParty(t.Customer),
		User:          newParty(t.User),
		Subtotal:      t.Subtotal,
		Discount:      t.Discount,
		TotalAmount:   t.TotalAmount,
		PaymentMethod: t.PaymentMethod,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		Items:         make([]LineItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, LineItemResponse{
			ID:             it.ID,
			IngredientID:   it.IngredientID,
			IngredientName: it.IngredientName,
			Unit:           it.IngredientUnit,
			Quantity:       it.Quantity,
			PricePerUnit:   it.PricePerUnit,
			Subtotal:       it.Subtotal,
		})
	}
	return out
}
