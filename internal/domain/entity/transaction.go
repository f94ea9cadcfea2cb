package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de inventario.
const (
	TransactionPurchase = "PURCHASE" // entrada de stock (proveedor)
	TransactionSale     = "SALE"     // salida de stock (cliente)
)

// Métodos de pago de ventas.
const (
	PaymentCash       = "CASH"
	PaymentTransfer   = "TRANSFER"
	PaymentQRIS       = "QRIS"
	PaymentDebitCard  = "DEBIT_CARD"
	PaymentCreditCard = "CREDIT_CARD"
)

// PaymentMethods lista los métodos de pago aceptados.
var PaymentMethods = []string{PaymentCash, PaymentTransfer, PaymentQRIS, PaymentDebitCard, PaymentCreditCard}

// Transaction cabecera de una compra o venta. Inmutable tras su creación:
// solo se crea junto con sus líneas o se elimina (revirtiendo el stock).
type Transaction struct {
	ID            string
	Kind          string // PURCHASE | SALE
	InvoiceNumber string // PREFIX/YYYYMMDD/SSSS, único
	SupplierID    string // compras
	CustomerID    string // ventas, opcional
	UserID        string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal // solo ventas
	TotalAmount   decimal.Decimal
	PaymentMethod string // solo ventas
	Notes         string
	CreatedAt     time.Time
	Items         []LineItem

	// Resúmenes resueltos para respuestas (no se persisten en transactions).
	Supplier *PartySummary
	Customer *PartySummary
	User     *PartySummary
}

// StockDirection sentido del efecto en stock al crear la transacción.
func (t *Transaction) StockDirection() StockDirection {
	if t.Kind == TransactionPurchase {
		return StockIncrease
	}
	return StockDecrease
}

// CounterpartyID devuelve el proveedor (compra) o el cliente (venta).
func (t *Transaction) CounterpartyID() string {
	if t.Kind == TransactionPurchase {
		return t.SupplierID
	}
	return t.CustomerID
}

// PartySummary datos mínimos de proveedor, cliente o usuario.
type PartySummary struct {
	ID    string
	Name  string
	Email string
}
