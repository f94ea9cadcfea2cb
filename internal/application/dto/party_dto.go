package dto

import (
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Contact string `json:"contact" validate:"max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"max=500"`
}

// UpdateSupplierRequest entrada para actualizar un proveedor.
type UpdateSupplierRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Contact  *string `json:"contact" validate:"omitempty,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	IsActive *bool   `json:"is_active"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Meta  PageMeta           `json:"meta"`
}

// NewSupplierResponse convierte la entidad en DTO.
func NewSupplierResponse(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID: s.ID, Name: s.Name, Contact: s.Contact, Phone: s.Phone, Email: s.Email, Address: s.Address,
		IsActive: s.IsActive, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

// CreateCustomerRequest entrada para crear un cliente.
type CreateCustomerRequest struct {
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Email           string          `json:"email" validate:"omitempty,email"`
	Phone           string          `json:"phone" validate:"max=50"`
	Address         string          `json:"address" validate:"max=500"`
	MembershipType  string          `json:"membership_type" validate:"omitempty,membership_type"`
	MembershipStart *time.Time      `json:"membership_start"`
	MembershipEnd   *time.Time      `json:"membership_end"`
	Discount        decimal.Decimal `json:"discount" validate:"gte=0,lte=100,decimal_scale=2"`
}

// UpdateCustomerRequest entrada para actualizar un cliente.
type UpdateCustomerRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Email           *string          `json:"email" validate:"omitempty,email"`
	Phone           *string          `json:"phone" validate:"omitempty,max=50"`
	Address         *string          `json:"address" validate:"omitempty,max=500"`
	MembershipType  *string          `json:"membership_type" validate:"omitempty,membership_type"`
	MembershipStart *time.Time       `json:"membership_start"`
	MembershipEnd   *time.Time       `json:"membership_end"`
	Discount        *decimal.Decimal `json:"discount" validate:"omitempty,gte=0,lte=100,decimal_scale=2"`
	IsActive        *bool            `json:"is_active"`
}

// CustomerResponse salida de un cliente. RecentSales solo en el detalle.
type CustomerResponse struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name"`
	Email               string                `json:"email,omitempty"`
	Phone               string                `json:"phone"`
	Address             string                `json:"address"`
	MembershipType      string                `json:"membership_type"`
	MembershipStart     *time.Time            `json:"membership_start,omitempty"`
	MembershipEnd       *time.Time            `json:"membership_end,omitempty"`
	Discount            decimal.Decimal       `json:"discount"`
	HasActiveMembership bool                  `json:"has_active_membership"`
	IsActive            bool                  `json:"is_active"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	RecentSales         []TransactionResponse `json:"recent_sales,omitempty"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Meta  PageMeta           `json:"meta"`
}

// NewCustomerResponse convierte la entidad en DTO evaluando la membresía en now.
func NewCustomerResponse(c *entity.Customer, now time.Time) CustomerResponse {
	return CustomerResponse{
		ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address,
		MembershipType: c.MembershipType, MembershipStart: c.MembershipStart, MembershipEnd: c.MembershipEnd,
		Discount: c.Discount, HasActiveMembership: c.HasActiveMembership(now),
		IsActive: c.IsActive, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}
