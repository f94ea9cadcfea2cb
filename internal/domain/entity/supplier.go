package entity

import "time"

// Supplier proveedor de ingredientes (contraparte de las compras).
type Supplier struct {
	ID        string
	Name      string
	Contact   string // persona de contacto
	Phone     string
	Email     string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
