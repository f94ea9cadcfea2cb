package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero" // responsable de stock y compras
	RoleVendedor  = "vendedor"  // caja: ventas y clientes
)

// Roles lista todos los roles válidos.
var Roles = []string{RoleAdmin, RoleBodeguero, RoleVendedor}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, bodeguero, vendedor
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
