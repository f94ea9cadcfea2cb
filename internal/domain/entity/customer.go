package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de membresía de cliente.
const (
	MembershipNone    = "NONE"
	MembershipMonthly = "MONTHLY"
	MembershipYearly  = "YEARLY"
)

// MembershipTypes lista los tipos de membresía aceptados.
var MembershipTypes = []string{MembershipNone, MembershipMonthly, MembershipYearly}

// Customer representa un cliente (contraparte opcional de las ventas).
type Customer struct {
	ID              string
	Name            string
	Email           string // único cuando no está vacío
	Phone           string
	Address         string
	MembershipType  string
	MembershipStart *time.Time
	MembershipEnd   *time.Time
	Discount        decimal.Decimal // porcentaje 0-100
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasActiveMembership indica si la membresía da derecho a descuento en el instante now:
// tipo distinto de NONE y fecha de fin estrictamente en el futuro.
func (c *Customer) HasActiveMembership(now time.Time) bool {
	if c.MembershipType == "" || c.MembershipType == MembershipNone {
		return false
	}
	return c.MembershipEnd != nil && c.MembershipEnd.After(now)
}
