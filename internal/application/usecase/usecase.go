// Package usecase contiene los casos de uso CRUD de los maestros: proveedores y clientes.
package usecase

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)
