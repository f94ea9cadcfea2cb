package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Se envuelven con fmt.Errorf("%w: ...") para añadir el detalle legible;
// los callers comparan siempre con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInactive          = errors.New("recurso inactivo")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
)
