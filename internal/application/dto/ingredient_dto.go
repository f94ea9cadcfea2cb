package dto

import (
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateIngredientRequest entrada para crear un ingrediente. StockQuantity es el stock inicial.
type CreateIngredientRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   string          `json:"description" validate:"max=1000"`
	Unit          string          `json:"unit" validate:"required,unit"`
	StockQuantity decimal.Decimal `json:"stock_quantity" validate:"gte=0,decimal_scale=3"`
	MinStock      decimal.Decimal `json:"min_stock" validate:"gte=0,decimal_scale=3"`
	Price         decimal.Decimal `json:"price" validate:"gte=0,decimal_scale=2"`
}

// UpdateIngredientRequest entrada para actualizar un ingrediente (sin stock: se mueve solo por transacciones).
type UpdateIngredientRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Unit        *string          `json:"unit" validate:"omitempty,unit"`
	MinStock    *decimal.Decimal `json:"min_stock" validate:"omitempty,gte=0,decimal_scale=3"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0,decimal_scale=2"`
	IsActive    *bool            `json:"is_active"`
}

// IngredientListRequest filtros del listado de ingredientes.
type IngredientListRequest struct {
	PageRequest
	Search   string `query:"search" validate:"max=100"`
	LowStock bool   `query:"low_stock"`
}

// IngredientResponse salida de un ingrediente.
type IngredientResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinStock      decimal.Decimal `json:"min_stock"`
	Price         decimal.Decimal `json:"price"`
	IsActive      bool            `json:"is_active"`
	IsLowStock    bool            `json:"is_low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IngredientListResponse lista paginada de ingredientes.
type IngredientListResponse struct {
	Items []IngredientResponse `json:"items"`
	Meta  PageMeta             `json:"meta"`
}

// StockAlertResponse salida de una alerta de stock.
type StockAlertResponse struct {
	ID           string             `json:"id"`
	IngredientID string             `json:"ingredient_id"`
	Message      string             `json:"message"`
	IsResolved   bool               `json:"is_resolved"`
	CreatedAt    time.Time          `json:"created_at"`
	ResolvedAt   *time.Time         `json:"resolved_at,omitempty"`
	Ingredient   *IngredientSummary `json:"ingredient,omitempty"`
}

// IngredientSummary resumen de ingrediente anidado en alertas.
type IngredientSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinStock      decimal.Decimal `json:"min_stock"`
}

// NewIngredientResponse convierte la entidad en DTO (incluye is_low_stock derivado).
func NewIngredientResponse(i *entity.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:            i.ID,
		Name:          i.Name,
		Description:   i.Description,
		Unit:          i.Unit,
		StockQuantity: i.StockQuantity,
		MinStock:      i.MinStock,
		Price:         i.Price,
		IsActive:      i.IsActive,
		IsLowStock:    i.IsLowStock(),
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// NewStockAlertResponse convierte la alerta en DTO.
func NewStockAlertResponse(a *entity.StockAlert) StockAlertResponse {
	out := StockAlertResponse{
		ID:           a.ID,
		IngredientID: a.IngredientID,
		Message:      a.Message,
		IsResolved:   a.IsResolved,
		CreatedAt:    a.CreatedAt,
		ResolvedAt:   a.ResolvedAt,
	}
	if a.Ingredient != nil {
		out.Ingredient = &IngredientSummary{
			ID:            a.Ingredient.ID,
			Name:          a.Ingredient.Name,
			Unit:          a.Ingredient.Unit,
			StockQuantity: a.Ingredient.StockQuantity,
			MinStock:      a.Ingredient.MinStock,
		}
	}
	return out
}
