package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// IngredientUseCase CRUD de ingredientes y gestión de alertas de stock.
type IngredientUseCase struct {
	txRunner    TxRunner
	ingredients repository.IngredientRepository
	alerts      repository.StockAlertRepository
	reconciler  *AlertReconciler
	now         func() time.Time
}

// NewIngredientUseCase construye el caso de uso. Los repositorios son los de lectura (pool).
func NewIngredientUseCase(
	txRunner TxRunner,
	ingredients repository.IngredientRepository,
	alerts repository.StockAlertRepository,
	reconciler *AlertReconciler,
) *IngredientUseCase {
	return &IngredientUseCase{
		txRunner:    txRunner,
		ingredients: ingredients,
		alerts:      alerts,
		reconciler:  reconciler,
		now:         time.Now,
	}
}

// Create registra un ingrediente con su stock inicial y reconcilia la alerta en la misma transacción.
func (uc *IngredientUseCase) Create(ctx context.Context, in dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	if in.StockQuantity.IsNegative() || in.MinStock.IsNegative() || in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: stock, mínimo y precio no pueden ser negativos", domain.ErrInvalidInput)
	}
	if err := checkScales(in.StockQuantity, in.MinStock, in.Price); err != nil {
		return nil, err
	}
	now := uc.now()
	ing := &entity.Ingredient{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Unit:          in.Unit,
		StockQuantity: in.StockQuantity,
		MinStock:      in.MinStock,
		Price:         in.Price,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Ingredients.Create(ctx, ing); err != nil {
			return err
		}
		return uc.reconciler.Reconcile(ctx, repos.Alerts, ing)
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewIngredientResponse(ing)
	return &out, nil
}

// checkScales rechaza valores que la BD redondearía (stock y mínimo con 3 decimales, precio con 2).
func checkScales(stock, minStock, price decimal.Decimal) error {
	if !entity.FitsScale(stock, entity.QuantityScale) || !entity.FitsScale(minStock, entity.QuantityScale) {
		return fmt.Errorf("%w: stock y mínimo admiten como máximo %d decimales", domain.ErrInvalidInput, entity.QuantityScale)
	}
	if !entity.FitsScale(price, entity.PriceScale) {
		return fmt.Errorf("%w: el precio admite como máximo %d decimales", domain.ErrInvalidInput, entity.PriceScale)
	}
	return nil
}

// GetByID devuelve el ingrediente con is_low_stock.
func (uc *IngredientUseCase) GetByID(ctx context.Context, id string) (*dto.IngredientResponse, error) {
	ing, err := uc.ingredients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, id)
	}
	out := dto.NewIngredientResponse(ing)
	return &out, nil
}

// List lista ingredientes con búsqueda y filtro de stock bajo.
func (uc *IngredientUseCase) List(ctx context.Context, in dto.IngredientListRequest) (*dto.IngredientListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.ingredients.List(ctx, repository.IngredientFilter{
		ListFilter: repository.ListFilter{Search: in.Search, Limit: in.Limit, Offset: in.Offset()},
		LowStock:   in.LowStock,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.IngredientListResponse{Items: make([]dto.IngredientResponse, 0, len(list)), Meta: dto.NewPageMeta(in.PageRequest, total)}
	for _, ing := range list {
		out.Items = append(out.Items, dto.NewIngredientResponse(ing))
	}
	return out, nil
}

// Update modifica los datos descriptivos. Un cambio de min_stock reconcilia la alerta en la misma transacción.
func (uc *IngredientUseCase) Update(ctx context.Context, id string, in dto.UpdateIngredientRequest) (*dto.IngredientResponse, error) {
	var result *entity.Ingredient
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		ing, err := repos.Ingredients.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ing == nil {
			return fmt.Errorf("%w: ingrediente %s", domain.ErrNotFound, id)
		}
		if in.Name != nil {
			ing.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			ing.Description = *in.Description
		}
		if in.Unit != nil {
			ing.Unit = *in.Unit
		}
		if in.MinStock != nil {
			if in.MinStock.IsNegative() {
				return fmt.Errorf("%w: min_stock no puede ser negativo", domain.ErrInvalidInput)
			}
			if err := checkScales(*in.MinStock, decimal.Zero, decimal.Zero); err != nil {
				return err
			}
			ing.MinStock = *in.MinStock
		}
		if in.Price != nil {
			if in.Price.IsNegative() {
				return fmt.Errorf("%w: price no puede ser negativo", domain.ErrInvalidInput)
			}
			if err := checkScales(decimal.Zero, decimal.Zero, *in.Price); err != nil {
				return err
			}
			ing.Price = *in.Price
		}
		if in.IsActive != nil {
			ing.IsActive = *in.IsActive
		}
		ing.UpdatedAt = uc.now()
		if err := repos.Ingredients.Update(ctx, ing); err != nil {
			return err
		}
		result = ing
		return uc.reconciler.Reconcile(ctx, repos.Alerts, ing)
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewIngredientResponse(result)
	return &out, nil
}

// Delete elimina el ingrediente. Con transacciones registradas devuelve ErrConflict (desactivarlo en su lugar).
func (uc *IngredientUseCase) Delete(ctx context.Context, id string) error {
	return uc.ingredients.Delete(ctx, id)
}

// ListAlerts lista alertas abiertas (resolved=false) o resueltas (resolved=true).
func (uc *IngredientUseCase) ListAlerts(ctx context.Context, resolved bool) ([]dto.StockAlertResponse, error) {
	list, err := uc.alerts.List(ctx, &resolved)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockAlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.NewStockAlertResponse(a))
	}
	return out, nil
}

// ResolveAlert cierra manualmente una alerta. La próxima reconciliación la reabrirá si el stock sigue bajo.
func (uc *IngredientUseCase) ResolveAlert(ctx context.Context, id string) (*dto.StockAlertResponse, error) {
	a, err := uc.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: alerta %s", domain.ErrNotFound, id)
	}
	if !a.IsResolved {
		now := uc.now()
		if err := uc.alerts.Resolve(ctx, id, now); err != nil {
			return nil, err
		}
		a.IsResolved = true
		a.ResolvedAt = &now
	}
	out := dto.NewStockAlertResponse(a)
	return &out, nil
}
