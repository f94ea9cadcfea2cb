package usecase

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
)

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
	now  func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, now: time.Now}
}

// Create crea un proveedor activo.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	now := uc.now()
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      name,
		Contact:   in.Contact,
		Phone:     in.Phone,
		Email:     strings.TrimSpace(in.Email),
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	out := dto.NewSupplierResponse(supplier)
	return &out, nil
}

// GetByID obtiene un proveedor.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewSupplierResponse(supplier)
	return &out, nil
}

func (uc *SupplierUseCase) get(ctx context.Context, id string) (*entity.Supplier, error) {
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	return supplier, nil
}

// Update actualiza los campos informados; is_active=false desactiva el proveedor para nuevas compras.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		supplier.Name = strings.TrimSpace(*in.Name)
	}
	if in.Contact != nil {
		supplier.Contact = *in.Contact
	}
	if in.Phone != nil {
		supplier.Phone = *in.Phone
	}
	if in.Email != nil {
		supplier.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		supplier.Address = *in.Address
	}
	if in.IsActive != nil {
		supplier.IsActive = *in.IsActive
	}
	if supplier.Name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	supplier.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	out := dto.NewSupplierResponse(supplier)
	return &out, nil
}

// List lista proveedores por nombre con búsqueda y paginación.
func (uc *SupplierUseCase) List(ctx context.Context, in dto.SearchRequest) (*dto.SupplierListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ListFilter{Search: in.Search, Limit: in.Limit, Offset: in.Offset()})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.NewSupplierResponse(s))
	}
	return &dto.SupplierListResponse{Items: items, Meta: dto.NewPageMeta(in.PageRequest, total)}, nil
}

// Delete elimina un proveedor. Con compras registradas devuelve ErrConflict: desactivarlo es la alternativa.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}
