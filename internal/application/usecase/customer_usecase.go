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

// recentSales número de ventas incluidas en el detalle del cliente.
const recentSales = 5

// CustomerUseCase casos de uso para clientes y sus membresías.
type CustomerUseCase struct {
	repo         repository.CustomerRepository
	transactions repository.TransactionRepository
	now          func() time.Time
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, transactions repository.TransactionRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, transactions: transactions, now: time.Now}
}

// Create crea un cliente. El email, si viene, debe ser único (ErrConflict).
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	now := uc.now()
	customer := &entity.Customer{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           in.Phone,
		Address:         in.Address,
		MembershipType:  in.MembershipType,
		MembershipStart: in.MembershipStart,
		MembershipEnd:   in.MembershipEnd,
		Discount:        in.Discount,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if customer.MembershipType == "" {
		customer.MembershipType = entity.MembershipNone
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if err := uc.ensureEmailFree(ctx, customer.Email, ""); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	out := dto.NewCustomerResponse(customer, now)
	return &out, nil
}

// GetByID devuelve el cliente con sus últimas ventas.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, _, err := uc.transactions.List(ctx, repository.TransactionFilter{
		Kind:           entity.TransactionSale,
		CounterpartyID: id,
		Limit:          recentSales,
	})
	if err != nil {
		return nil, fmt.Errorf("ventas del cliente: %w", err)
	}
	out := dto.NewCustomerResponse(customer, uc.now())
	out.RecentSales = make([]dto.TransactionResponse, 0, len(sales))
	for _, s := range sales {
		out.RecentSales = append(out.RecentSales, dto.NewTransactionResponse(s))
	}
	return &out, nil
}

func (uc *CustomerUseCase) get(ctx context.Context, id string) (*entity.Customer, error) {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return customer, nil
}

// Update actualiza los campos informados.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		customer.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := uc.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		customer.Email = email
	}
	if in.Phone != nil {
		customer.Phone = *in.Phone
	}
	if in.Address != nil {
		customer.Address = *in.Address
	}
	if in.MembershipType != nil {
		customer.MembershipType = *in.MembershipType
	}
	if in.MembershipStart != nil {
		customer.MembershipStart = in.MembershipStart
	}
	if in.MembershipEnd != nil {
		customer.MembershipEnd = in.MembershipEnd
	}
	if in.Discount != nil {
		customer.Discount = *in.Discount
	}
	if in.IsActive != nil {
		customer.IsActive = *in.IsActive
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	now := uc.now()
	customer.UpdatedAt = now
	if err := uc.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	out := dto.NewCustomerResponse(customer, now)
	return &out, nil
}

// List lista clientes con búsqueda por nombre, email o teléfono.
func (uc *CustomerUseCase) List(ctx context.Context, in dto.SearchRequest) (*dto.CustomerListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ListFilter{Search: in.Search, Limit: in.Limit, Offset: in.Offset()})
	if err != nil {
		return nil, err
	}
	now := uc.now()
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, dto.NewCustomerResponse(c, now))
	}
	return &dto.CustomerListResponse{Items: items, Meta: dto.NewPageMeta(in.PageRequest, total)}, nil
}

// Delete elimina un cliente. Con ventas registradas devuelve ErrConflict.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// ensureEmailFree falla con ErrConflict si otro cliente usa el email.
func (uc *CustomerUseCase) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	if email == "" {
		return nil
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exceptID {
		return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, email)
	}
	return nil
}

func validateCustomer(c *entity.Customer) error {
	if c.Name == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if c.Discount.IsNegative() || c.Discount.GreaterThan(hundred) {
		return fmt.Errorf("%w: el descuento debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	if c.MembershipStart != nil && c.MembershipEnd != nil && c.MembershipEnd.Before(*c.MembershipStart) {
		return fmt.Errorf("%w: membership_end no puede ser anterior a membership_start", domain.ErrInvalidInput)
	}
	return nil
}
