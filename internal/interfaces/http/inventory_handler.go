package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/application/inventory"
)

// InventoryHandler maneja ingredientes y alertas de stock (protegido).
type InventoryHandler struct {
	uc *inventory.IngredientUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.IngredientUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ingrediente
// @Description  El stock inicial dispara la conciliación de alertas.
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIngredientRequest  true  "name, unit, stock_quantity, min_stock, price"
// @Success      201   {object}  dto.IngredientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ingredients [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateIngredientRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ingredientes
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        page       query  int     false  "página (desde 1)"
// @Param        limit      query  int     false  "tamaño de página (máx. 100)"
// @Param        search     query  string  false  "búsqueda por nombre"
// @Param        low_stock  query  bool    false  "solo stock <= mínimo"
// @Success      200  {object}  dto.IngredientListResponse
// @Router       /api/ingredients [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var in dto.IngredientListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/ingredients/:id
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ingrediente
// @Description  El stock no se edita aquí: solo cambia con compras y ventas.
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del ingrediente"
// @Param        body  body  dto.UpdateIngredientRequest  true  "campos a modificar"
// @Success      200   {object}  dto.IngredientResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateIngredientRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/ingredients/:id (409 si tiene transacciones).
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "ingrediente eliminado"})
}

// ListAlerts godoc
// @Summary      Alertas de stock bajo
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        resolved  query  bool  false  "true = historial resuelto; por defecto abiertas"
// @Success      200  {array}  dto.StockAlertResponse
// @Router       /api/ingredients/alerts [get]
func (h *InventoryHandler) ListAlerts(c *fiber.Ctx) error {
	resolved := c.QueryBool("resolved", false)
	out, err := h.uc.ListAlerts(c.UserContext(), resolved)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// ResolveAlert PATCH /api/ingredients/alerts/:id/resolve
func (h *InventoryHandler) ResolveAlert(c *fiber.Ctx) error {
	out, err := h.uc.ResolveAlert(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
