package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/application/ledger"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
)

// TransactionHandler expone compras o ventas según kind; el router monta una instancia por tipo.
type TransactionHandler struct {
	kind    string
	engine  *ledger.Engine
	receipt *ledger.ReceiptUseCase
}

// NewPurchaseHandler handler de /api/purchases.
func NewPurchaseHandler(engine *ledger.Engine, receipt *ledger.ReceiptUseCase) *TransactionHandler {
	return &TransactionHandler{kind: entity.TransactionPurchase, engine: engine, receipt: receipt}
}

// NewSaleHandler handler de /api/sales.
func NewSaleHandler(engine *ledger.Engine, receipt *ledger.ReceiptUseCase) *TransactionHandler {
	return &TransactionHandler{kind: entity.TransactionSale, engine: engine, receipt: receipt}
}

// Create godoc
// @Summary      Registrar compra o venta
// @Description  Valida stock, calcula totales, numera la factura y mueve el stock en una sola transacción.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "customer_id (opcional), payment_method, items"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
// @Router       /api/purchases [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var (
		tx  *entity.Transaction
		err error
	)
	userID := GetUserID(c)
	switch h.kind {
	case entity.TransactionPurchase:
		var in dto.CreatePurchaseRequest
		if ok, perr := parseBody(c, &in); !ok {
			return perr
		}
		tx, err = h.engine.CreatePurchase(c.UserContext(), userID, in)
	default:
		var in dto.CreateSaleRequest
		if ok, perr := parseBody(c, &in); !ok {
			return perr
		}
		tx, err = h.engine.CreateSale(c.UserContext(), userID, in)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

// List godoc
// @Summary      Listar compras o ventas
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        page         query  int     false  "página"
// @Param        limit        query  int     false  "tamaño de página"
// @Param        start_date   query  string  false  "YYYY-MM-DD"
// @Param        end_date     query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        supplier_id  query  string  false  "solo compras"
// @Param        customer_id  query  string  false  "solo ventas"
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/sales [get]
// @Router       /api/purchases [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var in dto.TransactionListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	if h.kind == entity.TransactionPurchase {
		in.CounterpartyID = c.Query("supplier_id")
	} else {
		in.CounterpartyID = c.Query("customer_id")
	}
	out, err := h.engine.List(c.UserContext(), h.kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/{purchases|sales}/:id
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.engine.Get(c.UserContext(), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx))
}

// Delete godoc
// @Summary      Eliminar compra o venta
// @Description  Revierte el efecto en stock de cada línea y elimina la transacción. 409 si una compra ya fue consumida.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
// @Router       /api/purchases/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.Remove(c.UserContext(), h.kind, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "transacción eliminada y stock revertido"})
}

// Receipt godoc
// @Summary      Recibo PDF
// @Tags         transactions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *TransactionHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.receipt.Download(c.UserContext(), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(pdf)
}
