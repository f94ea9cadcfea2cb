package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailybakes-api/internal/application/analytics"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler expone los reportes de solo lectura y su exportación a Excel.
type ReportHandler struct {
	reports *analytics.ReportUseCase
	export  *analytics.ExportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(reports *analytics.ReportUseCase, export *analytics.ExportUseCase) *ReportHandler {
	return &ReportHandler{reports: reports, export: export}
}

// Sales godoc
// @Summary      Reporte de ventas
// @Description  Totales, descuento, ticket promedio, desglose por método de pago y top 10 ingredientes.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        type        query  string  false  "DAILY|WEEKLY|MONTHLY|YEARLY|CUSTOM (default MONTHLY)"
// @Param        start_date  query  string  false  "YYYY-MM-DD (CUSTOM)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (CUSTOM, inclusive)"
// @Success      200  {object}  dto.SalesReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	var in dto.ReportRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.reports.Sales(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Purchases GET /api/reports/purchases
func (h *ReportHandler) Purchases(c *fiber.Ctx) error {
	var in dto.ReportRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.reports.Purchases(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Profit godoc
// @Summary      Reporte de utilidad
// @Description  Ingresos, costo de compras, costo de lo vendido, descuentos, utilidad bruta/neta y margen.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        type  query  string  false  "DAILY|WEEKLY|MONTHLY|YEARLY|CUSTOM"
// @Success      200  {object}  dto.ProfitReportDTO
// @Router       /api/reports/profit [get]
func (h *ReportHandler) Profit(c *fiber.Ctx) error {
	var in dto.ReportRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.reports.Profit(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stock GET /api/reports/stock (sin período: es una foto del inventario actual).
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	out, err := h.reports.Stock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dashboard devuelve los contadores del día y el estado del inventario.
// GET /api/reports/dashboard
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Export devuelve el handler de descarga .xlsx para kind (sales, purchases, stock).
// GET /api/reports/{kind}/export
func (h *ReportHandler) Export(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.ReportRequest
		if ok, err := parseQuery(c, &in); !ok {
			return err
		}
		data, filename, err := h.export.Export(c.UserContext(), kind, in)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
		return c.Send(data)
	}
}
