package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/dailybakes-api/internal/application/dto"
	"github.com/jhoicas/dailybakes-api/internal/domain"
)

// Tipos de reporte exportables.
const (
	ExportSales     = "sales"
	ExportPurchases = "purchases"
	ExportStock     = "stock"
)

// Exporter convierte reportes en libros de cálculo.
type Exporter interface {
	SalesWorkbook(r *dto.SalesReportDTO) ([]byte, error)
	PurchasesWorkbook(r *dto.PurchasesReportDTO) ([]byte, error)
	StockWorkbook(r *dto.StockReportDTO) ([]byte, error)
}

// ExportUseCase genera el reporte pedido y lo serializa con el Exporter.
type ExportUseCase struct {
	reports  *ReportUseCase
	exporter Exporter
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(reports *ReportUseCase, exporter Exporter) *ExportUseCase {
	return &ExportUseCase{reports: reports, exporter: exporter}
}

// Export devuelve el archivo y su nombre sugerido (reporte_sales_20260105.xlsx).
func (uc *ExportUseCase) Export(ctx context.Context, kind string, in dto.ReportRequest) (data []byte, filename string, err error) {
	day := uc.reports.now().In(uc.reports.loc).Format("20060102")
	switch kind {
	case ExportSales:
		r, err := uc.reports.Sales(ctx, in)
		if err != nil {
			return nil, "", err
		}
		data, err = uc.exporter.SalesWorkbook(r)
		if err != nil {
			return nil, "", fmt.Errorf("exportar ventas: %w", err)
		}
	case ExportPurchases:
		r, err := uc.reports.Purchases(ctx, in)
		if err != nil {
			return nil, "", err
		}
		data, err = uc.exporter.PurchasesWorkbook(r)
		if err != nil {
			return nil, "", fmt.Errorf("exportar compras: %w", err)
		}
	case ExportStock:
		r, err := uc.reports.Stock(ctx)
		if err != nil {
			return nil, "", err
		}
		data, err = uc.exporter.StockWorkbook(r)
		if err != nil {
			return nil, "", fmt.Errorf("exportar stock: %w", err)
		}
	default:
		return nil, "", fmt.Errorf("%w: reporte %q no exportable (sales, purchases, stock)", domain.ErrInvalidInput, kind)
	}
	return data, fmt.Sprintf("reporte_%s_%s.xlsx", kind, day), nil
}
