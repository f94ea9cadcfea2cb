// Package excel exporta los reportes a libros .xlsx con excelize.
package excel

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/dailybakes-api/internal/application/analytics"
	"github.com/jhoicas/dailybakes-api/internal/application/dto"
)

var _ analytics.Exporter = (*ReportExporter)(nil)

// Nombres de hojas.
const (
	SheetSummary     = "Resumen"
	SheetBreakdown   = "Desglose"
	SheetIngredients = "Ingredientes"
	SheetLowStock    = "Stock bajo"
)

const dateLayout = "2006-01-02 15:04"

// ReportExporter implementa analytics.Exporter.
type ReportExporter struct{}

// NewReportExporter construye el exportador.
func NewReportExporter() *ReportExporter { return &ReportExporter{} }

// workbook envuelve el archivo con los estilos comunes.
type workbook struct {
	f      *excelize.File
	header int
	number int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"78481E"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	numFmt := "#,##0.00"
	number, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	return &workbook{f: f, header: header, number: number}, nil
}

// sheet crea la hoja (salvo Resumen, que ya existe) y escribe la fila de cabecera congelada.
func (w *workbook) sheet(name string, headers ...string) error {
	if name != SheetSummary {
		if _, err := w.f.NewSheet(name); err != nil {
			return err
		}
	}
	if len(headers) == 0 {
		return nil
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := w.f.SetCellValue(name, cell, h); err != nil {
			return err
		}
		if err := w.f.SetCellStyle(name, cell, cell, w.header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := w.f.AutoFilter(name, "A1:"+last, []excelize.AutoFilterOptions{}); err != nil {
		return err
	}
	return w.f.SetPanes(name, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// row escribe valores en la fila r; los decimal.Decimal se guardan como número con formato.
func (w *workbook) row(sheet string, r int, values ...any) error {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, r)
		if dv, ok := v.(decimal.Decimal); ok {
			if err := w.f.SetCellValue(sheet, cell, dv.InexactFloat64()); err != nil {
				return err
			}
			if err := w.f.SetCellStyle(sheet, cell, cell, w.number); err != nil {
				return err
			}
			continue
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// pairs escribe filas etiqueta/valor desde la fila start.
func (w *workbook) pairs(sheet string, start int, kv [][2]any) error {
	for i, p := range kv {
		if err := w.row(sheet, start+i, p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.f.Close()
	w.f.SetActiveSheet(0)
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func periodPairs(p dto.PeriodDTO) [][2]any {
	return [][2]any{
		{"Período", p.Type},
		{"Desde", p.StartDate.Format(dateLayout)},
		{"Hasta", p.EndDate.Format(dateLayout)},
	}
}

func (w *workbook) ingredients(list []dto.IngredientTotalDTO, amountLabel string) error {
	if err := w.sheet(SheetIngredients, "Ingrediente", "Unidad", "Cantidad", amountLabel); err != nil {
		return err
	}
	for i, it := range list {
		if err := w.row(SheetIngredients, i+2, it.Name, it.Unit, it.Quantity, it.Amount); err != nil {
			return err
		}
	}
	return nil
}

// SalesWorkbook: Resumen, Desglose por método de pago e Ingredientes más vendidos.
func (e *ReportExporter) SalesWorkbook(r *dto.SalesReportDTO) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	if err := w.sheet(SheetSummary); err != nil {
		return nil, err
	}
	summary := append(periodPairs(r.Period),
		[2]any{"Total ventas", r.Summary.TotalSales},
		[2]any{"Total descuentos", r.Summary.TotalDiscount},
		[2]any{"Transacciones", r.Summary.TotalTransactions},
		[2]any{"Ticket promedio", r.Summary.AverageTransaction},
	)
	if err := w.pairs(SheetSummary, 1, summary); err != nil {
		return nil, err
	}
	if err := w.sheet(SheetBreakdown, "Método de pago", "Transacciones", "Total"); err != nil {
		return nil, err
	}
	for i, b := range r.PaymentMethodBreakdown {
		if err := w.row(SheetBreakdown, i+2, b.Key, b.Count, b.Total); err != nil {
			return nil, err
		}
	}
	if err := w.ingredients(r.TopIngredients, "Ingreso"); err != nil {
		return nil, err
	}
	return w.bytes()
}

// PurchasesWorkbook: Resumen, Desglose por proveedor e Ingredientes más comprados.
func (e *ReportExporter) PurchasesWorkbook(r *dto.PurchasesReportDTO) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	if err := w.sheet(SheetSummary); err != nil {
		return nil, err
	}
	summary := append(periodPairs(r.Period),
		[2]any{"Total compras", r.Summary.TotalPurchases},
		[2]any{"Transacciones", r.Summary.TotalTransactions},
		[2]any{"Compra promedio", r.Summary.AverageTransaction},
	)
	if err := w.pairs(SheetSummary, 1, summary); err != nil {
		return nil, err
	}
	if err := w.sheet(SheetBreakdown, "Proveedor", "Compras", "Total"); err != nil {
		return nil, err
	}
	for i, b := range r.SupplierBreakdown {
		if err := w.row(SheetBreakdown, i+2, b.Name, b.Count, b.Total); err != nil {
			return nil, err
		}
	}
	if err := w.ingredients(r.TopPurchasedIngredients, "Costo"); err != nil {
		return nil, err
	}
	return w.bytes()
}

// StockWorkbook: Resumen, todos los Ingredientes y los de Stock bajo.
func (e *ReportExporter) StockWorkbook(r *dto.StockReportDTO) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	if err := w.sheet(SheetSummary); err != nil {
		return nil, err
	}
	summary := [][2]any{
		{"Ingredientes activos", r.Summary.TotalIngredients},
		{"Valor del inventario", r.Summary.TotalStockValue},
		{"Con stock bajo", r.Summary.LowStockCount},
		{"Agotados", r.Summary.OutOfStockCount},
	}
	if err := w.pairs(SheetSummary, 1, summary); err != nil {
		return nil, err
	}
	headers := []string{"Ingrediente", "Unidad", "Stock", "Mínimo", "Precio", "Stock bajo"}
	write := func(sheet string, list []dto.IngredientResponse) error {
		if err := w.sheet(sheet, headers...); err != nil {
			return err
		}
		for i, ing := range list {
			low := "NO"
			if ing.IsLowStock {
				low = "SI"
			}
			if err := w.row(sheet, i+2, ing.Name, ing.Unit, ing.StockQuantity, ing.MinStock, ing.Price, low); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write(SheetIngredients, r.AllIngredients); err != nil {
		return nil, err
	}
	if err := write(SheetLowStock, r.LowStockIngredients); err != nil {
		return nil, err
	}
	return w.bytes()
}
