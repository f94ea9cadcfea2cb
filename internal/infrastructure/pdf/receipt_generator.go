// Package pdf genera el recibo imprimible de compras y ventas.
//
// Layout de la página A5:
//
//	┌──────────────────────────────────────────────┐
//	│  HEADER: Tienda          │  N° Recibo + Fecha │
//	│  ──────────────────────────────────────────  │
//	│  CONTRAPARTE: Proveedor / Cliente + cajero   │
//	│  ──────────────────────────────────────────  │
//	│  TABLA: Ingrediente | Cant | P.Unit | Subt.  │
//	│  ──────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / TOTAL       │
//	│  FOOTER: QR con el número + notas            │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dailybakes-api/internal/application/ledger"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
)

var _ ledger.ReceiptGenerator = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 120, Green: 72, Blue: 30}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa ledger.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct {
	storeName string
}

// NewReceiptGenerator construye el generador; storeName encabeza el recibo.
func NewReceiptGenerator(storeName string) *ReceiptGenerator {
	return &ReceiptGenerator{storeName: nonEmpty(storeName, "Daily Bakes")}
}

// GenerateReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceipt(_ context.Context, t *entity.Transaction) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Recibo "+t.InvoiceNumber, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(t.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(t))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(t)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tienda (izq) y número + fecha (der).
func (g *ReceiptGenerator) headerRow(t *entity.Transaction) core.Row {
	title := "RECIBO DE VENTA"
	if t.Kind == entity.TransactionPurchase {
		title = "COMPROBANTE DE COMPRA"
	}
	return row.New(16).Add(
		col.New(6).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(6).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(t.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 6,
			}),
			text.New("Fecha: "+t.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

// partyRow: proveedor o cliente y usuario que registró.
func partyRow(t *entity.Transaction) core.Row {
	label, name := "CLIENTE", "Cliente general"
	if t.Customer != nil {
		name = t.Customer.Name
	}
	if t.Kind == entity.TransactionPurchase {
		label, name = "PROVEEDOR", t.SupplierID
		if t.Supplier != nil {
			name = t.Supplier.Name
		}
	}
	cashier := "-"
	if t.User != nil {
		cashier = nonEmpty(t.User.Name, t.User.ID)
	}
	detail := "Atendido por: " + cashier
	if t.PaymentMethod != "" {
		detail += "   |   Pago: " + t.PaymentMethod
	}
	return row.New(13).Add(
		col.New(12).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 5}),
			text.New(detail, props.Text{Size: 7, Top: 9.5, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 1.5,
		}))
	}
	return row.New(6).Add(
		h("Ingrediente", 5, align.Left),
		h("Cant.", 2, align.Right),
		h("P. Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea, en el orden de registro.
func tableDetailRows(items []entity.LineItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := nonEmpty(it.IngredientName, it.IngredientID)
		result = append(result, row.New(6).Add(
			col.New(5).Add(text.New(name, props.Text{Size: 7.5, Top: 1})),
			col.New(2).Add(text.New(
				it.Quantity.String()+" "+it.IngredientUnit,
				props.Text{Size: 7.5, Align: align.Right, Top: 1},
			)),
			col.New(2).Add(text.New(money(it.PricePerUnit), props.Text{Size: 7.5, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(money(it.Subtotal), props.Text{Size: 7.5, Align: align.Right, Top: 1})),
		))
	}
	return result
}

// totalsRow: subtotal, descuento y total alineados a la derecha.
func totalsRow(t *entity.Transaction) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Top: top})
	}
	grand := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: a, Color: colorPrimary, Top: 11,
		})
	}
	return row.New(18).Add(
		col.New(5),
		col.New(4).Add(
			label("Subtotal:", 1),
			label("Descuento:", 6),
			grand("TOTAL:", align.Right),
		),
		col.New(3).Add(
			value(money(t.Subtotal), 1),
			value("-"+money(t.Discount), 6),
			grand(money(t.TotalAmount), align.Right),
		),
	)
}

// footerRows: QR con el número de recibo y notas.
func footerRows(t *entity.Transaction) []core.Row {
	notes := nonEmpty(t.Notes, "Gracias por su preferencia.")
	return []core.Row{
		row.New(30).Add(
			col.New(4).Add(code.NewQr(t.InvoiceNumber, props.Rect{Percent: 90, Center: true})),
			col.New(8).Add(
				text.New(notes, props.Text{Size: 7.5, Top: 4, Left: 3, Color: colorGray}),
				text.New("Conserve este recibo como soporte de la transacción.", props.Text{
					Size: 6.5, Top: 20, Left: 3, Color: colorGray,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con separador de miles y dos decimales. Ej: 25000.5 → "25.000,50".
func money(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	out := groupThousands(intPart) + "," + frac
	if v.IsNegative() {
		return "-" + out
	}
	return out
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
