package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
)

// ReceiptGenerator genera la representación imprimible (PDF) de una transacción.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, t *entity.Transaction) ([]byte, error)
}

// ReceiptUseCase arma el recibo de una venta o compra ya registrada.
type ReceiptUseCase struct {
	engine    *Engine
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(engine *Engine, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{engine: engine, generator: generator}
}

// Download devuelve el PDF y el nombre de archivo sugerido (recibo_SAL-20260105-0001.pdf).
func (uc *ReceiptUseCase) Download(ctx context.Context, kind, id string) (pdfBytes []byte, filename string, err error) {
	t, err := uc.engine.Get(ctx, kind, id)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateReceipt(ctx, t)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("recibo_%s.pdf", strings.ReplaceAll(t.InvoiceNumber, "/", "-"))
	return pdfBytes, filename, nil
}
