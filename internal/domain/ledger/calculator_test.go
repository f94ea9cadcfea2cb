package ledger_test

import (
	"testing"
	"time"

	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/jhoicas/dailybakes-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Subtotales
// ──────────────────────────────────────────────────────────────────────────────

func TestLineSubtotal_Exacto(t *testing.T) {
	got := ledger.LineSubtotal(d("0.1"), d("0.2"))
	assert.True(t, got.Equal(d("0.02")), "0.1 * 0.2 debe ser exactamente 0.02, got %s", got)
}

func TestSubtotal_SumaLineas(t *testing.T) {
	items := []entity.LineItem{
		{Subtotal: d("15000")},
		{Subtotal: d("2500.50")},
	}
	assert.True(t, ledger.Subtotal(items).Equal(d("17500.50")))
	assert.True(t, ledger.Subtotal(nil).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Descuento por membresía
// ──────────────────────────────────────────────────────────────────────────────

func TestMembershipDiscount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Second)

	cases := []struct {
		name     string
		customer *entity.Customer
		want     string
	}{
		{"sin cliente", nil, "0"},
		{"membresía NONE", &entity.Customer{MembershipType: entity.MembershipNone, MembershipEnd: &future, Discount: d("5")}, "0"},
		{"membresía vencida", &entity.Customer{MembershipType: entity.MembershipMonthly, MembershipEnd: &past, Discount: d("5")}, "0"},
		{"membresía sin fin", &entity.Customer{MembershipType: entity.MembershipYearly, Discount: d("5")}, "0"},
		{"membresía vigente 5%", &entity.Customer{MembershipType: entity.MembershipMonthly, MembershipEnd: &future, Discount: d("5")}, "50"},
		{"vigente con 0%", &entity.Customer{MembershipType: entity.MembershipMonthly, MembershipEnd: &future, Discount: decimal.Zero}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.MembershipDiscount(d("1000"), tc.customer, now)
			assert.True(t, got.Equal(d(tc.want)), "want %s got %s", tc.want, got)
		})
	}
}

func TestMembershipDiscount_FinIgualAhoraNoAplica(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := &entity.Customer{MembershipType: entity.MembershipMonthly, MembershipEnd: &now, Discount: d("10")}
	assert.True(t, ledger.MembershipDiscount(d("1000"), c, now).IsZero(), "la fecha de fin debe ser estrictamente futura")
}

// ──────────────────────────────────────────────────────────────────────────────
// Agregación por ingrediente
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregateQuantities(t *testing.T) {
	items := []entity.LineItem{
		{IngredientID: "b", Quantity: d("1.5")},
		{IngredientID: "a", Quantity: d("2")},
		{IngredientID: "b", Quantity: d("0.5")},
	}
	order, totals := ledger.AggregateQuantities(items)
	require.Equal(t, []string{"b", "a"}, order)
	assert.True(t, totals["b"].Equal(d("2")))
	assert.True(t, totals["a"].Equal(d("2")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Número de factura
// ──────────────────────────────────────────────────────────────────────────────

func TestFormatInvoiceNumber(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "SAL/20260105/0001", ledger.FormatInvoiceNumber("SAL", day, 1))
	assert.Equal(t, "PUR/20260105/0042", ledger.FormatInvoiceNumber("PUR", day, 42))
	assert.Equal(t, "PUR/20260105/9999", ledger.FormatInvoiceNumber("PUR", day, ledger.MaxDailySequence))
}

func TestDayStart_ZonaHoraria(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC del 6 de enero es todavía 5 de enero en UTC-5.
	ts := time.Date(2026, 1, 6, 3, 0, 0, 0, time.UTC)
	got := ledger.DayStart(ts, loc)
	assert.Equal(t, "20260105", got.Format("20060102"))
	assert.Equal(t, 0, got.Hour())
}
