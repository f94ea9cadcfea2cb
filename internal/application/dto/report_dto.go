package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de período de reportes.
const (
	PeriodDaily   = "DAILY"
	PeriodWeekly  = "WEEKLY"
	PeriodMonthly = "MONTHLY"
	PeriodYearly  = "YEARLY"
	PeriodCustom  = "CUSTOM"
)

// ReportRequest parámetros de período. Sin type se asume MONTHLY; las fechas solo aplican a CUSTOM.
type ReportRequest struct {
	Type      string `query:"type" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY CUSTOM"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// PeriodDTO rango efectivo del reporte [start_date, end_date).
type PeriodDTO struct {
	Type      string    `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// BreakdownDTO total agrupado (método de pago o proveedor).
type BreakdownDTO struct {
	Key   string          `json:"key"`
	Name  string          `json:"name,omitempty"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// IngredientTotalDTO ranking de ingredientes por monto.
type IngredientTotalDTO struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
}

// SalesSummaryDTO resumen de ventas.
type SalesSummaryDTO struct {
	TotalSales         decimal.Decimal `json:"total_sales"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	TotalTransactions  int             `json:"total_transactions"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
}

// SalesReportDTO reporte de ventas del período.
type SalesReportDTO struct {
	Period                 PeriodDTO            `json:"period"`
	Summary                SalesSummaryDTO      `json:"summary"`
	PaymentMethodBreakdown []BreakdownDTO       `json:"payment_method_breakdown"`
	TopIngredients         []IngredientTotalDTO `json:"top_ingredients"`
}

// PurchasesSummaryDTO resumen de compras.
type PurchasesSummaryDTO struct {
	TotalPurchases     decimal.Decimal `json:"total_purchases"`
	TotalTransactions  int             `json:"total_transactions"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
}

// PurchasesReportDTO reporte de compras del período.
type PurchasesReportDTO struct {
	Period                  PeriodDTO            `json:"period"`
	Summary                 PurchasesSummaryDTO  `json:"summary"`
	SupplierBreakdown       []BreakdownDTO       `json:"supplier_breakdown"`
	TopPurchasedIngredients []IngredientTotalDTO `json:"top_purchased_ingredients"`
}

// StockSummaryDTO resumen del inventario activo.
type StockSummaryDTO struct {
	TotalIngredients int             `json:"total_ingredients"`
	TotalStockValue  decimal.Decimal `json:"total_stock_value"`
	LowStockCount    int             `json:"low_stock_count"`
	OutOfStockCount  int             `json:"out_of_stock_count"`
}

// StockReportDTO foto del inventario (sin período).
type StockReportDTO struct {
	Summary               StockSummaryDTO      `json:"summary"`
	LowStockIngredients   []IngredientResponse `json:"low_stock_ingredients"`
	OutOfStockIngredients []IngredientResponse `json:"out_of_stock_ingredients"`
	AllIngredients        []IngredientResponse `json:"all_ingredients"`
}

// ProfitSummaryDTO rentabilidad del período.
type ProfitSummaryDTO struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	COGS          decimal.Decimal `json:"cogs"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	ProfitMargin  string          `json:"profit_margin"` // "12.50%"
}

// ProfitReportDTO reporte de rentabilidad.
type ProfitReportDTO struct {
	Period  PeriodDTO        `json:"period"`
	Summary ProfitSummaryDTO `json:"summary"`
}

// DashboardTodayDTO movimientos del día.
type DashboardTodayDTO struct {
	SalesCount     int             `json:"sales_count"`
	SalesRevenue   decimal.Decimal `json:"sales_revenue"`
	PurchasesCount int             `json:"purchases_count"`
	PurchasesTotal decimal.Decimal `json:"purchases_total"`
}

// DashboardInventoryDTO estado del inventario.
type DashboardInventoryDTO struct {
	TotalIngredients  int `json:"total_ingredients"`
	LowStockCount     int `json:"low_stock_count"`
	ActiveAlertsCount int `json:"active_alerts_count"`
}

// DashboardDTO resumen para la pantalla principal.
type DashboardDTO struct {
	Date      string                `json:"date"`
	Today     DashboardTodayDTO     `json:"today"`
	Inventory DashboardInventoryDTO `json:"inventory"`
}
