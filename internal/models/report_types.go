package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary aggregates Completed orders within a date range.
type SalesSummary struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// ProductSales is one row of the by-product and top-selling reports.
type ProductSales struct {
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductSKU        string          `json:"product_sku"`
	TotalQuantitySold int             `json:"total_quantity_sold"`
	TotalRevenue      decimal.Decimal `json:"total_revenue_from_product"`
}

// DateRange bounds a report. A nil bound is open.
// Start is the first instant of the first day; End is the first instant after the last day.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ReportQuery is the parsed query string shared by the report endpoints.
type ReportQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Period    string `form:"period"`
	Limit     string `form:"limit"`
	Criteria  string `form:"criteria"`
}

// SummaryReport is the sales summary plus the global low-stock count.
type SummaryReport struct {
	SalesSummary       SalesSummary `json:"sales_summary"`
	LowStockItemsCount int          `json:"low_stock_items_count"`
}

// SalesCriteria selects the ranking of the top-selling report.
type SalesCriteria string

const (
	CriteriaRevenue  SalesCriteria = "revenue"
	CriteriaQuantity SalesCriteria = "quantity"
)

const dayLayout = "2006-01-02"

// FirstDay is the first day of the range as YYYY-MM-DD, or nil when open.
func (r DateRange) FirstDay() *string {
	if r.Start == nil {
		return nil
	}
	s := r.Start.Format(dayLayout)
	return &s
}

// LastDay is the last included day of the range as YYYY-MM-DD, or nil when open.
func (r DateRange) LastDay() *string {
	if r.End == nil {
		return nil
	}
	s := r.End.AddDate(0, 0, -1).Format(dayLayout)
	return &s
}
