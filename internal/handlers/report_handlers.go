package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/wholesale-shop/internal/models"
	"github.com/01moynul/wholesale-shop/internal/reports"
)

// SalesSummary is the handler for GET /api/reports/sales/summary
func (h *Handlers) SalesSummary(c *gin.Context) {
	var q models.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// period, when given, replaces startDate/endDate
	r := h.Reports.Range(q)
	summary, err := h.Reports.Summary(c.Request.Context(), r)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales_summary":         summary.SalesSummary,
		"low_stock_items_count": summary.LowStockItemsCount,
		"period_start":          r.FirstDay(),
		"period_end":            r.LastDay(),
		"filters_applied": gin.H{
			"period":    q.Period,
			"startDate": q.StartDate,
			"endDate":   q.EndDate,
		},
	})
}

// SalesByProduct is the handler for GET /api/reports/sales/by-product
func (h *Handlers) SalesByProduct(c *gin.Context) {
	var q models.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	r := h.Reports.Range(models.ReportQuery{StartDate: q.StartDate, EndDate: q.EndDate})
	rows, err := h.Reports.SalesByProduct(c.Request.Context(), r)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales_by_product": rows,
		"period_start":     r.FirstDay(),
		"period_end":       r.LastDay(),
	})
}

// TopSellingProducts is the handler for GET /api/reports/top-selling-products
func (h *Handlers) TopSellingProducts(c *gin.Context) {
	var q models.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	r := h.Reports.Range(models.ReportQuery{StartDate: q.StartDate, EndDate: q.EndDate})
	limit := reports.ParseLimit(q.Limit)
	criteria := reports.ParseCriteria(q.Criteria)

	rows, err := h.Reports.TopSelling(c.Request.Context(), r, criteria, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"top_selling_products": rows,
		"limit":                limit,
		"criteria":             criteria,
		"period_start":         r.FirstDay(),
		"period_end":           r.LastDay(),
	})
}
