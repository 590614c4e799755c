package handlers

import (
	"net/http"

	"github.com/HarryWebAI/myerp/models"
	"github.com/gin-gonic/gin"
)

// Home aggregates the dashboard figures. Each underlying query caches its
// result in redis for five minutes, so hammering the dashboard stays cheap.
func Home(c *gin.Context) {
	ctx := c.Request.Context()

	inventoryValue, err := models.InventoryValueByBrand(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	performance, err := models.MonthlyStaffPerformance(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	monthlySales, err := models.CurrentYearMonthlySales(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inventory_value":   inventoryValue,
		"staff_performance": performance,
		"monthly_sales":     monthlySales,
	})
}
