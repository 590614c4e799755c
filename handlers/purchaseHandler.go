package handlers

import (
	"net/http"

	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func CreatePurchase(c *gin.Context) {
	var input workflow.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	purchase, err := workflow.CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase_id": purchase.ID, "message": "发货成功!"})
}

func GetPurchase(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	purchase, err := models.GetPurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func ListPurchases(c *gin.Context) {
	purchases, total, err := models.ListPurchases(c.Request.Context(),
		queryInt(c, "page", 1), queryInt(c, "page_size", 10))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": purchases})
}

type quantityInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func UpdatePurchaseDetail(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input quantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	if err := workflow.UpdatePurchaseDetail(c.Request.Context(), id, input.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "修正成功!"})
}

func DeletePurchaseDetail(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := workflow.DeletePurchaseDetail(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功!"})
}

type purchaseCostInput struct {
	TotalCost decimal.Decimal `json:"total_cost" binding:"required"`
}

func UpdatePurchaseCost(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input purchaseCostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	if err := workflow.UpdatePurchaseCost(c.Request.Context(), id, input.TotalCost); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "成本修正成功!"})
}
