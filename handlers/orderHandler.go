package handlers

import (
	"net/http"
	"time"

	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func CreateOrder(c *gin.Context) {
	var input workflow.NewOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	order, err := workflow.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func GetOrder(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	order, err := models.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func ListOrders(c *gin.Context) {
	filter := models.OrderFilter{
		BrandId:   queryInt(c, "brand_id", 0),
		ClientUid: c.Query("client_uid"),
		StaffUid:  c.Query("staff_uid"),
		Search:    c.Query("search"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 10),
	}
	if raw := c.Query("delivery_status"); raw != "" {
		if status, err := models.ParseDeliveryStatus(raw); err == nil {
			filter.DeliveryStatus = status
		}
	}
	if raw := c.Query("payment_status"); raw != "" {
		if status, err := models.ParsePaymentStatus(raw); err == nil {
			filter.PaymentStatus = status
		}
	}
	if raw := c.Query("date_start"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateStart = &parsed
		}
	}
	if raw := c.Query("date_end"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			end := parsed.AddDate(0, 0, 1)
			filter.DateEnd = &end
		}
	}

	orders, total, summary, err := models.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": orders, "summary": summary})
}

func InstallOrder(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input workflow.InstallOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	order, err := workflow.InstallOrder(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type voidOrderInput struct {
	Reason string `json:"reason"`
}

func VoidOrder(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input voidOrderInput
	_ = c.ShouldBindJSON(&input)

	if err := workflow.VoidOrder(c.Request.Context(), id, input.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "弃单成功!"})
}

type balancePaymentInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func PayBalance(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input balancePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	order, err := workflow.PayBalance(c.Request.Context(), id, input.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func ListOperationLogs(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	logs, err := models.ListOperationLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func ListBalancePayments(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	payments, err := models.ListBalancePayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
