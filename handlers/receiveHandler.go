package handlers

import (
	"net/http"

	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/workflow"
	"github.com/gin-gonic/gin"
)

func CreateReceive(c *gin.Context) {
	var input workflow.NewReceive
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	receive, err := workflow.CreateReceive(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"receive_id": receive.ID, "message": "收货成功!"})
}

func GetReceive(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	receive, err := models.GetReceive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receive)
}

func ListReceives(c *gin.Context) {
	receives, total, err := models.ListReceives(c.Request.Context(),
		queryInt(c, "page", 1), queryInt(c, "page_size", 10))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": receives})
}

func UpdateReceiveDetail(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input quantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	if err := workflow.UpdateReceiveDetail(c.Request.Context(), id, input.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "修正成功!"})
}

func DeleteReceiveDetail(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := workflow.DeleteReceiveDetail(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功!"})
}
