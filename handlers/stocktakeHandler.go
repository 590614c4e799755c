package handlers

import (
	"net/http"

	"github.com/HarryWebAI/myerp/workflow"
	"github.com/gin-gonic/gin"
)

func DownloadInventory(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=inventory.xlsx")
	if err := workflow.ExportInventoryXLSX(c.Request.Context(), c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// Stocktake accepts the counted sheet as a multipart upload and replaces the
// inventory table with it. Boss only; the route enforces that.
func Stocktake(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read file"})
		return
	}
	defer file.Close()

	rows, err := workflow.ParseStocktakeSheet(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := workflow.RunStocktake(c.Request.Context(), rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "盘点完成!", "created": created})
}
