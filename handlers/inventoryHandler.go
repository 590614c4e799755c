package handlers

import (
	"net/http"

	"github.com/HarryWebAI/myerp/models"
	"github.com/gin-gonic/gin"
)

func CreateInventory(c *gin.Context) {
	var input models.NewInventory
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	inventory, err := models.CreateInventory(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inventory)
}

func UpdateInventory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input models.NewInventory
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	inventory, err := models.UpdateInventory(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

func ListInventories(c *gin.Context) {
	filter := models.InventoryFilter{
		BrandId:    queryInt(c, "brand_id", 0),
		CategoryId: queryInt(c, "category_id", 0),
		Name:       c.Query("name"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 10),
	}

	items, total, err := models.ListInventories(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": items})
}

// AllInventories backs the purchase and receive screens, which need every
// item of one brand without pagination.
func AllInventories(c *gin.Context) {
	brandId := queryInt(c, "brand_id", 0)
	items, err := models.AllInventoriesByBrand(c.Request.Context(), brandId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
