package handlers

import (
	"net/http"

	"github.com/HarryWebAI/myerp/models"
	"github.com/gin-gonic/gin"
)

func CreateBrand(c *gin.Context) {
	var input models.NewBrand
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	brand, err := models.CreateBrand(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func UpdateBrand(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input models.NewBrand
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	brand, err := models.UpdateBrand(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func ListBrands(c *gin.Context) {
	brands, err := models.ListBrands(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func CreateCategory(c *gin.Context) {
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	category, err := models.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func UpdateCategory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	category, err := models.UpdateCategory(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func ListCategories(c *gin.Context) {
	categories, err := models.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
