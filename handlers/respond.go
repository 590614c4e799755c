package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognized
// is a 500 without the raw error text leaking to the client.
func respondError(c *gin.Context, err error) {
	var stockErr *models.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     stockErr.Error(),
			"shortages": stockErr.Shortages,
		})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, models.ErrNoChange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no change"})
	case errors.Is(err, models.ErrBrandMismatch),
		errors.Is(err, models.ErrInsufficientOnRoad),
		errors.Is(err, models.ErrAlreadyShipped),
		errors.Is(err, models.ErrNotCancelable),
		errors.Is(err, models.ErrDependencyExists),
		errors.Is(err, models.ErrNoOrderLines),
		errors.Is(err, models.ErrInvariantViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
