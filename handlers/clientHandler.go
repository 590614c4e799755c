package handlers

import (
	"net/http"
	"strconv"

	"github.com/HarryWebAI/myerp/models"
	"github.com/gin-gonic/gin"
)

func CreateClient(c *gin.Context) {
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	client, err := models.CreateClient(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func UpdateClient(c *gin.Context) {
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	client, err := models.UpdateClient(c.Request.Context(), c.Param("uid"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func GetClient(c *gin.Context) {
	client, err := models.GetClient(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func ListClients(c *gin.Context) {
	filter := models.ClientFilter{
		StaffUid: c.Query("staff_uid"),
		Name:     c.Query("name"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 10),
	}
	if raw := c.Query("level"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			level := models.ClientLevel(parsed)
			if level.Valid() {
				filter.Level = &level
			}
		}
	}

	clients, total, err := models.ListClients(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": clients})
}

func CreateFollowUpRecord(c *gin.Context) {
	var input models.NewFollowUpRecord
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	record, err := models.CreateFollowUpRecord(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func ListFollowUpRecords(c *gin.Context) {
	records, err := models.ListFollowUpRecords(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
