package handlers

import (
	"net/http"

	"github.com/HarryWebAI/myerp/models"
	"github.com/gin-gonic/gin"
)

type loginInput struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	user, token, err := models.Login(c.Request.Context(), input.Account, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "账号或密码错误"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func CreateStaff(c *gin.Context) {
	var input models.NewStaff
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	user, err := models.CreateStaff(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func UpdateStaff(c *gin.Context) {
	var input models.UpdateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	user, err := models.UpdateStaff(c.Request.Context(), c.Param("uid"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type resetPasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func ResetPassword(c *gin.Context) {
	var input resetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	err := models.ResetPassword(c.Request.Context(), c.Param("uid"), input.OldPassword, input.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "密码修改成功"})
}

func ListStaff(c *gin.Context) {
	staff, err := models.ListStaff(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func CreateInstaller(c *gin.Context) {
	var input models.NewInstaller
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	installer, err := models.CreateInstaller(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, installer)
}

func ListInstallers(c *gin.Context) {
	installers, err := models.ListInstallers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, installers)
}
