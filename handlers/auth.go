package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/tpq_backend/models"
)

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}
	info, err := models.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func Logout(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		respondError(c, "Logout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}
