package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/tpq_backend/models"
)

// Public site endpoints take the tenant from the path instead of a token.

func PublicSettings(c *gin.Context) {
	settings, err := models.GetPublicSettings(c.Request.Context(), c.Param("adminId"))
	if err != nil {
		respondError(c, "PublicSettings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func SubmitRegistration(c *gin.Context) {
	var input models.NewRegistration
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	registration, err := models.CreateRegistration(c.Request.Context(), c.Param("adminId"), &input)
	if err != nil {
		respondError(c, "SubmitRegistration", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": registration.ID, "status": registration.Status})
}

func ListRegistrations(c *gin.Context) {
	if _, ok := requireAdminId(c); !ok {
		return
	}
	results, err := models.ListRegistrations(c.Request.Context(), models.RegistrationStatus(c.Query("status")))
	if err != nil {
		respondError(c, "ListRegistrations", err)
		return
	}
	c.JSON(http.StatusOK, results)
}
