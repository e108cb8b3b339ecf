package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/utils"
)

// ErrorStatus maps the error taxonomy onto an HTTP status and a client message.
// Storage failures never leak their cause.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, utils.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, utils.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, utils.ErrNotFound), errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *gin.Context, funcName string, err error) {
	status, msg := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		adminId, _ := utils.GetAdminIdFromContext(ctx)
		username, _ := utils.GetUsernameFromContext(ctx)
		config.LogError(config.GetLogger(), "handlers", funcName, c.FullPath(), map[string]string{
			"admin_id": adminId,
			"username": username,
		}, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// requireAdminId reads the tenant set by AuthMiddleware.
func requireAdminId(c *gin.Context) (string, bool) {
	adminId, ok := utils.GetAdminIdFromContext(c.Request.Context())
	if !ok || adminId == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return adminId, true
}
