package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/models"
	"github.com/mmdatafocus/tpq_backend/utils"
)

const maxLogoUploadBytes = 5 << 20

func GetSettings(c *gin.Context) {
	adminId, ok := requireAdminId(c)
	if !ok {
		return
	}
	setting, err := models.GetSettings(c.Request.Context(), adminId)
	if err != nil {
		respondError(c, "GetSettings", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func ReplaceSettings(c *gin.Context) {
	adminId, ok := requireAdminId(c)
	if !ok {
		return
	}
	var input models.NewSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	setting, err := models.ReplaceSettings(c.Request.Context(), adminId, &input)
	if err != nil {
		respondError(c, "ReplaceSettings", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func MergeSettings(c *gin.Context) {
	adminId, ok := requireAdminId(c)
	if !ok {
		return
	}
	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	setting, err := models.MergeSettings(c.Request.Context(), adminId, &patch)
	if err != nil {
		respondError(c, "MergeSettings", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UploadLogo takes a multipart "logo" image, shrinks it and stores it as the
// tenant's logo_url.
func UploadLogo(c *gin.Context) {
	adminId, ok := requireAdminId(c)
	if !ok {
		return
	}
	file, err := c.FormFile("logo")
	if err != nil {
		respondBadRequest(c, "logo file is required")
		return
	}
	if file.Size > maxLogoUploadBytes {
		respondBadRequest(c, "logo file is too large")
		return
	}
	src, err := file.Open()
	if err != nil {
		respondBadRequest(c, "cannot read logo file")
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	previous, err := models.GetSettings(ctx, adminId)
	if err != nil {
		respondError(c, "UploadLogo", err)
		return
	}
	png, err := utils.ResizeLogo(src)
	if err != nil {
		respondError(c, "UploadLogo", err)
		return
	}
	logoUrl, err := utils.StoreLogo(ctx, adminId, png)
	if err != nil {
		respondError(c, "UploadLogo", err)
		return
	}
	setting, err := models.MergeSettings(ctx, adminId, &models.SettingsPatch{Logo: models.Some(logoUrl)})
	if err != nil {
		respondError(c, "UploadLogo", err)
		return
	}
	if previous.LogoUrl != "" && previous.LogoUrl != setting.LogoUrl {
		if err := utils.RemoveStoredLogo(ctx, previous.LogoUrl); err != nil {
			config.LogWarning(config.GetLogger(), "handlers", "UploadLogo", "remove previous logo", err)
		}
	}
	c.JSON(http.StatusOK, setting)
}

func RefreshSettings(c *gin.Context) {
	adminId, ok := requireAdminId(c)
	if !ok {
		return
	}
	setting, err := models.RefreshSettingsCache(c.Request.Context(), adminId)
	if err != nil {
		respondError(c, "RefreshSettings", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}
