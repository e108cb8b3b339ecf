package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/tpq_backend/models/reports"
)

// ExportReport streams the tenant's workbook. The file is fully rendered
// before any byte is written, so a failed export never sends a partial file.
func ExportReport(c *gin.Context) {
	adminId, ok := requireAdminId(c)
	if !ok {
		return
	}
	f, filename, err := reports.BuildReport(c.Request.Context(), adminId)
	if err != nil {
		respondError(c, "ExportReport", err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		respondError(c, "ExportReport", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, reports.ContentTypeXLSX, buf.Bytes())
}
