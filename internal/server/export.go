package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (r *Router) exportProfiles(c *gin.Context) {
	data, err := r.export.ExportProfilesXLSX(c.Request.Context(), caller(c))
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	name := fmt.Sprintf("profiles-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
