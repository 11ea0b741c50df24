package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldops-backend/internal/importer"
)

// GetImportTemplate handles GET /api/assets/import/template.
func (h *Handler) GetImportTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="plantilla_carga_equipos.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", importer.Template())
}

// PostImport handles POST /api/assets/import. The CSV file comes as the
// "file" multipart field; duplicate serials are skipped and counted, not
// rejected.
func (h *Handler) PostImport(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	defer file.Close()

	rows, err := importer.Parse(file)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyFile) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no valid rows in file"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.importer.Import(c.Request.Context(), rows, time.Now().UTC(), who)
	if err != nil {
		fail(c, err)
		return
	}
	h.bust()
	c.JSON(http.StatusOK, result)
}
