package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reminders/internal/service"
)

func (h *handlerImpl) HandleExportBackup(c *gin.Context) {
	b, err := h.backup.Export(c, h.now())
	if err != nil {
		h.abortWithError(c, err, "failed to export backup")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *handlerImpl) HandleImportBackup(c *gin.Context) {
	var b service.Backup
	err := c.ShouldBindJSON(&b)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	report, err := h.backup.Import(c, b)
	if err != nil {
		h.abortWithError(c, err, "failed to import backup")
		return
	}
	h.logger.Info().Int("tasks", report.Tasks).Msg("imported backup")
	c.Status(http.StatusNoContent)
}
