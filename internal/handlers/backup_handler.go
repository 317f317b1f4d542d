package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"metadata-repository/internal/archive"
	"metadata-repository/internal/models"
)

// backupLogsHandler godoc
// @Summary Archive the activity log now
// @Description Runs one archival cycle and responds when it has finished. Failures are reported in the response and on the server's error stream.
// @Tags operations
// @Produce json
// @Success 200 {object} models.BackupResponse
// @Router /logs/backup [get]
func (a *API) backupLogsHandler(c *gin.Context) {
	a.log.Info("[MANUAL_TRIGGER] Log backup requested via API")

	res, err := a.backup.Run(c.Request.Context())
	resp := models.BackupResponse{Status: "success", Key: res.Key, Bytes: res.Bytes}
	switch {
	case errors.Is(err, archive.ErrNotConfigured):
		resp.Status = "skipped"
		resp.Message = "Object store not configured"
	case err != nil:
		resp.Status = "error"
		resp.Message = "Backup failed, check server logs"
	case res.Skipped:
		resp.Status = "skipped"
		resp.Message = "Nothing to back up"
	default:
		resp.Message = "Backup process completed"
	}
	RespondWithSuccess(c, http.StatusOK, resp)
}
