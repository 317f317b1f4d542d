package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"metadata-repository/internal/archive"
	"metadata-repository/internal/models"
)

// saveDatalakeHandler godoc
// @Summary Save a submission to the data lake
// @Description Uploads the submission as indented JSON under raw/<domain>/<title>_<timestamp>.json.
// @Tags metadata
// @Accept json
// @Produce json
// @Param submission body object true "Arbitrary metadata fields"
// @Success 200 {object} models.DatalakeResponse
// @Failure 400 {object} models.APIError "Invalid JSON (INVALID_JSON)"
// @Failure 500 {object} models.APIError "Upload failed (ARCHIVE_FAILED)"
// @Failure 503 {object} models.APIError "Object store not configured"
// @Router /datalake [post]
func (a *API) saveDatalakeHandler(c *gin.Context) {
	if !a.datalake.Available() {
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Data lake service not available", nil)
		return
	}
	rec, ok := bindRecord(c)
	if !ok {
		return
	}

	key, err := a.datalake.Upload(c.Request.Context(), rec)
	if errors.Is(err, archive.ErrNotConfigured) {
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Data lake service not available", nil)
		return
	}
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeArchiveFailed, "Failed to save to the data lake", nil)
		return
	}

	RespondWithSuccess(c, http.StatusOK, models.DatalakeResponse{
		Status:  "success",
		Message: "Saved to data lake successfully",
		Key:     key,
	})
}
