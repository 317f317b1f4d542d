package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"metadata-repository/internal/classify"
	"metadata-repository/internal/intake"
	"metadata-repository/internal/models"
)

// saveMetadataHandler godoc
// @Summary Save or update a metadata submission
// @Description Logs the submission locally, then stores it in the document store. With "action": "update" the existing document is found by datasetId, then by title and agency; when none matches a new document is inserted. When the document store is offline the submission is only logged and a "local-" id is returned.
// @Tags metadata
// @Accept json
// @Produce json
// @Param submission body object true "Arbitrary metadata fields"
// @Success 200 {object} models.SaveResponse
// @Failure 400 {object} models.APIError "Invalid JSON (INVALID_JSON)"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /metadata [post]
func (a *API) saveMetadataHandler(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}

	res, err := a.intake.Save(c.Request.Context(), rec)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to process data in the document store", nil)
		return
	}

	msg := "Saved to local log and document store successfully"
	switch {
	case !res.Persisted:
		msg = "Saved to local log successfully (document store offline)"
	case res.Action == intake.ActionUpdate:
		msg = "Updated local log and document store successfully"
	}
	RespondWithSuccess(c, http.StatusOK, models.SaveResponse{
		Status:    "success",
		Message:   msg,
		ID:        res.ID,
		Action:    res.Action,
		Domain:    res.Domain,
		Unknown:   res.Unknown,
		Persisted: res.Persisted,
	})
}

// listDatasetsHandler godoc
// @Summary List stored datasets
// @Description Lists datasets matching a business domain and a free-text query. Domain "all" or empty matches everything.
// @Tags metadata
// @Produce json
// @Param domain query string false "Business domain (e.g. Industry) or all"
// @Param q query string false "Free-text query"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.PaginatedResponse
// @Failure 400 {object} models.APIError
// @Failure 503 {object} models.APIError "Document store unavailable"
// @Router /datasets [get]
func (a *API) listDatasetsHandler(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	domain := c.DefaultQuery("domain", classify.All)

	docs, total, err := a.intake.List(c.Request.Context(), intake.ListOptions{
		Domain: domain,
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if errors.Is(err, intake.ErrUnavailable) {
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Document store is not available", nil)
		return
	}
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list datasets", nil)
		return
	}

	RespondWithSuccess(c, http.StatusOK, models.PaginatedResponse{
		Data:   docs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// getDatasetHandler godoc
// @Summary Get a stored dataset
// @Tags metadata
// @Produce json
// @Param id path string true "Dataset ID (UUID)"
// @Success 200 {object} object
// @Failure 400 {object} models.APIError "Invalid ID format"
// @Failure 404 {object} models.APIError "Dataset not found"
// @Failure 503 {object} models.APIError "Document store unavailable"
// @Router /datasets/{id} [get]
func (a *API) getDatasetHandler(c *gin.Context) {
	idStr := c.Param("id")
	if _, err := uuid.Parse(idStr); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for dataset ID", gin.H{"id": idStr})
		return
	}

	doc, err := a.intake.Get(c.Request.Context(), idStr)
	switch {
	case errors.Is(err, intake.ErrUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Document store is not available", nil)
	case errors.Is(err, intake.ErrNotFound):
		RespondWithError(c, http.StatusNotFound, models.ErrorCodeDatasetNotFound, "Dataset not found", gin.H{"id": idStr})
	case err != nil:
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to get dataset", nil)
	default:
		RespondWithSuccess(c, http.StatusOK, doc)
	}
}
