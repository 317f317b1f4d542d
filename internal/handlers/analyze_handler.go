package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"metadata-repository/internal/models"
)

// analyzeHandler godoc
// @Summary Analyze a dataset
// @Description Normalizes the fields, classifies the business domain, scans the data dictionary for PII/SPII and parses the lineage. Accepts a bare dataset or a {"result": ..., "data": {...}} envelope. Nothing is stored.
// @Tags analysis
// @Accept json
// @Produce json
// @Param dataset body object true "Dataset"
// @Success 200 {object} analysis.Report
// @Failure 400 {object} models.APIError "Invalid JSON (INVALID_JSON)"
// @Router /analyze [post]
func (a *API) analyzeHandler(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}
	RespondWithSuccess(c, http.StatusOK, a.engine.Analyze(rec))
}

// vocabularyHandler godoc
// @Summary Metadata vocabulary
// @Description Lists the canonical metadata field names and the business domains in classification order.
// @Tags analysis
// @Produce json
// @Success 200 {object} models.VocabularyResponse
// @Router /vocabulary [get]
func (a *API) vocabularyHandler(c *gin.Context) {
	RespondWithSuccess(c, http.StatusOK, models.VocabularyResponse{
		Fields:  a.engine.Normalizer.Fields(),
		Domains: a.engine.Classifier.Domains(),
	})
}
