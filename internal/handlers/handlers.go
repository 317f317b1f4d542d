// Package handlers exposes the metadata repository over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"metadata-repository/internal/analysis"
	"metadata-repository/internal/archive"
	"metadata-repository/internal/auth"
	"metadata-repository/internal/intake"
	"metadata-repository/internal/models"
	"metadata-repository/internal/record"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// LogBackup runs one activity log archival cycle.
type LogBackup interface {
	Run(ctx context.Context) (archive.BackupResult, error)
}

// API wires the services into HTTP handlers.
type API struct {
	engine   *analysis.Engine
	intake   *intake.Service
	datalake *archive.Datalake
	auth     *auth.Service
	backup   LogBackup
	log      *zap.Logger
}

// NewAPI creates a new API handler.
func NewAPI(engine *analysis.Engine, in *intake.Service, lake *archive.Datalake, users *auth.Service, backup LogBackup, log *zap.Logger) *API {
	return &API{engine: engine, intake: in, datalake: lake, auth: users, backup: backup, log: log}
}

// RegisterRoutes registers the API routes with the given Gin router.
func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/", a.rootHandler)
	router.GET("/healthz", a.healthHandler)
	router.NoRoute(a.notFoundHandler)

	v1 := router.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", a.registerHandler)
		authRoutes.POST("/login", a.loginHandler)
	}
	v1.POST("/activity", a.activityHandler)
	v1.GET("/activity", a.listActivityHandler)

	v1.POST("/metadata", a.saveMetadataHandler)
	v1.POST("/datalake", a.saveDatalakeHandler)
	v1.POST("/analyze", a.analyzeHandler)
	v1.GET("/vocabulary", a.vocabularyHandler)

	datasetRoutes := v1.Group("/datasets")
	{
		datasetRoutes.GET("", a.listDatasetsHandler)
		datasetRoutes.GET("/:id", a.getDatasetHandler)
	}

	v1.GET("/logs/backup", a.backupLogsHandler)
}

func (a *API) rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "Metadata Repository Backend is Running!")
}

func (a *API) notFoundHandler(c *gin.Context) {
	RespondWithError(c, http.StatusNotFound, models.ErrorCodeNotFound, "Route not found", gin.H{"path": c.Request.URL.Path})
}

// healthHandler godoc
// @Summary Service health
// @Description Reports which backends are reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /healthz [get]
func (a *API) healthHandler(c *gin.Context) {
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"status":   "ok",
		"database": a.intake.Available(c.Request.Context()),
		"datalake": a.datalake.Available(),
	})
}

// bindRecord decodes the request body as an ordered JSON object.
func bindRecord(c *gin.Context) (*record.Record, bool) {
	body, err := c.GetRawData()
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidJSON, "Could not read request body", gin.H{"reason": err.Error()})
		return nil, false
	}
	rec := record.New()
	if err := json.Unmarshal(body, rec); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidJSON, "Request body must be a JSON object", gin.H{"reason": err.Error()})
		return nil, false
	}
	return rec, true
}

// pagination reads limit and offset the same way for every list endpoint.
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(DefaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid limit parameter: not a number.", gin.H{"limit": limitStr})
		return 0, 0, false
	}
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}

	offsetStr := c.DefaultQuery("offset", "0")
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid offset parameter: not a number.", gin.H{"offset": offsetStr})
		return 0, 0, false
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, true
}
