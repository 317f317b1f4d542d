package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"metadata-repository/internal/auth"
	"metadata-repository/internal/models"
)

// registerHandler godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.CredentialsRequest true "Email and password"
// @Success 201 {object} models.User
// @Failure 400 {object} models.APIError "Validation error or email already registered"
// @Failure 503 {object} models.APIError "Database unavailable"
// @Router /auth/register [post]
func (a *API) registerHandler(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Email and password are required", gin.H{"reason": err.Error()})
		return
	}

	user, err := a.auth.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Database is not available", nil)
	case errors.Is(err, auth.ErrDuplicateEmail):
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeDuplicateEmail, "Email is already registered", gin.H{"email": req.Email})
	case err != nil:
		a.log.Error("[AUTH_ERROR] Register failed", zap.Error(err))
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Register failed", nil)
	default:
		RespondWithSuccess(c, http.StatusCreated, user)
	}
}

// loginHandler godoc
// @Summary Log in
// @Description Checks the password and records a Login activity.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.CredentialsRequest true "Email and password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError "Validation error"
// @Failure 401 {object} models.APIError "Invalid credentials"
// @Failure 503 {object} models.APIError "Database unavailable"
// @Router /auth/login [post]
func (a *API) loginHandler(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Email and password are required", gin.H{"reason": err.Error()})
		return
	}

	user, err := a.auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Database is not available", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		RespondWithError(c, http.StatusUnauthorized, models.ErrorCodeInvalidCredentials, "User not found or password is incorrect", nil)
	case err != nil:
		a.log.Error("[AUTH_ERROR] Login failed", zap.Error(err))
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Login failed", nil)
	default:
		RespondWithSuccess(c, http.StatusOK, gin.H{"status": "success", "message": "Login successful", "email": user.Email})
	}
}

// activityHandler godoc
// @Summary Record a user activity
// @Description Persists the activity when the database is up; otherwise it is only written to the local log.
// @Tags auth
// @Accept json
// @Produce json
// @Param activity body models.ActivityRequest true "Activity"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError "Validation error"
// @Failure 500 {object} models.APIError "Failed to record activity"
// @Router /activity [post]
func (a *API) activityHandler(c *gin.Context) {
	var req models.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Email and action are required", gin.H{"reason": err.Error()})
		return
	}

	persisted, err := a.auth.RecordActivity(c.Request.Context(), req.Email, req.Action, req.Details)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to record activity", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{"status": "success", "persisted": persisted})
}

// listActivityHandler godoc
// @Summary List a user's recent activity
// @Tags auth
// @Produce json
// @Param email query string true "User email"
// @Param limit query int false "Page size" default(10)
// @Success 200 {array} models.AppLog
// @Failure 400 {object} models.APIError "Missing email"
// @Failure 503 {object} models.APIError "Database unavailable"
// @Router /activity [get]
func (a *API) listActivityHandler(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeMissingRequiredField, "email query parameter is required", nil)
		return
	}
	limit, _, ok := pagination(c)
	if !ok {
		return
	}

	rows, err := a.auth.Activity(c.Request.Context(), email, limit)
	switch {
	case errors.Is(err, auth.ErrUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Database is not available", nil)
	case err != nil:
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list activity", nil)
	default:
		RespondWithSuccess(c, http.StatusOK, rows)
	}
}
