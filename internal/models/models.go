package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is a stored metadata submission.
// @Description Dataset is a stored metadata submission. Payload holds the submitted JSON object with its original key order.
type Dataset struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	DatasetID       string    `json:"datasetId,omitempty" gorm:"type:varchar(255);index"`
	Title           string    `json:"title" gorm:"type:text;index:idx_title_agency"`
	SubmitterAgency string    `json:"submitterAgency" gorm:"type:text;index:idx_title_agency"`
	Domain          string    `json:"domain" gorm:"type:varchar(64);index"`
	Payload         string    `json:"-" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a registered submitter account.
// @Description User is a registered submitter account. The password hash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;unique"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// AppLog is a persisted user activity record.
// @Description AppLog is a persisted user activity record such as a login.
type AppLog struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"type:varchar(255);index"`
	Action    string    `json:"action" gorm:"type:varchar(100);not null"`
	Details   string    `json:"details,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{&Dataset{}, &User{}, &AppLog{}}
}

// CredentialsRequest is the payload for register and login.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// ActivityRequest is the payload for recording a user action.
type ActivityRequest struct {
	Email   string `json:"email" binding:"required,max=255"`
	Action  string `json:"action" binding:"required,min=1,max=100"`
	Details string `json:"details,omitempty" binding:"max=4000"`
}

// SaveResponse is returned by the intake endpoint.
type SaveResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	ID        string   `json:"id"`
	Action    string   `json:"action"`
	Domain    string   `json:"domain"`
	Unknown   []string `json:"unknownFields"`
	Persisted bool     `json:"persisted"`
}

// DatalakeResponse is returned after a data lake upload.
type DatalakeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

// BackupResponse reports the outcome of a manual log archival.
type BackupResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Key     string `json:"key,omitempty"`
	Bytes   int64  `json:"bytes"`
}

// VocabularyResponse lists the canonical metadata fields and business domains.
type VocabularyResponse struct {
	Fields  []string `json:"fields"`
	Domains []string `json:"domains"`
}

// PaginatedResponse wraps list results.
type PaginatedResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
