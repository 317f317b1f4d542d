// Package auth implements registered-account authentication: bcrypt password
// hashes stored in the document store and persisted activity records.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"metadata-repository/internal/database"
	"metadata-repository/internal/models"
)

// Error is the error class for auth failures.
var Error = errs.Class("auth")

var (
	// ErrUnavailable is returned when the document store cannot be reached.
	ErrUnavailable = errs.New("user store unavailable")
	// ErrDuplicateEmail is returned by Register for an email already in use.
	ErrDuplicateEmail = errs.New("email already registered")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errs.New("invalid email or password")
)

// ActionLogin is the activity recorded on successful login.
const ActionLogin = "Login"

// Service registers and authenticates users.
type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	cost int
}

// NewService returns a Service. db may be nil, in which case every call
// reports ErrUnavailable.
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log, cost: bcrypt.DefaultCost}
}

// Register creates an account with a salted bcrypt hash of password.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if !database.Available(ctx, s.db) {
		return nil, ErrUnavailable
	}
	email = normalizeEmail(email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, Error.Wrap(err)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	user := &models.User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, Error.Wrap(err)
	}

	s.log.Info("[AUTH] Register successful", zap.String("email", email))
	return user, nil
}

// Login checks the password and records a Login activity row.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	if !database.Available(ctx, s.db) {
		return nil, ErrUnavailable
	}
	email = normalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn("[AUTH] Failed login (user not found)", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("[AUTH] Failed login (password mismatch)", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	if err := s.db.WithContext(ctx).Create(&models.AppLog{ID: uuid.New(), Email: email, Action: ActionLogin}).Error; err != nil {
		return nil, Error.Wrap(err)
	}
	s.log.Info("[AUTH] Login successful", zap.String("email", email))
	return &user, nil
}

// RecordActivity persists a user action. When the store is down the action is
// only written to the local log and persisted is false.
func (s *Service) RecordActivity(ctx context.Context, email, action, details string) (persisted bool, err error) {
	if !database.Available(ctx, s.db) {
		s.log.Warn("[APP_LOG_LOCAL] database offline", zap.String("email", email), zap.String("action", action))
		return false, nil
	}
	entry := &models.AppLog{ID: uuid.New(), Email: normalizeEmail(email), Action: action, Details: details}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.log.Error("[APP_LOG_ERROR] Logging failed", zap.Error(err))
		return false, Error.Wrap(err)
	}
	s.log.Info("[APP_LOG]", zap.String("email", email), zap.String("action", action))
	return true, nil
}

// Activity returns the most recent activity rows for email, newest first.
func (s *Service) Activity(ctx context.Context, email string, limit int) ([]models.AppLog, error) {
	if !database.Available(ctx, s.db) {
		return nil, ErrUnavailable
	}
	var rows []models.AppLog
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).
		Order("created_at desc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return rows, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
