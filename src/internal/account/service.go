package account

import (
	"context"
	"errors"
	"fmt"
	"polling-svc/src/internal/cache"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/middleware"
	"polling-svc/src/internal/models"
	"polling-svc/src/internal/session"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(ctx context.Context, req *LoginRequest, client ClientInfo) (*LoginResponse, error)
	Logout(ctx context.Context, principal *models.Principal) error
	Me(ctx context.Context, principal *models.Principal) (*Profile, error)
	CreateUser(ctx context.Context, email, fullName, password, userType string) (*User, error)
}

type accountService struct {
	users        Repository
	sessions     session.Repository
	cacheService cache.Service
	security     *config.SecuritySettings
	now          func() time.Time
}

func NewAccountService(users Repository, sessions session.Repository, cacheService cache.Service, cfg *config.Configuration) Service {
	return &accountService{
		users:        users,
		sessions:     sessions,
		cacheService: cacheService,
		security:     &cfg.Security,
		now:          time.Now,
	}
}

func (s *accountService) Login(ctx context.Context, req *LoginRequest, client ClientInfo) (*LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			logrus.WithField("email", email).Warn("Login attempt for unknown user")
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logrus.WithField("email", email).Warn("Login attempt with wrong password")
		return nil, models.ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, models.ErrUserDisabled
	}

	now := s.now()
	sess := &session.Session{
		SessionID:    uuid.NewString(),
		UserID:       user.ID.Hex(),
		IsActive:     true,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(time.Duration(s.security.SessionMinutes) * time.Minute),
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	principal := &models.Principal{
		UserID:    sess.UserID,
		SessionID: sess.SessionID,
		Email:     user.Email,
		Role:      user.UserType,
	}
	token, expiresAt, err := middleware.IssueAccessToken(s.security.JwtKey, principal, time.Duration(s.security.AccessTokenMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.cacheService.CacheActiveSession(ctx, sess); err != nil {
		logrus.WithError(err).Warn("Failed to cache new session, continuing")
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logrus.WithError(err).Warn("Failed to record last login, continuing")
	}
	user.LastLoginAt = &now

	logrus.WithFields(logrus.Fields{
		"user_id":    sess.UserID,
		"session_id": sess.SessionID,
		"user_type":  user.UserType,
	}).Info("User logged in")

	return &LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user.ToProfile(),
	}, nil
}

func (s *accountService) Logout(ctx context.Context, principal *models.Principal) error {
	if principal == nil {
		return models.ErrNotAuthenticated
	}

	if err := s.sessions.Logout(ctx, principal.SessionID); err != nil && !errors.Is(err, models.ErrSessionNotFound) {
		return err
	}
	if err := s.cacheService.DeleteActiveSession(ctx, principal.UserID, principal.SessionID); err != nil {
		logrus.WithError(err).Warn("Failed to evict session from cache")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    principal.UserID,
		"session_id": principal.SessionID,
	}).Info("User logged out")
	return nil
}

func (s *accountService) Me(ctx context.Context, principal *models.Principal) (*Profile, error) {
	if principal == nil {
		return nil, models.ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, models.ErrUserDisabled
	}
	return user.ToProfile(), nil
}

func (s *accountService) CreateUser(ctx context.Context, email, fullName, password, userType string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidParams
	}
	if userType != models.UserTypeSystemManager && userType != models.UserTypeWebsite {
		return nil, models.ErrInvalidParams
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		UserType:     userType,
		Roles:        []string{RolePollingUser},
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"email":     email,
		"user_type": userType,
	}).Info("User created")
	return user, nil
}
