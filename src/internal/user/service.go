package user

import (
	"context"
	"fmt"
	"math"
	"polling-svc/src/internal/account"
	"polling-svc/src/internal/cache"
	"polling-svc/src/internal/models"
	"polling-svc/src/internal/session"

	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Service interface {
	ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error)
	GetStats(ctx context.Context) (*Stats, error)
	EnableUser(ctx context.Context, principal *models.Principal, id string) error
	DisableUser(ctx context.Context, principal *models.Principal, id string) error
}

type userService struct {
	repository   Repository
	sessions     session.Repository
	cacheService cache.Service
}

func NewUserService(repository Repository, sessions session.Repository, cacheService cache.Service) Service {
	return &userService{
		repository:   repository,
		sessions:     sessions,
		cacheService: cacheService,
	}
}

func (s *userService) ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error) {
	if req.Limit <= 0 {
		req.Limit = defaultPageLimit
	}
	if req.Limit > maxPageLimit {
		req.Limit = maxPageLimit
	}
	if req.Page <= 0 {
		req.Page = 1
	}

	if req.UserType != "" && req.UserType != models.UserTypeSystemManager && req.UserType != models.UserTypeWebsite {
		return nil, fmt.Errorf("%w: invalid user type filter", models.ErrInvalidParams)
	}
	if req.Status != "" && req.Status != StatusEnabled && req.Status != StatusDisabled {
		return nil, fmt.Errorf("%w: invalid status filter", models.ErrInvalidParams)
	}

	users, totalCount, err := s.repository.List(ctx, req)
	if err != nil {
		return nil, err
	}

	profiles := make([]*account.Profile, len(users))
	for i, u := range users {
		profiles[i] = u.ToProfile()
	}

	return &ListUsersResponse{
		Users:      profiles,
		TotalCount: totalCount,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(req.Limit))),
	}, nil
}

func (s *userService) GetStats(ctx context.Context) (*Stats, error) {
	stats, err := s.repository.Stats(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to get user stats from repository")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"total":           stats.Total,
		"enabled":         stats.Enabled,
		"system_managers": stats.SystemManagers,
		"new_this_month":  stats.NewThisMonth,
	}).Debug("User statistics computed")
	return stats, nil
}

func (s *userService) EnableUser(ctx context.Context, principal *models.Principal, id string) error {
	if err := s.repository.SetEnabled(ctx, id, true); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    id,
		"changed_by": principal.Email,
	}).Info("User enabled")
	return nil
}

// DisableUser blocks future logins and ends every open session of the user.
func (s *userService) DisableUser(ctx context.Context, principal *models.Principal, id string) error {
	if principal.UserID == id {
		return fmt.Errorf("%w: cannot disable your own account", models.ErrInvalidParams)
	}

	if err := s.repository.SetEnabled(ctx, id, false); err != nil {
		return err
	}

	closed, err := s.sessions.LogoutAllForUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.cacheService.DeleteUserSessions(ctx, id); err != nil {
		logrus.WithError(err).WithField("user_id", id).Warn("Failed to drop cached sessions of disabled user")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":         id,
		"changed_by":      principal.Email,
		"closed_sessions": closed,
	}).Info("User disabled")
	return nil
}
