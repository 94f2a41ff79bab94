package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"polling-svc/src/internal/session"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const sessionKeyPattern = "session:%s:%s" // session:userID:sessionID

type Service interface {
	GetActiveSession(ctx context.Context, key string) (*session.Session, error)
	UpdateSessionActivity(ctx context.Context, key string) error
	CacheActiveSession(ctx context.Context, session *session.Session) error
	DeleteActiveSession(ctx context.Context, userID, sessionID string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	GetPollResult(ctx context.Context, poll string) (*models.PollResult, error)
	SavePollResult(ctx context.Context, result *models.PollResult) error
	GetResultList(ctx context.Context) ([]models.PollResultSummary, error)
	SaveResultList(ctx context.Context, list []models.PollResultSummary) error
	InvalidatePollResult(ctx context.Context, poll string) error
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache}
}

// SessionKey builds the cache key of an active session.
func SessionKey(userID, sessionID string) string {
	return fmt.Sprintf(sessionKeyPattern, userID, sessionID)
}

func (c *cacheService) GetActiveSession(ctx context.Context, key string) (*session.Session, error) {
	logrus.WithField("key", key).Debug("Getting active session from cache")

	var s session.Session
	found, err := c.getJSON(ctx, key, &s)
	if err != nil || !found {
		return nil, err
	}

	logrus.WithField("key", key).Debug("Session retrieved from cache successfully")
	return &s, nil
}

func (c *cacheService) UpdateSessionActivity(ctx context.Context, key string) error {
	logrus.WithField("key", key).Debug("Updating session activity in cache")

	s, err := c.GetActiveSession(ctx, key)
	if err != nil || s == nil {
		return err
	}

	s.LastActiveAt = time.Now()

	ttl := time.Duration(c.cfg.SessionExpirationMinutes) * time.Minute
	if remaining := time.Until(s.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return c.DeleteActiveSession(ctx, s.UserID, s.SessionID)
	}

	return c.setJSON(ctx, key, s, ttl)
}

func (c *cacheService) CacheActiveSession(ctx context.Context, s *session.Session) error {
	key := SessionKey(s.UserID, s.SessionID)

	expiration := time.Until(s.LastActiveAt.Add(time.Minute * time.Duration(c.cfg.SessionExpirationMinutes)))
	if remaining := time.Until(s.ExpiresAt); remaining < expiration {
		expiration = remaining
	}
	if expiration <= 0 {
		logrus.WithField("session_id", s.SessionID).Warn("Session already expired, not caching")
		return nil
	}

	if err := c.setJSON(ctx, key, s, expiration); err != nil {
		return err
	}

	logrus.WithField("session_id", s.SessionID).Debug("Session cached successfully")
	return nil
}

func (c *cacheService) DeleteActiveSession(ctx context.Context, userID, sessionID string) error {
	if err := c.client.Del(ctx, SessionKey(userID, sessionID)).Err(); err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to delete session from cache")
		return models.ErrRedisDelete
	}
	return nil
}

// DeleteUserSessions drops every cached session of a user.
func (c *cacheService) DeleteUserSessions(ctx context.Context, userID string) error {
	iter := c.client.Scan(ctx, 0, SessionKey(userID, "*"), 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to scan user sessions")
		return models.ErrRedisGet
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to delete user sessions from cache")
		return models.ErrRedisDelete
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"sessions": len(keys),
	}).Debug("User sessions removed from cache")
	return nil
}

func (c *cacheService) GetPollResult(ctx context.Context, poll string) (*models.PollResult, error) {
	var result models.PollResult
	found, err := c.getJSON(ctx, c.resultKey(poll), &result)
	if err != nil || !found {
		return nil, err
	}
	return &result, nil
}

func (c *cacheService) SavePollResult(ctx context.Context, result *models.PollResult) error {
	return c.setJSON(ctx, c.resultKey(result.Name), result, c.resultTTL())
}

func (c *cacheService) GetResultList(ctx context.Context) ([]models.PollResultSummary, error) {
	var list []models.PollResultSummary
	found, err := c.getJSON(ctx, c.cfg.ResultListKey, &list)
	if err != nil || !found {
		return nil, err
	}
	return list, nil
}

func (c *cacheService) SaveResultList(ctx context.Context, list []models.PollResultSummary) error {
	return c.setJSON(ctx, c.cfg.ResultListKey, list, c.resultTTL())
}

func (c *cacheService) InvalidatePollResult(ctx context.Context, poll string) error {
	if err := c.client.Del(ctx, c.resultKey(poll), c.cfg.ResultListKey).Err(); err != nil {
		logrus.WithError(err).WithField("poll", poll).Error("Failed to invalidate poll result")
		return models.ErrRedisDelete
	}
	logrus.WithField("poll", poll).Debug("Poll result invalidated")
	return nil
}

func (c *cacheService) resultKey(poll string) string {
	return c.cfg.ResultKeyPrefix + poll
}

func (c *cacheService) resultTTL() time.Duration {
	return time.Duration(c.cfg.ResultExpirationMinutes) * time.Minute
}

// getJSON reports found=false without error on a cache miss.
func (c *cacheService) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("key", key).Debug("Key not found in cache")
			return false, nil
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to get key from cache")
		return false, models.ErrRedisGet
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to unmarshal cached value")
		return false, models.ErrRedisGet
	}
	return true, nil
}

func (c *cacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to marshal value for cache")
		return models.ErrRedisSet
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to write cache")
		return models.ErrRedisSet
	}
	return nil
}
