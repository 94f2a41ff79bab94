package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "cfg.yml")

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, "/frontend", cfg.Frontend.BasePath)
	assert.Equal(t, "sid", cfg.Security.TokenCookie)
	assert.Equal(t, "user_id", cfg.Security.UserCookie)
	assert.Equal(t, "poll_votes", cfg.Database.Collections.Votes)
	assert.Equal(t, "vote.submitted", cfg.Queue.RabbitMQ.RoutingKey)
	assert.Equal(t, 10, cfg.Queue.RabbitMQ.PrefetchCount)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "cfg.yml")
	t.Setenv("MONGODB_URL", "mongodb://db:27017")
	t.Setenv("DB_NAME", "polls_test")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RABBITMQ_URL", "amqp://mq")
	t.Setenv("JWT_KEY", "secret")
	t.Setenv("SERVER_PORT", "9090")

	cfg := Load()
	assert.Equal(t, "mongodb://db:27017", cfg.Database.Url)
	assert.Equal(t, "polls_test", cfg.Database.DbName)
	assert.Equal(t, "redis:6379", cfg.Redis.Url)
	assert.Equal(t, 3, cfg.Redis.Db)
	assert.Equal(t, "amqp://mq", cfg.Queue.RabbitMQ.Url)
	assert.Equal(t, "secret", cfg.Security.JwtKey)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestEnvOverrideIgnoresBadRedisDB(t *testing.T) {
	cfg := &Configuration{Redis: Redis{Db: 1}}
	t.Setenv("REDIS_DB", "x")

	applyEnvOverrides(cfg)
	assert.Equal(t, 1, cfg.Redis.Db)
}
