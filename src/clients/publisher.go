package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type amqpPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// VotePublisher publishes vote events to the polling exchange
type VotePublisher struct {
	channel amqpPublisher
	cfg     *config.RabbitMQConfig
	mu      sync.Mutex
}

// NewVotePublisher creates new vote event publisher
func NewVotePublisher(cfg *config.Configuration, channel amqpPublisher) *VotePublisher {
	return &VotePublisher{
		channel: channel,
		cfg:     &cfg.Queue.RabbitMQ,
	}
}

// PublishVoteEvent publishes a vote event message to RabbitMQ
func (p *VotePublisher) PublishVoteEvent(_ context.Context, event *models.VoteEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal vote event: %w", err)
	}

	p.mu.Lock()
	err = p.channel.Publish(
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    event.Timestamp,
		},
	)
	p.mu.Unlock()

	if err != nil {
		logrus.WithError(err).Error("Failed to publish vote event")
		return fmt.Errorf("failed to publish vote event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"vote":        event.VoteName,
		"poll":        event.Poll,
		"action":      event.Action,
		"exchange":    p.cfg.Exchange,
		"routing_key": p.cfg.RoutingKey,
	}).Debug("Vote event published")

	return nil
}
