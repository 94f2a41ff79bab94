package clients

import (
	"context"
	"encoding/json"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type amqpConsumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// VoteEventHandler reacts to one decoded vote event.
type VoteEventHandler func(ctx context.Context, event *models.VoteEvent) error

// VoteConsumer reads vote events from the results queue.
type VoteConsumer struct {
	channel amqpConsumer
	cfg     *config.RabbitMQConfig
	handler VoteEventHandler
}

func NewVoteConsumer(cfg *config.Configuration, channel amqpConsumer, handler VoteEventHandler) *VoteConsumer {
	return &VoteConsumer{
		channel: channel,
		cfg:     &cfg.Queue.RabbitMQ,
		handler: handler,
	}
}

// Run blocks until ctx is done or the delivery channel closes.
func (c *VoteConsumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.cfg.VoteQueue,
		c.cfg.Consumer,
		c.cfg.AutoAck,
		c.cfg.Exclusive,
		false, // noLocal
		c.cfg.NoWait,
		nil,
	)
	if err != nil {
		return err
	}

	logrus.WithField("queue", c.cfg.VoteQueue).Info("Vote consumer started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Vote consumer stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				logrus.Warn("Vote delivery channel closed")
				return nil
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *VoteConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event models.VoteEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		logrus.WithError(err).Error("Failed to decode vote event, dropping")
		c.reject(d, false)
		return
	}

	if err := c.handler(ctx, &event); err != nil {
		logrus.WithError(err).WithField("poll", event.Poll).Error("Failed to handle vote event")
		c.reject(d, !d.Redelivered)
		return
	}

	if !c.cfg.AutoAck {
		if err := d.Ack(false); err != nil {
			logrus.WithError(err).Warn("Failed to ack vote event")
		}
	}
}

func (c *VoteConsumer) reject(d amqp.Delivery, requeue bool) {
	if c.cfg.AutoAck {
		return
	}
	if err := d.Nack(false, requeue); err != nil {
		logrus.WithError(err).Warn("Failed to nack vote event")
	}
}
