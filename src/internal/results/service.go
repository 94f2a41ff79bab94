package results

import (
	"context"
	"encoding/json"
	"fmt"
	"polling-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

type ResultSource interface {
	GetResult(ctx context.Context, name string) (*models.PollResult, error)
}

// Broadcaster pushes a fresh result to live watchers for each consumed vote event.
type Broadcaster struct {
	hub    *Hub
	source ResultSource
}

func NewBroadcaster(hub *Hub, source ResultSource) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		source: source,
	}
}

func (b *Broadcaster) HandleVoteEvent(ctx context.Context, event *models.VoteEvent) error {
	if event.Poll == "" {
		return fmt.Errorf("%w: vote event without poll", models.ErrInvalidParams)
	}
	if b.hub.Watchers(event.Poll) == 0 {
		return nil
	}

	message, err := b.snapshot(ctx, event.Poll)
	if err != nil {
		return err
	}

	b.hub.Broadcast(event.Poll, message)

	logrus.WithFields(logrus.Fields{
		"poll":   event.Poll,
		"vote":   event.VoteName,
		"action": event.Action,
	}).Debug("Live results broadcast")
	return nil
}

func (b *Broadcaster) snapshot(ctx context.Context, poll string) ([]byte, error) {
	result, err := b.source.GetResult(ctx, poll)
	if err != nil {
		return nil, err
	}

	message, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal poll result: %w", err)
	}
	return message, nil
}
