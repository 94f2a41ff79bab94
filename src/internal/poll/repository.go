package poll

import (
	"context"
	"errors"
	"polling-svc/src/clients"
	"polling-svc/src/internal/models"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	GetByName(ctx context.Context, name string) (*Poll, error)
	GetOptions(ctx context.Context, name string) ([]Option, error)
	List(ctx context.Context, req *ListPollsRequest) ([]*Poll, int64, error)
	Create(ctx context.Context, poll *Poll) error
	UpdateStatus(ctx context.Context, name, status string) error
	IncrementVoteCount(ctx context.Context, name, option string, delta int) error
	EnsureIndexes(ctx context.Context) error
}

type pollRepository struct {
	collection *mongo.Collection
}

func NewPollRepository(mongoClient *clients.MongoDB, collectionName string) Repository {
	return newPollRepository(mongoClient.Database.Collection(collectionName))
}

func newPollRepository(collection *mongo.Collection) Repository {
	return &pollRepository{collection: collection}
}

func (r *pollRepository) GetByName(ctx context.Context, name string) (*Poll, error) {
	var poll Poll
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&poll)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPollNotFound
		}
		logrus.WithError(err).WithField("poll", name).Error("Failed to get poll")
		return nil, models.ErrDatabaseQuery
	}
	return &poll, nil
}

// GetOptions reads only the options array, in stored order.
func (r *pollRepository) GetOptions(ctx context.Context, name string) ([]Option, error) {
	opts := options.FindOne().SetProjection(bson.M{"options": 1, "_id": 0})

	var doc struct {
		Options []Option `bson:"options"`
	}
	err := r.collection.FindOne(ctx, bson.M{"name": name}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPollNotFound
		}
		logrus.WithError(err).WithField("poll", name).Error("Failed to get poll options")
		return nil, models.ErrDatabaseQuery
	}
	return doc.Options, nil
}

func (r *pollRepository) List(ctx context.Context, req *ListPollsRequest) ([]*Poll, int64, error) {
	filter := bson.M{}
	if req.Status != "" {
		filter["status"] = req.Status
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count polls")
		return nil, 0, models.ErrDatabaseQuery
	}

	skip := (req.Page - 1) * req.Limit
	opts := options.Find().
		SetLimit(int64(req.Limit)).
		SetSkip(int64(skip)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find polls")
		return nil, 0, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	polls := make([]*Poll, 0, req.Limit)
	for cursor.Next(ctx) {
		var poll Poll
		if err := cursor.Decode(&poll); err != nil {
			logrus.WithError(err).Error("Failed to decode poll")
			continue
		}
		polls = append(polls, &poll)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, 0, models.ErrDatabaseQuery
	}

	return polls, totalCount, nil
}

func (r *pollRepository) Create(ctx context.Context, poll *Poll) error {
	if _, err := r.collection.InsertOne(ctx, poll); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateRecord
		}
		logrus.WithError(err).WithField("poll", poll.Name).Error("Failed to insert poll")
		return models.ErrDatabaseInsert
	}
	return nil
}

func (r *pollRepository) UpdateStatus(ctx context.Context, name, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"name": name}, update)
	if err != nil {
		logrus.WithError(err).WithField("poll", name).Error("Failed to update poll status")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrPollNotFound
	}
	return nil
}

// IncrementVoteCount moves one option's tally by delta atomically; a tally never drops below zero.
func (r *pollRepository) IncrementVoteCount(ctx context.Context, name, option string, delta int) error {
	filter := bson.M{"name": name, "options.option_text": option}
	if delta < 0 {
		filter = bson.M{
			"name":    name,
			"options": bson.M{"$elemMatch": bson.M{"option_text": option, "vote_count": bson.M{"$gte": -delta}}},
		}
	}
	update := bson.M{
		"$inc": bson.M{"options.$.vote_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"poll":   name,
			"option": option,
		}).Error("Failed to increment vote count")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrOptionNotInPoll
	}
	return nil
}

func (r *pollRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to create poll indexes")
		return err
	}
	return nil
}
