package vote

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
	Create(ctx context.Context, vote *Vote) error
	GetByName(ctx context.Context, name string) (*Vote, error)
	List(ctx context.Context, req *ListVotesRequest) ([]*Vote, int64, error)
	UpdateOption(ctx context.Context, name, option string) error
	MarkSubmitted(ctx context.Context, name string, at time.Time) error
	RevertSubmitted(ctx context.Context, name string) error
	MarkCancelled(ctx context.Context, name string, at time.Time) error
	RevertCancelled(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	HasSubmitted(ctx context.Context, poll, voter string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type voteRepository struct {
	collection *mongo.Collection
}

func NewVoteRepository(mongoClient *clients.MongoDB, collectionName string) Repository {
	return newVoteRepository(mongoClient.Database.Collection(collectionName))
}

func newVoteRepository(collection *mongo.Collection) Repository {
	return &voteRepository{collection: collection}
}

// EnsureIndexes makes a second submitted vote by the same voter on a poll fail at write time.
func (r *voteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "poll", Value: 1}, {Key: "voter", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"docstatus": DocStatusSubmitted}),
		},
		{
			Keys: bson.D{{Key: "amended_from", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"amended_from": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to create vote indexes")
		return err
	}
	return nil
}

func (r *voteRepository) Create(ctx context.Context, vote *Vote) error {
	if _, err := r.collection.InsertOne(ctx, vote); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateRecord
		}
		logrus.WithError(err).WithField("vote", vote.Name).Error("Failed to insert vote")
		return models.ErrDatabaseInsert
	}
	return nil
}

func (r *voteRepository) GetByName(ctx context.Context, name string) (*Vote, error) {
	var vote Vote
	if err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&vote); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrVoteNotFound
		}
		logrus.WithError(err).WithField("vote", name).Error("Failed to get vote")
		return nil, models.ErrDatabaseQuery
	}
	return &vote, nil
}

func (r *voteRepository) List(ctx context.Context, req *ListVotesRequest) ([]*Vote, int64, error) {
	filter := bson.M{}
	if req.Poll != "" {
		filter["poll"] = req.Poll
	}
	if req.Owner != "" {
		filter["owner"] = req.Owner
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count votes")
		return nil, 0, models.ErrDatabaseQuery
	}

	opts := options.Find().
		SetLimit(int64(req.Limit)).
		SetSkip(int64((req.Page - 1) * req.Limit)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find votes")
		return nil, 0, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	votes := make([]*Vote, 0, req.Limit)
	if err := cursor.All(ctx, &votes); err != nil {
		logrus.WithError(err).Error("Failed to decode votes")
		return nil, 0, models.ErrDatabaseQuery
	}

	return votes, totalCount, nil
}

func (r *voteRepository) UpdateOption(ctx context.Context, name, option string) error {
	filter := bson.M{"name": name, "docstatus": DocStatusDraft}
	update := bson.M{"$set": bson.M{"option": option, "updated_at": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("vote", name).Error("Failed to update vote")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrVoteNotDraft
	}
	return nil
}

// MarkSubmitted moves a draft to submitted; the partial unique index rejects a second submission.
func (r *voteRepository) MarkSubmitted(ctx context.Context, name string, at time.Time) error {
	filter := bson.M{"name": name, "docstatus": DocStatusDraft}
	update := bson.M{"$set": bson.M{
		"docstatus":    DocStatusSubmitted,
		"submitted_at": at,
		"updated_at":   at,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadyVoted
		}
		logrus.WithError(err).WithField("vote", name).Error("Failed to submit vote")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrVoteAlreadyHandled
	}
	return nil
}

// RevertSubmitted puts a submitted vote back to draft when its tally could not be recorded.
func (r *voteRepository) RevertSubmitted(ctx context.Context, name string) error {
	filter := bson.M{"name": name, "docstatus": DocStatusSubmitted}
	update := bson.M{
		"$set":   bson.M{"docstatus": DocStatusDraft, "updated_at": time.Now()},
		"$unset": bson.M{"submitted_at": ""},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("vote", name).Error("Failed to revert vote submission")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrVoteNotSubmitted
	}
	return nil
}

// MarkCancelled moves a submitted vote to cancelled, which releases the voter's slot on the poll.
func (r *voteRepository) MarkCancelled(ctx context.Context, name string, at time.Time) error {
	filter := bson.M{"name": name, "docstatus": DocStatusSubmitted}
	update := bson.M{"$set": bson.M{
		"docstatus":    DocStatusCancelled,
		"cancelled_at": at,
		"updated_at":   at,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("vote", name).Error("Failed to cancel vote")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrVoteNotSubmitted
	}
	return nil
}

func (r *voteRepository) RevertCancelled(ctx context.Context, name string) error {
	filter := bson.M{"name": name, "docstatus": DocStatusCancelled}
	update := bson.M{
		"$set":   bson.M{"docstatus": DocStatusSubmitted, "updated_at": time.Now()},
		"$unset": bson.M{"cancelled_at": ""},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadyVoted
		}
		logrus.WithError(err).WithField("vote", name).Error("Failed to revert vote cancellation")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrVoteNotCancelled
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, name string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"name": name, "docstatus": bson.M{"$ne": DocStatusSubmitted}})
	if err != nil {
		logrus.WithError(err).WithField("vote", name).Error("Failed to delete vote")
		return models.ErrDatabaseDelete
	}
	if result.DeletedCount == 0 {
		return models.ErrVoteAlreadyHandled
	}
	return nil
}

func (r *voteRepository) HasSubmitted(ctx context.Context, poll, voter string) (bool, error) {
	filter := bson.M{"poll": poll, "voter": voter, "docstatus": DocStatusSubmitted}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"poll":  poll,
			"voter": voter,
		}).Error("Failed to check existing votes")
		return false, models.ErrDatabaseQuery
	}
	return count > 0, nil
}
