package user

import (
	"context"
	"polling-svc/src/clients"
	"polling-svc/src/internal/account"
	"polling-svc/src/internal/models"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	regexKey   = "$regex"
	optionsKey = "$options"
)

type Repository interface {
	List(ctx context.Context, req *ListUsersRequest) ([]*account.User, int64, error)
	Stats(ctx context.Context) (*Stats, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(mongoClient *clients.MongoDB, collectionName string) Repository {
	return newUserRepository(mongoClient.Database.Collection(collectionName))
}

func newUserRepository(collection *mongo.Collection) Repository {
	return &userRepository{collection: collection}
}

func (r *userRepository) List(ctx context.Context, req *ListUsersRequest) ([]*account.User, int64, error) {
	filter := bson.M{}

	if req.UserType != "" {
		filter["user_type"] = req.UserType
	}

	switch req.Status {
	case StatusEnabled:
		filter["enabled"] = true
	case StatusDisabled:
		filter["enabled"] = false
	}

	if req.Search != "" {
		pattern := regexp.QuoteMeta(req.Search)
		filter["$or"] = []bson.M{
			{"full_name": bson.M{regexKey: pattern, optionsKey: "i"}},
			{"email": bson.M{regexKey: pattern, optionsKey: "i"}},
		}
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count users")
		return nil, 0, models.ErrDatabaseQuery
	}

	skip := (req.Page - 1) * req.Limit
	opts := options.Find().
		SetLimit(int64(req.Limit)).
		SetSkip(int64(skip)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find users")
		return nil, 0, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	users := []*account.User{}
	for cursor.Next(ctx) {
		var u account.User
		if err := cursor.Decode(&u); err != nil {
			logrus.WithError(err).Error("Failed to decode user")
			continue
		}
		users = append(users, &u)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, 0, models.ErrDatabaseQuery
	}

	logrus.WithFields(logrus.Fields{
		"count": len(users),
		"total": totalCount,
		"page":  req.Page,
		"limit": req.Limit,
	}).Debug("Retrieved users successfully")

	return users, totalCount, nil
}

func (r *userRepository) Stats(ctx context.Context) (*Stats, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &Stats{}
	for _, c := range []struct {
		target *int64
		filter bson.M
	}{
		{&stats.Total, bson.M{}},
		{&stats.Enabled, bson.M{"enabled": true}},
		{&stats.Disabled, bson.M{"enabled": false}},
		{&stats.SystemManagers, bson.M{"user_type": models.UserTypeSystemManager}},
		{&stats.WebsiteUsers, bson.M{"user_type": models.UserTypeWebsite}},
		{&stats.PollingUsers, bson.M{"roles": account.RolePollingUser}},
		{&stats.NewThisMonth, bson.M{"created_at": bson.M{"$gte": startOfMonth}}},
	} {
		count, err := r.collection.CountDocuments(ctx, c.filter)
		if err != nil {
			logrus.WithError(err).Error("Failed to count users")
			return nil, models.ErrDatabaseQuery
		}
		*c.target = count
	}

	return stats, nil
}

func (r *userRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidParams
	}

	update := bson.M{
		"$set": bson.M{
			"enabled":    enabled,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to update user")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrUserNotFound
	}

	return nil
}
