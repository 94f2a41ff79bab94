package account

import (
	"context"
	"errors"
	"polling-svc/src/clients"
	"polling-svc/src/internal/models"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	EnsureIndexes(ctx context.Context) error
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

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to find user")
		return nil, models.ErrDatabaseQuery
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(user.Email)

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateRecord
		}
		logrus.WithError(err).WithField("email", user.Email).Error("Failed to insert user")
		return models.ErrDatabaseInsert
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_login_at": at, "updated_at": at}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		logrus.WithError(err).WithField("user_id", id.Hex()).Error("Failed to update last login")
		return models.ErrDatabaseUpdate
	}
	return nil
}

func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to create user indexes")
		return err
	}
	return nil
}

// AccessLookup serves the auth middleware's per-request user type and enabled check.
type AccessLookup struct {
	users Repository
}

func NewAccessLookup(users Repository) *AccessLookup {
	return &AccessLookup{users: users}
}

func (l *AccessLookup) LookupAccess(ctx context.Context, userID string) (*models.UserAccess, error) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserAccess{
		UserType: user.UserType,
		Enabled:  user.Enabled,
	}, nil
}
