package setup

import (
	"context"
	"errors"
	"fmt"
	"polling-svc/src/clients"
	"polling-svc/src/internal/account"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Role struct {
	Name       string    `json:"name" bson:"name"`
	DeskAccess bool      `json:"deskAccess" bson:"desk_access"`
	Disabled   bool      `json:"disabled" bson:"disabled"`
	IsCustom   bool      `json:"isCustom" bson:"is_custom"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

type IndexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

type UserCreator interface {
	CreateUser(ctx context.Context, email, fullName, password, userType string) (*account.User, error)
}

// Installer prepares a fresh database: indexes, the Polling User role and an optional administrator.
type Installer struct {
	roles    *mongo.Collection
	indexes  []IndexEnsurer
	accounts UserCreator
	cfg      *config.SetupConfig
}

func NewInstaller(db *clients.MongoDB, cfg *config.Configuration, accounts UserCreator, indexes ...IndexEnsurer) *Installer {
	return newInstaller(db.Database.Collection(cfg.Database.Collections.Roles), &cfg.Setup, accounts, indexes...)
}

func newInstaller(roles *mongo.Collection, cfg *config.SetupConfig, accounts UserCreator, indexes ...IndexEnsurer) *Installer {
	return &Installer{
		roles:    roles,
		indexes:  indexes,
		accounts: accounts,
		cfg:      cfg,
	}
}

func (i *Installer) Run(ctx context.Context) error {
	for _, ix := range i.indexes {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}
	}

	if err := i.EnsurePollingUserRole(ctx); err != nil {
		return err
	}

	if err := i.seedAdmin(ctx); err != nil {
		return err
	}

	logrus.Info("Polling setup completed successfully")
	return nil
}

// EnsurePollingUserRole creates the Polling User role unless it already exists.
func (i *Installer) EnsurePollingUserRole(ctx context.Context) error {
	role := Role{
		Name:       account.RolePollingUser,
		DeskAccess: true,
		IsCustom:   true,
		CreatedAt:  time.Now(),
	}

	result, err := i.roles.UpdateOne(ctx,
		bson.M{"name": role.Name},
		bson.M{"$setOnInsert": role},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		logrus.WithError(err).WithField("role", role.Name).Error("Failed to create role")
		return models.ErrDatabaseInsert
	}

	if result.UpsertedCount == 0 {
		logrus.WithField("role", role.Name).Info("Role already exists")
		return nil
	}

	logrus.WithField("role", role.Name).Info("Role created successfully")
	return nil
}

func (i *Installer) seedAdmin(ctx context.Context) error {
	if i.cfg.AdminEmail == "" || i.cfg.AdminPassword == "" {
		return nil
	}

	_, err := i.accounts.CreateUser(ctx, i.cfg.AdminEmail, i.cfg.AdminName, i.cfg.AdminPassword, models.UserTypeSystemManager)
	if errors.Is(err, models.ErrDuplicateRecord) {
		logrus.WithField("email", i.cfg.AdminEmail).Debug("Administrator already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	logrus.WithField("email", i.cfg.AdminEmail).Info("Administrator created")
	return nil
}
