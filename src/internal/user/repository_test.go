package user

import (
	"context"
	"polling-svc/src/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestRepositorySetEnabled(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	id := primitive.NewObjectID().Hex()

	mt.Run("updated", func(mt *mtest.T) {
		repo := newUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(t, repo.SetEnabled(context.Background(), id, false))
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := newUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		assert.ErrorIs(t, repo.SetEnabled(context.Background(), id, true), models.ErrUserNotFound)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		repo := newUserRepository(mt.Coll)
		assert.ErrorIs(t, repo.SetEnabled(context.Background(), "not-an-id", true), models.ErrInvalidParams)
	})
}

func TestRepositoryStats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("counts", func(mt *mtest.T) {
		repo := newUserRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		for _, n := range []int32{10, 8, 2, 1, 9, 7, 3} {
			mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}}))
		}

		stats, err := repo.Stats(context.Background())
		if assert.NoError(t, err) {
			assert.Equal(t, &Stats{
				Total:          10,
				Enabled:        8,
				Disabled:       2,
				SystemManagers: 1,
				WebsiteUsers:   9,
				PollingUsers:   7,
				NewThisMonth:   3,
			}, stats)
		}
	})
}
