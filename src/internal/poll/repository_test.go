package poll

import (
	"context"
	"polling-svc/src/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func optionDoc(text string, count int64) bson.D {
	return bson.D{{Key: "option_text", Value: text}, {Key: "vote_count", Value: count}}
}

func TestRepositoryGetOptions(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("stored order", func(mt *mtest.T) {
		repo := newPollRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "polling.polls", mtest.FirstBatch, bson.D{
			{Key: "options", Value: bson.A{optionDoc("Banana", 0), optionDoc("Apple", 2)}},
		}))

		options, err := repo.GetOptions(context.Background(), "POLL-1")
		require.NoError(t, err)
		assert.Equal(t, []Option{{OptionText: "Banana"}, {OptionText: "Apple", VoteCount: 2}}, options)
	})

	mt.Run("unknown poll", func(mt *mtest.T) {
		repo := newPollRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "polling.polls", mtest.FirstBatch))

		_, err := repo.GetOptions(context.Background(), "POLL-404")
		assert.ErrorIs(t, err, models.ErrPollNotFound)
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := newPollRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 1, Message: "boom"}))

		_, err := repo.GetOptions(context.Background(), "POLL-1")
		assert.ErrorIs(t, err, models.ErrDatabaseQuery)
	})
}

func TestRepositoryIncrementVoteCount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("matched", func(mt *mtest.T) {
		repo := newPollRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(t, repo.IncrementVoteCount(context.Background(), "POLL-1", "Apple", 1))
	})

	mt.Run("option not in poll", func(mt *mtest.T) {
		repo := newPollRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.IncrementVoteCount(context.Background(), "POLL-1", "Durian", 1)
		assert.ErrorIs(t, err, models.ErrOptionNotInPoll)
	})

	mt.Run("retract from empty tally", func(mt *mtest.T) {
		repo := newPollRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.IncrementVoteCount(context.Background(), "POLL-1", "Apple", -1)
		assert.ErrorIs(t, err, models.ErrOptionNotInPoll)
	})
}
