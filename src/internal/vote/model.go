package vote

import (
	"polling-svc/src/internal/poll"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document status constants
const (
	DocStatusDraft     = 0
	DocStatusSubmitted = 1
	DocStatusCancelled = 2
)

// Ownership-checked actions
const (
	ActionRead   = "read"
	ActionModify = "modify"
	ActionSubmit = "submit"
	ActionDelete = "delete"
	ActionCancel = "cancel"
	ActionAmend  = "amend"
)

type Vote struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Poll        string             `json:"poll" bson:"poll"`
	Option      string             `json:"option" bson:"option"`
	Voter       string             `json:"voter" bson:"voter"`
	Owner       string             `json:"owner" bson:"owner"`
	DocStatus   int                `json:"docstatus" bson:"docstatus"`
	AmendedFrom string             `json:"amendedFrom,omitempty" bson:"amended_from,omitempty"`
	SubmittedAt *time.Time         `json:"submittedAt,omitempty" bson:"submitted_at,omitempty"`
	CancelledAt *time.Time         `json:"cancelledAt,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Form is the vote-entry form state after a poll is selected.
type Form struct {
	Poll          string           `json:"poll"`
	Voter         string           `json:"voter"`
	VoterReadOnly bool             `json:"voterReadOnly"`
	Options       []poll.OptionRow `json:"options"`
}

// CreateVoteRequest carries no voter: a vote is always cast as the session user.
type CreateVoteRequest struct {
	Poll   string `json:"poll"`
	Option string `json:"option"`
	Submit bool   `json:"submit"`
}

type UpdateVoteRequest struct {
	Option string `json:"option" binding:"required"`
}

// AmendVoteRequest optionally picks a new option; the cancelled vote's option is kept otherwise.
type AmendVoteRequest struct {
	Option string `json:"option"`
}

type ListVotesRequest struct {
	Poll  string `json:"poll" form:"poll"`
	Owner string `json:"-" form:"-"`
	Page  int    `json:"page" form:"page"`
	Limit int    `json:"limit" form:"limit"`
}

type ListVotesResponse struct {
	Votes      []*Vote `json:"votes"`
	TotalCount int64   `json:"totalCount"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (v *Vote) IsDraft() bool {
	return v.DocStatus == DocStatusDraft
}

func (v *Vote) IsSubmitted() bool {
	return v.DocStatus == DocStatusSubmitted
}

func (v *Vote) IsCancelled() bool {
	return v.DocStatus == DocStatusCancelled
}
