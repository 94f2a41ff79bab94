package vote

import (
	"context"
	"errors"
	"fmt"
	"polling-svc/src/internal/models"
	"polling-svc/src/internal/poll"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PollStore is the part of the poll service votes depend on.
type PollStore interface {
	GetPoll(ctx context.Context, name string) (*poll.Poll, error)
	GetPollOptions(ctx context.Context, parentPoll string) ([]poll.OptionRow, error)
	RecordVote(ctx context.Context, name, option string) error
	RetractVote(ctx context.Context, name, option string) error
}

type EventPublisher interface {
	PublishVoteEvent(ctx context.Context, event *models.VoteEvent) error
}

type Service interface {
	NewForm(ctx context.Context, principal *models.Principal, pollName string) (*Form, error)
	CreateVote(ctx context.Context, principal *models.Principal, req *CreateVoteRequest) (*Vote, error)
	SubmitVote(ctx context.Context, principal *models.Principal, name string) (*Vote, error)
	UpdateVote(ctx context.Context, principal *models.Principal, name string, req *UpdateVoteRequest) (*Vote, error)
	DeleteVote(ctx context.Context, principal *models.Principal, name string) error
	CancelVote(ctx context.Context, principal *models.Principal, name string) (*Vote, error)
	AmendVote(ctx context.Context, principal *models.Principal, name string, req *AmendVoteRequest) (*Vote, error)
	GetVote(ctx context.Context, principal *models.Principal, name string) (*Vote, error)
	ListVotes(ctx context.Context, principal *models.Principal, req *ListVotesRequest) (*ListVotesResponse, error)
}

type voteService struct {
	repository Repository
	polls      PollStore
	publisher  EventPublisher
	now        func() time.Time
}

func NewVoteService(repository Repository, polls PollStore, publisher EventPublisher) Service {
	return &voteService{
		repository: repository,
		polls:      polls,
		publisher:  publisher,
		now:        time.Now,
	}
}

// NewForm refreshes the dependent option field for the selected poll.
// The voter is always the caller and cannot be edited at creation.
func (s *voteService) NewForm(ctx context.Context, principal *models.Principal, pollName string) (*Form, error) {
	if principal == nil {
		return nil, models.ErrNotAuthenticated
	}

	options, err := s.polls.GetPollOptions(ctx, pollName)
	if err != nil {
		return nil, err
	}

	return &Form{
		Poll:          pollName,
		Voter:         principal.Email,
		VoterReadOnly: true,
		Options:       options,
	}, nil
}

func (s *voteService) CreateVote(ctx context.Context, principal *models.Principal, req *CreateVoteRequest) (*Vote, error) {
	if principal == nil {
		return nil, models.ErrNotAuthenticated
	}

	vote := &Vote{
		Name:   newVoteName(),
		Poll:   strings.TrimSpace(req.Poll),
		Option: strings.TrimSpace(req.Option),
		Voter:  principal.Email,
		Owner:  principal.Email,
	}
	if err := validateMandatoryFields(vote); err != nil {
		return nil, err
	}

	p, err := s.polls.GetPoll(ctx, vote.Poll)
	if err != nil {
		return nil, err
	}
	if !p.HasOption(vote.Option) {
		return nil, models.ErrOptionNotInPoll
	}

	now := s.now()
	vote.DocStatus = DocStatusDraft
	vote.CreatedAt = now
	vote.UpdatedAt = now

	if err := s.repository.Create(ctx, vote); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"vote":  vote.Name,
		"poll":  vote.Poll,
		"voter": vote.Voter,
	}).Info("Vote created")

	if req.Submit {
		return s.SubmitVote(ctx, principal, vote.Name)
	}
	return vote, nil
}

func (s *voteService) SubmitVote(ctx context.Context, principal *models.Principal, name string) (*Vote, error) {
	vote, err := s.loadOwned(ctx, principal, name, ActionSubmit)
	if err != nil {
		return nil, err
	}
	if !vote.IsDraft() {
		return nil, models.ErrVoteAlreadyHandled
	}
	if err := validateMandatoryFields(vote); err != nil {
		return nil, err
	}

	p, err := s.polls.GetPoll(ctx, vote.Poll)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case p.Status != poll.StatusActive:
		return nil, models.ErrPollNotActive
	case !p.IsOpenAt(now):
		return nil, models.ErrPollExpired
	case !p.HasOption(vote.Option):
		return nil, models.ErrOptionNotInPoll
	}

	voted, err := s.repository.HasSubmitted(ctx, vote.Poll, vote.Voter)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, models.ErrAlreadyVoted
	}

	if err := s.repository.MarkSubmitted(ctx, vote.Name, now); err != nil {
		return nil, err
	}

	if err := s.polls.RecordVote(ctx, vote.Poll, vote.Option); err != nil {
		if revertErr := s.repository.RevertSubmitted(ctx, vote.Name); revertErr != nil {
			logrus.WithError(revertErr).WithField("vote", vote.Name).Error("Vote submitted but not counted, revert failed")
		}
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}
	vote.DocStatus = DocStatusSubmitted
	vote.SubmittedAt = &now
	vote.UpdatedAt = now

	s.publish(ctx, vote, models.ActionVoteSubmitted)

	logrus.WithFields(logrus.Fields{
		"vote":   vote.Name,
		"poll":   vote.Poll,
		"option": vote.Option,
		"voter":  vote.Voter,
	}).Info("Vote submitted")
	return vote, nil
}

func (s *voteService) UpdateVote(ctx context.Context, principal *models.Principal, name string, req *UpdateVoteRequest) (*Vote, error) {
	vote, err := s.loadOwned(ctx, principal, name, ActionModify)
	if err != nil {
		return nil, err
	}
	if !vote.IsDraft() {
		return nil, models.ErrVoteNotDraft
	}

	option := strings.TrimSpace(req.Option)
	if option == "" {
		return nil, models.ErrOptionRequired
	}

	p, err := s.polls.GetPoll(ctx, vote.Poll)
	if err != nil {
		return nil, err
	}
	if !p.HasOption(option) {
		return nil, models.ErrOptionNotInPoll
	}

	if err := s.repository.UpdateOption(ctx, name, option); err != nil {
		return nil, err
	}
	vote.Option = option
	vote.UpdatedAt = s.now()
	return vote, nil
}

func (s *voteService) DeleteVote(ctx context.Context, principal *models.Principal, name string) error {
	vote, err := s.loadOwned(ctx, principal, name, ActionDelete)
	if err != nil {
		return err
	}
	if vote.DocStatus == DocStatusSubmitted {
		return models.ErrVoteAlreadyHandled
	}

	if err := s.repository.Delete(ctx, name); err != nil {
		return err
	}

	logrus.WithField("vote", name).Info("Vote deleted")
	return nil
}

// CancelVote withdraws a submitted vote from the tally. The voter may then vote on the poll again.
func (s *voteService) CancelVote(ctx context.Context, principal *models.Principal, name string) (*Vote, error) {
	vote, err := s.loadOwned(ctx, principal, name, ActionCancel)
	if err != nil {
		return nil, err
	}
	if !vote.IsSubmitted() {
		return nil, models.ErrVoteNotSubmitted
	}

	now := s.now()
	if err := s.repository.MarkCancelled(ctx, vote.Name, now); err != nil {
		return nil, err
	}

	if err := s.polls.RetractVote(ctx, vote.Poll, vote.Option); err != nil {
		if revertErr := s.repository.RevertCancelled(ctx, vote.Name); revertErr != nil {
			logrus.WithError(revertErr).WithField("vote", vote.Name).Error("Vote cancelled but still counted, revert failed")
		}
		return nil, fmt.Errorf("failed to retract vote: %w", err)
	}
	vote.DocStatus = DocStatusCancelled
	vote.CancelledAt = &now
	vote.UpdatedAt = now

	s.publish(ctx, vote, models.ActionVoteCancelled)

	logrus.WithFields(logrus.Fields{
		"vote":  vote.Name,
		"poll":  vote.Poll,
		"voter": vote.Voter,
	}).Info("Vote cancelled")
	return vote, nil
}

// AmendVote opens a new draft from a cancelled vote. Each cancelled vote can be amended once.
func (s *voteService) AmendVote(ctx context.Context, principal *models.Principal, name string, req *AmendVoteRequest) (*Vote, error) {
	original, err := s.loadOwned(ctx, principal, name, ActionAmend)
	if err != nil {
		return nil, err
	}
	if !original.IsCancelled() {
		return nil, models.ErrVoteNotCancelled
	}

	option := original.Option
	if req != nil && strings.TrimSpace(req.Option) != "" {
		option = strings.TrimSpace(req.Option)
	}

	p, err := s.polls.GetPoll(ctx, original.Poll)
	if err != nil {
		return nil, err
	}
	if !p.HasOption(option) {
		return nil, models.ErrOptionNotInPoll
	}

	now := s.now()
	amended := &Vote{
		Name:        newVoteName(),
		Poll:        original.Poll,
		Option:      option,
		Voter:       original.Voter,
		Owner:       original.Owner,
		AmendedFrom: original.Name,
		DocStatus:   DocStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repository.Create(ctx, amended); err != nil {
		if errors.Is(err, models.ErrDuplicateRecord) {
			return nil, models.ErrVoteAlreadyAmended
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"vote":         amended.Name,
		"amended_from": original.Name,
		"poll":         amended.Poll,
	}).Info("Vote amended")
	return amended, nil
}

func (s *voteService) GetVote(ctx context.Context, principal *models.Principal, name string) (*Vote, error) {
	return s.loadOwned(ctx, principal, name, ActionRead)
}

// ListVotes scopes the listing to the caller's own votes unless they are a System Manager.
func (s *voteService) ListVotes(ctx context.Context, principal *models.Principal, req *ListVotesRequest) (*ListVotesResponse, error) {
	if principal == nil {
		return nil, models.ErrNotAuthenticated
	}

	if req.Limit <= 0 {
		req.Limit = defaultPageLimit
	}
	if req.Limit > maxPageLimit {
		req.Limit = maxPageLimit
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	req.Owner = ""
	if !principal.IsSystemManager() {
		req.Owner = principal.Email
	}

	votes, total, err := s.repository.List(ctx, req)
	if err != nil {
		return nil, err
	}

	return &ListVotesResponse{
		Votes:      votes,
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
	}, nil
}

func (s *voteService) loadOwned(ctx context.Context, principal *models.Principal, name, action string) (*Vote, error) {
	if principal == nil {
		return nil, models.ErrNotAuthenticated
	}

	vote, err := s.repository.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := CheckOwnership(principal, vote, action); err != nil {
		return nil, err
	}
	return vote, nil
}

func (s *voteService) publish(ctx context.Context, vote *Vote, action string) {
	if s.publisher == nil {
		return
	}

	event := &models.VoteEvent{
		VoteName:  vote.Name,
		Poll:      vote.Poll,
		Option:    vote.Option,
		Voter:     vote.Voter,
		Action:    action,
		Timestamp: s.now(),
	}
	if err := s.publisher.PublishVoteEvent(ctx, event); err != nil {
		logrus.WithError(err).WithField("vote", vote.Name).Warn("Failed to publish vote event")
	}
}

// CheckOwnership allows System Managers everything and everyone else only their own votes.
func CheckOwnership(principal *models.Principal, vote *Vote, action string) error {
	if principal.IsSystemManager() || vote.Owner == principal.Email {
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"vote":   vote.Name,
		"user":   principal.Email,
		"action": action,
	}).Warn("Vote ownership check failed")
	return fmt.Errorf("%w: you can only %s your own votes", models.ErrPermissionDenied, action)
}

func validateMandatoryFields(vote *Vote) error {
	switch {
	case vote.Poll == "":
		return models.ErrPollRequired
	case vote.Voter == "":
		return models.ErrVoterRequired
	case vote.Option == "":
		return models.ErrOptionRequired
	}
	return nil
}

func newVoteName() string {
	return "VOTE-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
