package poll

import (
	"context"
	"errors"
	"math"
	"polling-svc/src/internal/cache"
	"polling-svc/src/internal/models"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var titlePattern = regexp.MustCompile(`^[\p{L}\p{N}_\- ]+$`)

type Service interface {
	GetPollOptions(ctx context.Context, parentPoll string) ([]OptionRow, error)
	GetPoll(ctx context.Context, name string) (*Poll, error)
	ListPolls(ctx context.Context, req *ListPollsRequest) (*ListPollsResponse, error)
	CreatePoll(ctx context.Context, owner string, req *CreatePollRequest) (*Poll, error)
	SetStatus(ctx context.Context, name, status string) error
	RecordVote(ctx context.Context, name, option string) error
	RetractVote(ctx context.Context, name, option string) error
	GetResult(ctx context.Context, name string) (*models.PollResult, error)
	ListResults(ctx context.Context) ([]models.PollResultSummary, error)
}

type pollService struct {
	repository   Repository
	cacheService cache.Service
	now          func() time.Time
}

func NewPollService(repository Repository, cacheService cache.Service) Service {
	return &pollService{
		repository:   repository,
		cacheService: cacheService,
		now:          time.Now,
	}
}

// GetPollOptions returns the poll's option labels in stored order.
// An unknown poll yields an empty result, not an error.
func (s *pollService) GetPollOptions(ctx context.Context, parentPoll string) ([]OptionRow, error) {
	if parentPoll == "" {
		return []OptionRow{}, nil
	}

	options, err := s.repository.GetOptions(ctx, parentPoll)
	if err != nil {
		if errors.Is(err, models.ErrPollNotFound) {
			logrus.WithField("poll", parentPoll).Debug("Option lookup for unknown poll")
			return []OptionRow{}, nil
		}
		return nil, err
	}

	rows := make([]OptionRow, 0, len(options))
	for _, o := range options {
		rows = append(rows, OptionRow{OptionText: o.OptionText})
	}
	return rows, nil
}

func (s *pollService) GetPoll(ctx context.Context, name string) (*Poll, error) {
	return s.repository.GetByName(ctx, name)
}

func (s *pollService) ListPolls(ctx context.Context, req *ListPollsRequest) (*ListPollsResponse, error) {
	if req.Limit <= 0 {
		req.Limit = defaultPageLimit
	}
	if req.Limit > maxPageLimit {
		req.Limit = maxPageLimit
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Status != "" && !isValidStatus(req.Status) {
		return nil, models.ErrInvalidPollStatus
	}

	polls, totalCount, err := s.repository.List(ctx, req)
	if err != nil {
		return nil, err
	}

	return &ListPollsResponse{
		Polls:      polls,
		TotalCount: totalCount,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(req.Limit))),
	}, nil
}

func (s *pollService) CreatePoll(ctx context.Context, owner string, req *CreatePollRequest) (*Poll, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || !titlePattern.MatchString(title) {
		return nil, models.ErrInvalidPollTitle
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if !isValidStatus(status) {
		return nil, models.ErrInvalidPollStatus
	}

	options := make([]Option, 0, len(req.Options))
	seen := make(map[string]struct{}, len(req.Options))
	for _, label := range req.Options {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			return nil, models.ErrDuplicateOption
		}
		seen[label] = struct{}{}
		options = append(options, Option{OptionText: label})
	}
	if len(options) == 0 {
		return nil, models.ErrPollHasNoOptions
	}

	now := s.now()
	poll := &Poll{
		Name:      newPollName(),
		Title:     title,
		Status:    status,
		EndDate:   req.EndDate,
		Options:   options,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repository.Create(ctx, poll); err != nil {
		return nil, err
	}

	s.invalidateResults(ctx, poll.Name)

	logrus.WithFields(logrus.Fields{
		"poll":    poll.Name,
		"title":   poll.Title,
		"options": len(poll.Options),
		"owner":   owner,
	}).Info("Poll created")
	return poll, nil
}

func (s *pollService) SetStatus(ctx context.Context, name, status string) error {
	if !isValidStatus(status) {
		return models.ErrInvalidPollStatus
	}
	if err := s.repository.UpdateStatus(ctx, name, status); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"poll": name, "status": status}).Info("Poll status updated")
	return nil
}

// RecordVote adds a submitted vote to the option's tally and drops cached results.
func (s *pollService) RecordVote(ctx context.Context, name, option string) error {
	if err := s.repository.IncrementVoteCount(ctx, name, option, 1); err != nil {
		return err
	}
	s.invalidateResults(ctx, name)
	return nil
}

// RetractVote takes a cancelled vote back out of the option's tally.
func (s *pollService) RetractVote(ctx context.Context, name, option string) error {
	if err := s.repository.IncrementVoteCount(ctx, name, option, -1); err != nil {
		return err
	}
	s.invalidateResults(ctx, name)
	return nil
}

func (s *pollService) GetResult(ctx context.Context, name string) (*models.PollResult, error) {
	if cached, err := s.cacheService.GetPollResult(ctx, name); err == nil && cached != nil {
		logrus.WithField("poll", name).Debug("Poll result served from cache")
		return cached, nil
	}

	poll, err := s.repository.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	result := ComputeResult(poll)
	if err := s.cacheService.SavePollResult(ctx, result); err != nil {
		logrus.WithError(err).WithField("poll", name).Warn("Failed to cache poll result")
	}
	return result, nil
}

func (s *pollService) ListResults(ctx context.Context) ([]models.PollResultSummary, error) {
	if cached, err := s.cacheService.GetResultList(ctx); err == nil && cached != nil {
		return cached, nil
	}

	summaries := make([]models.PollResultSummary, 0)
	req := &ListPollsRequest{Page: 1, Limit: maxPageLimit}
	for {
		polls, total, err := s.repository.List(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, p := range polls {
			summaries = append(summaries, models.PollResultSummary{
				Name:       p.Name,
				PollTitle:  p.Title,
				TotalVotes: totalVotes(p),
			})
		}
		if len(polls) == 0 || int64(req.Page*req.Limit) >= total {
			break
		}
		req.Page++
	}

	if err := s.cacheService.SaveResultList(ctx, summaries); err != nil {
		logrus.WithError(err).Warn("Failed to cache poll result list")
	}
	return summaries, nil
}

// ComputeResult derives per-option shares rounded to one decimal place.
func ComputeResult(poll *Poll) *models.PollResult {
	total := totalVotes(poll)

	options := make([]models.OptionResult, 0, len(poll.Options))
	for _, o := range poll.Options {
		var percent float64
		if total > 0 {
			percent = math.Round(float64(o.VoteCount)/float64(total)*1000) / 10
		}
		options = append(options, models.OptionResult{
			OptionText: o.OptionText,
			VoteCount:  o.VoteCount,
			Percentage: percent,
		})
	}

	return &models.PollResult{
		Name:       poll.Name,
		PollTitle:  poll.Title,
		TotalVotes: total,
		Options:    options,
	}
}

func (s *pollService) invalidateResults(ctx context.Context, name string) {
	if err := s.cacheService.InvalidatePollResult(ctx, name); err != nil {
		logrus.WithError(err).WithField("poll", name).Warn("Failed to invalidate cached results")
	}
}

func totalVotes(poll *Poll) int64 {
	var total int64
	for _, o := range poll.Options {
		total += o.VoteCount
	}
	return total
}

func isValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

func newPollName() string {
	return "POLL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
