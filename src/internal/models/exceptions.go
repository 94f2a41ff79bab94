package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
	ErrRedisDelete     = errors.New("redis delete error")
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionInactive = errors.New("session inactive")
	ErrSessionCreating = errors.New("error creating session")
	ErrSessionUpdating = errors.New("error updating session")
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrPermissionDenied   = errors.New("permission denied")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrDatabaseInsert     = errors.New("database insert error")
	ErrDatabaseUpdate     = errors.New("database update error")
	ErrDatabaseDelete     = errors.New("database delete error")
	ErrRecordNotFound     = errors.New("record not found")
	ErrDuplicateRecord    = errors.New("duplicate record")
)

var (
	ErrInvalidParams      = errors.New("invalid parameters")
	ErrPollNotFound       = errors.New("poll not found")
	ErrInvalidPollTitle   = errors.New("title cannot contain special characters")
	ErrPollHasNoOptions   = errors.New("poll requires at least one option")
	ErrDuplicateOption    = errors.New("poll options must be unique")
	ErrInvalidPollStatus  = errors.New("invalid poll status")
	ErrPollNotActive      = errors.New("this poll is not active for voting")
	ErrPollExpired        = errors.New("this poll date is expired")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrPollRequired       = errors.New("poll is required to cast a vote")
	ErrVoterRequired      = errors.New("user is required to cast a vote")
	ErrOptionRequired     = errors.New("option is required to cast a vote")
	ErrOptionNotInPoll    = errors.New("option does not belong to poll")
	ErrAlreadyVoted       = errors.New("you have already voted in this poll")
	ErrVoteNotDraft       = errors.New("only draft votes can be changed")
	ErrVoteAlreadyHandled = errors.New("vote is already submitted or cancelled")
	ErrVoteNotSubmitted   = errors.New("only submitted votes can be cancelled")
	ErrVoteNotCancelled   = errors.New("only cancelled votes can be amended")
	ErrVoteAlreadyAmended = errors.New("vote has already been amended")
)
