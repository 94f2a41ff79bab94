package models

import "time"

// VoteEvent is published on the queue whenever a vote changes a poll's tally.
type VoteEvent struct {
	VoteName  string    `json:"vote_name"`
	Poll      string    `json:"poll"`
	Option    string    `json:"option"`
	Voter     string    `json:"voter"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Vote event action constants
const (
	ActionVoteSubmitted = "vote_submitted"
	ActionVoteCancelled = "vote_cancelled"
)
