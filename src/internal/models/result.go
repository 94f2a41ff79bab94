package models

// OptionResult is one option's share of a poll's submitted votes.
type OptionResult struct {
	OptionText string  `json:"option_text"`
	VoteCount  int64   `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

// PollResult is derived from a poll's options on every read and never stored in MongoDB.
type PollResult struct {
	Name       string         `json:"name"`
	PollTitle  string         `json:"poll_title"`
	TotalVotes int64          `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}

type PollResultSummary struct {
	Name       string `json:"name"`
	PollTitle  string `json:"poll_title"`
	TotalVotes int64  `json:"total_votes"`
}
