package poll

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status constants
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type Poll struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Title     string             `json:"title" bson:"title"`
	Status    string             `json:"status" bson:"status"`
	EndDate   *time.Time         `json:"endDate,omitempty" bson:"end_date,omitempty"`
	Options   []Option           `json:"options" bson:"options"`
	Owner     string             `json:"owner" bson:"owner"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Option is one selectable answer. Options keep the order they were created in.
type Option struct {
	OptionText string `json:"option_text" bson:"option_text"`
	VoteCount  int64  `json:"vote_count" bson:"vote_count"`
}

// OptionRow is a single-column row of the option lookup.
type OptionRow struct {
	OptionText string `json:"option_text"`
}

type OptionsResponse struct {
	Poll    string      `json:"poll"`
	Options []OptionRow `json:"options"`
}

type CreatePollRequest struct {
	Title   string     `json:"title" binding:"required"`
	Options []string   `json:"options"`
	Status  string     `json:"status"`
	EndDate *time.Time `json:"endDate"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListPollsRequest struct {
	Page   int    `json:"page" form:"page"`
	Limit  int    `json:"limit" form:"limit"`
	Status string `json:"status" form:"status"`
}

type ListPollsResponse struct {
	Polls      []*Poll `json:"polls"`
	TotalCount int64   `json:"totalCount"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// HasOption reports whether label is one of the poll's options.
func (p *Poll) HasOption(label string) bool {
	for _, o := range p.Options {
		if o.OptionText == label {
			return true
		}
	}
	return false
}

// IsOpenAt reports whether the poll still accepts votes on the day of t.
// The end date is inclusive.
func (p *Poll) IsOpenAt(t time.Time) bool {
	if p.EndDate == nil {
		return true
	}
	end := p.EndDate.In(t.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, t.Location())
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return !endDay.Before(today)
}

func (p *Poll) OptionRows() []OptionRow {
	rows := make([]OptionRow, 0, len(p.Options))
	for _, o := range p.Options {
		rows = append(rows, OptionRow{OptionText: o.OptionText})
	}
	return rows
}
