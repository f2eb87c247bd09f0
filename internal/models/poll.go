package models

// PollOption is one selectable answer of a poll. Option ids are generated
// at creation time and fix the key set of the poll's vote tally.
type PollOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Poll is a question with a fixed option set and live vote tallies.
// Votes maps option id to a non-negative count; every option id has an
// entry from the moment the poll is created.
type Poll struct {
	ID          string         `json:"id"`
	Question    string         `json:"question"`
	Description string         `json:"description,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Options     []PollOption   `json:"options"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   int64          `json:"createdAt"` // epoch milliseconds
	Votes       map[string]int `json:"votes"`
}

// TotalVotes returns the sum of all option tallies.
func (p Poll) TotalVotes() int {
	total := 0
	for _, n := range p.Votes {
		total += n
	}
	return total
}

// HasOption reports whether the poll carries an option with the given id.
func (p Poll) HasOption(optionID string) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// CreatePollInput carries the caller-supplied fields of a new poll.
// ID, CreatedAt and Votes are stamped by the store.
type CreatePollInput struct {
	Question    string       `json:"question"`
	Description string       `json:"description,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Options     []PollOption `json:"options"`
	CreatedBy   string       `json:"createdBy"`
}
