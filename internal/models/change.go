package models

// ChangeType tags which slice of the persisted state was mutated.
type ChangeType string

// Change categories broadcast after successful mutations. Receivers do
// not act on the payload beyond the tag; they re-read the persisted
// state wholesale.
const (
	ChangeProfiles ChangeType = "profiles"
	ChangePolls    ChangeType = "polls"
	ChangeVotes    ChangeType = "votes"
)

// Change is the lightweight notification published to sibling processes
// after a mutation. PollID is set for vote changes only.
type Change struct {
	Type   ChangeType `json:"type"`
	PollID string     `json:"pollId,omitempty"`
}
