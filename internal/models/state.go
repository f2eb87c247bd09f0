package models

// VoteRecord maps poll id to the single option id a wallet currently has
// chosen for that poll. A wallet has at most one active choice per poll;
// re-voting moves the choice instead of adding a second vote.
type VoteRecord map[string]string

// AppState is the aggregate persisted by the store: profiles and polls
// keyed by their unique ids, plus per-wallet vote records. It is read and
// written wholesale; nothing outside the store mutates it.
type AppState struct {
	Profiles      map[string]Profile    `json:"profiles"`
	Polls         map[string]Poll       `json:"polls"`
	VotesByWallet map[string]VoteRecord `json:"votesByWallet"`
}

// NewAppState returns an empty state with all maps allocated.
func NewAppState() AppState {
	return AppState{
		Profiles:      make(map[string]Profile),
		Polls:         make(map[string]Poll),
		VotesByWallet: make(map[string]VoteRecord),
	}
}

// Clone returns a deep copy of the state. The store hands out copies so
// callers can never alias its internal maps.
func (s AppState) Clone() AppState {
	out := AppState{
		Profiles:      make(map[string]Profile, len(s.Profiles)),
		Polls:         make(map[string]Poll, len(s.Polls)),
		VotesByWallet: make(map[string]VoteRecord, len(s.VotesByWallet)),
	}
	for addr, p := range s.Profiles {
		achievements := make([]AchievementKey, len(p.Achievements))
		copy(achievements, p.Achievements)
		p.Achievements = achievements
		out.Profiles[addr] = p
	}
	for id, poll := range s.Polls {
		options := make([]PollOption, len(poll.Options))
		copy(options, poll.Options)
		poll.Options = options
		votes := make(map[string]int, len(poll.Votes))
		for optID, n := range poll.Votes {
			votes[optID] = n
		}
		poll.Votes = votes
		out.Polls[id] = poll
	}
	for addr, record := range s.VotesByWallet {
		copied := make(VoteRecord, len(record))
		for pollID, optID := range record {
			copied[pollID] = optID
		}
		out.VotesByWallet[addr] = copied
	}
	return out
}

// AuthoredCount returns how many polls the given wallet has created.
func (s AppState) AuthoredCount(address string) int {
	count := 0
	for _, p := range s.Polls {
		if p.CreatedBy == address {
			count++
		}
	}
	return count
}
