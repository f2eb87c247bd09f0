package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"full wallet address", "0x1234567890abcdef1234567890abcdef12345678", "0x1234…5678"},
		{"short address untouched", "0xabc", "0xabc"},
		{"exactly ten chars untouched", "0x12345678", "0x12345678"},
		{"eleven chars truncated", "0x123456789", "0x1234…6789"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShortAddress(tc.address))
		})
	}
}

func TestProfileHasAchievement(t *testing.T) {
	p := Profile{Achievements: []AchievementKey{AchievementFirstVote}}
	assert.True(t, p.HasAchievement(AchievementFirstVote))
	assert.False(t, p.HasAchievement(AchievementFirstPoll))
}

func TestPollTotalVotes(t *testing.T) {
	p := Poll{Votes: map[string]int{"a": 3, "b": 2, "c": 0}}
	assert.Equal(t, 5, p.TotalVotes())

	assert.Equal(t, 0, Poll{}.TotalVotes())
}

func TestPollHasOption(t *testing.T) {
	p := Poll{Options: []PollOption{{ID: "a", Label: "Yes"}, {ID: "b", Label: "No"}}}
	assert.True(t, p.HasOption("a"))
	assert.False(t, p.HasOption("z"))
}

func TestAppStateClone(t *testing.T) {
	state := NewAppState()
	state.Profiles["0xa"] = Profile{Address: "0xa", Achievements: []AchievementKey{AchievementFirstPoll}}
	state.Polls["p1"] = Poll{
		ID:      "p1",
		Options: []PollOption{{ID: "a", Label: "Yes"}},
		Votes:   map[string]int{"a": 1},
	}
	state.VotesByWallet["0xb"] = VoteRecord{"p1": "a"}

	clone := state.Clone()
	assert.Equal(t, state, clone)

	// Mutating the clone must not leak into the original.
	clone.Polls["p1"].Votes["a"] = 9
	clone.VotesByWallet["0xb"]["p1"] = "b"
	profile := clone.Profiles["0xa"]
	profile.Achievements[0] = AchievementFirstVote
	clone.Profiles["0xa"] = profile

	assert.Equal(t, 1, state.Polls["p1"].Votes["a"])
	assert.Equal(t, "a", state.VotesByWallet["0xb"]["p1"])
	assert.Equal(t, AchievementFirstPoll, state.Profiles["0xa"].Achievements[0])
}

func TestAuthoredCount(t *testing.T) {
	state := NewAppState()
	state.Polls["p1"] = Poll{ID: "p1", CreatedBy: "0xa"}
	state.Polls["p2"] = Poll{ID: "p2", CreatedBy: "0xa"}
	state.Polls["p3"] = Poll{ID: "p3", CreatedBy: "0xb"}

	assert.Equal(t, 2, state.AuthoredCount("0xa"))
	assert.Equal(t, 1, state.AuthoredCount("0xb"))
	assert.Equal(t, 0, state.AuthoredCount("0xc"))
}
