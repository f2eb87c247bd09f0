package models

// AchievementKey identifies a one-time unlockable flag on a profile.
// Achievements are never revoked once granted.
type AchievementKey string

// Achievement keys granted by the store.
const (
	AchievementFirstVote        AchievementKey = "first_vote"
	AchievementFirstPoll        AchievementKey = "first_poll"
	AchievementCreatorPass      AchievementKey = "creator_pass_minted"
	AchievementTenVotesReceived AchievementKey = "ten_votes_received"
)

// Profile is the per-wallet identity record. The wallet address is the
// unique key and never changes once the profile exists.
type Profile struct {
	Address        string           `json:"address"`
	DisplayName    string           `json:"displayName"`
	Bio            string           `json:"bio,omitempty"`
	AvatarURL      string           `json:"avatarUrl,omitempty"`
	HasCreatorPass bool             `json:"hasCreatorPass"`
	Achievements   []AchievementKey `json:"achievements"`
}

// HasAchievement reports whether the profile already holds the given key.
func (p Profile) HasAchievement(key AchievementKey) bool {
	for _, k := range p.Achievements {
		if k == key {
			return true
		}
	}
	return false
}

// ShortAddress returns the truncated display form of a wallet address,
// used as the default display name for new profiles.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
