// Package gamification derives a level/experience read model from store
// state. It holds no storage of its own and is recomputed on every read.
package gamification

import (
	"math"

	"github.com/wnt/pollhub/internal/models"
)

// XP awarded per unit of activity.
const (
	XPPerPollCreated   = 20
	XPPerVoteCast      = 5
	XPPerAchievement   = 10
	XPCreatorPassBonus = 10
)

// defaultExtrapolationSpan is the flat XP span of every level past the
// threshold table.
const defaultExtrapolationSpan = 400

// Curve defines the cumulative XP breakpoints for levels 0..len-1 and the
// flat span used to keep producing levels past the table indefinitely.
type Curve struct {
	Thresholds        []int
	ExtrapolationSpan int
}

// DefaultCurve returns the standard eleven-level curve.
func DefaultCurve() Curve {
	return Curve{
		Thresholds:        []int{0, 50, 120, 220, 360, 540, 760, 1020, 1320, 1660, 2040},
		ExtrapolationSpan: defaultExtrapolationSpan,
	}
}

// LevelInfo is the derived read model for one wallet.
type LevelInfo struct {
	Level             int `json:"level"`
	XP                int `json:"xp"`
	CurrentLevelXP    int `json:"currentLevelXp"`
	NextLevelXP       int `json:"nextLevelXp"`
	ProgressPercent   int `json:"progressPercent"` // 0-100
	CreatedCount      int `json:"createdCount"`
	VotesCast         int `json:"votesCast"`
	AchievementsCount int `json:"achievementsCount"`
}

// Engine computes LevelInfo from store state. Safe for concurrent use;
// it carries only the immutable curve.
type Engine struct {
	curve Curve
}

// NewEngine returns an engine over the given curve. A curve with fewer
// than two thresholds falls back to the default table.
func NewEngine(curve Curve) *Engine {
	if len(curve.Thresholds) < 2 {
		curve.Thresholds = DefaultCurve().Thresholds
	}
	if curve.ExtrapolationSpan <= 0 {
		curve.ExtrapolationSpan = defaultExtrapolationSpan
	}
	return &Engine{curve: curve}
}

// LevelFor computes the wallet's level info from the given state. Wallets
// with no profile and no activity land on level 0 with zero XP.
func (e *Engine) LevelFor(state models.AppState, address string) LevelInfo {
	createdCount := state.AuthoredCount(address)
	votesCast := len(state.VotesByWallet[address])

	achievementsCount := 0
	hasPass := false
	if profile, ok := state.Profiles[address]; ok {
		achievementsCount = len(profile.Achievements)
		hasPass = profile.HasCreatorPass
	}

	xp := createdCount*XPPerPollCreated + votesCast*XPPerVoteCast + achievementsCount*XPPerAchievement
	if hasPass {
		xp += XPCreatorPassBonus
	}

	level, floor, ceiling := e.resolve(xp)

	span := ceiling - floor
	if span < 1 {
		span = 1
	}
	progressed := xp - floor
	if progressed < 0 {
		progressed = 0
	}
	percent := int(math.Round(float64(progressed) / float64(span) * 100))
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return LevelInfo{
		Level:             level,
		XP:                xp,
		CurrentLevelXP:    floor,
		NextLevelXP:       ceiling,
		ProgressPercent:   percent,
		CreatedCount:      createdCount,
		VotesCast:         votesCast,
		AchievementsCount: achievementsCount,
	}
}

// resolve returns the level for xp plus its floor and ceiling breakpoints.
// Within the table the level is the highest index whose threshold is at
// most xp; past the table levels continue every ExtrapolationSpan XP.
func (e *Engine) resolve(xp int) (level, floor, ceiling int) {
	thresholds := e.curve.Thresholds
	last := len(thresholds) - 1

	if xp >= thresholds[last] {
		extra := (xp - thresholds[last]) / e.curve.ExtrapolationSpan
		level = last + extra
		floor = thresholds[last] + extra*e.curve.ExtrapolationSpan
		return level, floor, floor + e.curve.ExtrapolationSpan
	}

	for i := last; i >= 0; i-- {
		if xp >= thresholds[i] {
			return i, thresholds[i], thresholds[i+1]
		}
	}
	// xp below the first threshold (possible only with a curve that does
	// not start at zero).
	return 0, thresholds[0], thresholds[1]
}
