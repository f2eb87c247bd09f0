// Package store is the single source of truth for profiles, polls and
// vote records. Every mutation validates, rewrites the whole persisted
// state as one transition and then notifies sibling processes through the
// broadcaster. Operations are serialized by a single mutex; across
// processes the persisted key is last-writer-wins with no merge logic.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wnt/pollhub/internal/broadcast"
	"github.com/wnt/pollhub/internal/metrics"
	"github.com/wnt/pollhub/internal/models"
	"github.com/wnt/pollhub/internal/storage"
)

// VoteMilestone is the total vote count at which a poll's creator earns
// the ten_votes_received achievement. The check re-fires on every vote
// past the threshold; the unlock itself is idempotent.
const VoteMilestone = 10

// Store owns the application state. Construct it with New; the zero value
// is not usable.
type Store struct {
	mu          sync.Mutex
	state       models.AppState
	persister   storage.Persister
	broadcaster broadcast.Broadcaster
	quota       QuotaPolicy
	now         func() time.Time
	newID       func() string
	logger      zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithQuotaPolicy replaces the default free-limit policy.
func WithQuotaPolicy(policy QuotaPolicy) Option {
	return func(s *Store) { s.quota = policy }
}

// WithClock replaces the wall clock, used to stamp poll creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the unique-id source for poll ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger.With().Str("component", "store").Logger() }
}

// New loads the persisted state (starting empty if none exists) and
// returns a ready Store.
func New(ctx context.Context, persister storage.Persister, broadcaster broadcast.Broadcaster, opts ...Option) (*Store, error) {
	s := &Store{
		persister:   persister,
		broadcaster: broadcaster,
		quota:       FreeLimitPolicy{Limit: FreePollLimit},
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	state, found, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted state: %w", err)
	}
	if !found {
		state = models.NewAppState()
	}
	s.state = state

	s.logger.Info().
		Int("profiles", len(state.Profiles)).
		Int("polls", len(state.Polls)).
		Msg("Store initialized")

	return s, nil
}

// EnsureProfile returns the profile for address, creating a default one
// if none exists yet. Idempotent; only the creation persists anything.
func (s *Store) EnsureProfile(ctx context.Context, address string) (models.Profile, error) {
	if address == "" {
		return models.Profile{}, ErrAddressRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.state.Profiles[address]; ok {
		return copyProfile(existing), nil
	}

	next := s.state.Clone()
	profile := ensureProfile(next, address)
	if err := s.commit(ctx, next, models.Change{Type: models.ChangeProfiles}); err != nil {
		return models.Profile{}, err
	}
	return copyProfile(profile), nil
}

// UpsertProfile replaces the full profile record keyed by its address.
func (s *Store) UpsertProfile(ctx context.Context, profile models.Profile) error {
	if profile.Address == "" {
		return ErrAddressRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.Profiles[profile.Address] = copyProfile(profile)
	return s.commit(ctx, next, models.Change{Type: models.ChangeProfiles})
}

// MintCreatorPass flags the wallet as a creator-pass holder and unlocks
// the matching achievement. Re-minting is a no-op; the flag never
// reverts.
func (s *Store) MintCreatorPass(ctx context.Context, address string) error {
	if address == "" {
		return ErrAddressRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.state.Profiles[address]; ok && existing.HasCreatorPass {
		return nil
	}

	next := s.state.Clone()
	profile := ensureProfile(next, address)
	profile.HasCreatorPass = true
	next.Profiles[address] = profile
	unlockAchievement(next, address, models.AchievementCreatorPass)

	if err := s.commit(ctx, next, models.Change{Type: models.ChangeProfiles}); err != nil {
		return err
	}

	s.logger.Info().Str("wallet", address).Msg("Creator pass minted")
	return nil
}

// CreatePoll validates the input, applies the quota policy and stores the
// new poll. On quota denial nothing is mutated, including the creator's
// lazily-ensured profile. Returns the generated poll id.
func (s *Store) CreatePoll(ctx context.Context, input models.CreatePollInput) (string, error) {
	if strings.TrimSpace(input.Question) == "" {
		return "", ErrQuestionRequired
	}
	if input.CreatedBy == "" {
		return "", ErrAddressRequired
	}

	options := make([]models.PollOption, 0, len(input.Options))
	for _, opt := range input.Options {
		label := strings.TrimSpace(opt.Label)
		if label == "" {
			continue
		}
		id := opt.ID
		if id == "" {
			id = s.newID()
		}
		options = append(options, models.PollOption{ID: id, Label: label})
	}
	if len(options) < 2 {
		return "", ErrTooFewOptions
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	authoredCount := s.state.AuthoredCount(input.CreatedBy)

	next := s.state.Clone()
	creator := ensureProfile(next, input.CreatedBy)

	if err := s.quota.CanCreate(creator, authoredCount); err != nil {
		metrics.QuotaDenialsTotal.Inc()
		s.logger.Debug().
			Str("wallet", input.CreatedBy).
			Int("authored", authoredCount).
			Msg("Poll creation denied by quota")
		return "", err
	}

	id := s.newID()
	votes := make(map[string]int, len(options))
	for _, opt := range options {
		votes[opt.ID] = 0
	}
	next.Polls[id] = models.Poll{
		ID:          id,
		Question:    strings.TrimSpace(input.Question),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Options:     options,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   s.now().UnixMilli(),
		Votes:       votes,
	}
	unlockAchievement(next, input.CreatedBy, models.AchievementFirstPoll)

	err := s.commit(ctx, next,
		models.Change{Type: models.ChangePolls},
		models.Change{Type: models.ChangeProfiles},
	)
	if err != nil {
		return "", err
	}

	metrics.PollsCreatedTotal.Inc()
	s.logger.Info().Str("poll_id", id).Str("wallet", input.CreatedBy).Msg("Poll created")
	return id, nil
}

// Vote records the wallet's choice on a poll. Re-selecting the current
// choice is a no-op; choosing a different option moves the vote (the old
// tally is decremented, never below zero). Wallets may vote on their own
// polls.
func (s *Store) Vote(ctx context.Context, address, pollID, optionID string) error {
	if address == "" {
		return ErrAddressRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.state.Polls[pollID]
	if !ok {
		return ErrPollNotFound
	}
	if !current.HasOption(optionID) {
		return ErrOptionNotFound
	}

	prev, hasPrev := "", false
	if record, ok := s.state.VotesByWallet[address]; ok {
		prev, hasPrev = record[pollID]
	}
	if hasPrev && prev == optionID {
		metrics.RecordVote("unchanged")
		return nil
	}

	next := s.state.Clone()
	poll := next.Polls[pollID]
	if hasPrev && poll.Votes[prev] > 0 {
		poll.Votes[prev]--
	}
	poll.Votes[optionID]++

	record := next.VotesByWallet[address]
	if record == nil {
		record = make(models.VoteRecord)
	}
	record[pollID] = optionID
	next.VotesByWallet[address] = record

	unlockAchievement(next, address, models.AchievementFirstVote)
	if poll.TotalVotes() >= VoteMilestone {
		unlockAchievement(next, poll.CreatedBy, models.AchievementTenVotesReceived)
	}

	err := s.commit(ctx, next,
		models.Change{Type: models.ChangeVotes, PollID: pollID},
		models.Change{Type: models.ChangeProfiles},
	)
	if err != nil {
		return err
	}

	if hasPrev {
		metrics.RecordVote("changed")
	} else {
		metrics.RecordVote("new")
	}
	return nil
}

// AddAchievement unlocks an achievement for the wallet. Unlocking an
// already-held key is a no-op; this is the single choke point that keeps
// achievement sets duplicate-free.
func (s *Store) AddAchievement(ctx context.Context, address string, key models.AchievementKey) error {
	if address == "" {
		return ErrAddressRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.state.Profiles[address]; ok && existing.HasAchievement(key) {
		return nil
	}

	next := s.state.Clone()
	unlockAchievement(next, address, key)
	return s.commit(ctx, next, models.Change{Type: models.ChangeProfiles})
}

// Polls returns all polls sorted by creation time, newest first.
func (s *Store) Polls() []models.Poll {
	s.mu.Lock()
	state := s.state.Clone()
	s.mu.Unlock()

	polls := make([]models.Poll, 0, len(state.Polls))
	for _, p := range state.Polls {
		polls = append(polls, p)
	}
	sort.Slice(polls, func(i, j int) bool {
		if polls[i].CreatedAt != polls[j].CreatedAt {
			return polls[i].CreatedAt > polls[j].CreatedAt
		}
		return polls[i].ID < polls[j].ID
	})
	return polls
}

// Poll returns a single poll by id.
func (s *Store) Poll(id string) (models.Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.Polls[id]
	if !ok {
		return models.Poll{}, false
	}
	return copyPoll(p), true
}

// Profile returns the profile for address if it exists. It does not
// create one; use EnsureProfile for ensure semantics.
func (s *Store) Profile(address string) (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.Profiles[address]
	if !ok {
		return models.Profile{}, false
	}
	return copyProfile(p), true
}

// State returns a deep copy of the full state, for derived read models.
func (s *Store) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Refresh re-reads the persisted state, discarding the in-memory copy.
// Receivers call it when a sibling process broadcasts a change.
func (s *Store) Refresh(ctx context.Context) error {
	state, found, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh state: %w", err)
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// Sync subscribes to the broadcaster and refreshes the in-memory state on
// every notification until ctx is cancelled. Run it in its own goroutine.
func (s *Store) Sync(ctx context.Context) error {
	changes, err := s.broadcaster.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	for change := range changes {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Error().Err(err).Str("type", string(change.Type)).Msg("Failed to refresh state after change")
		}
	}
	return ctx.Err()
}

// commit persists the new state, swaps it in and broadcasts the changes.
// On a save failure the in-memory state is untouched, keeping the
// operation atomic from the caller's perspective. Broadcast failures are
// logged, never propagated.
func (s *Store) commit(ctx context.Context, next models.AppState, changes ...models.Change) error {
	start := time.Now()
	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	metrics.RecordStoreSave(time.Since(start).Seconds())

	s.state = next

	for _, change := range changes {
		if err := s.broadcaster.Publish(ctx, change); err != nil {
			s.logger.Warn().Err(err).Str("type", string(change.Type)).Msg("Failed to broadcast change")
		}
	}
	return nil
}

// ensureProfile returns the profile for address from next, inserting the
// default record if absent. Callers own next exclusively.
func ensureProfile(next models.AppState, address string) models.Profile {
	if existing, ok := next.Profiles[address]; ok {
		return existing
	}
	profile := models.Profile{
		Address:        address,
		DisplayName:    models.ShortAddress(address),
		HasCreatorPass: false,
		Achievements:   []models.AchievementKey{},
	}
	next.Profiles[address] = profile
	return profile
}

// unlockAchievement idempotently appends key to the wallet's achievement
// set inside next, creating the profile if needed.
func unlockAchievement(next models.AppState, address string, key models.AchievementKey) {
	profile := ensureProfile(next, address)
	if profile.HasAchievement(key) {
		return
	}
	profile.Achievements = append(profile.Achievements, key)
	next.Profiles[address] = profile
	metrics.RecordAchievement(string(key))
}

// copyPoll returns a poll whose option slice and vote map do not alias
// store-internal memory.
func copyPoll(p models.Poll) models.Poll {
	options := make([]models.PollOption, len(p.Options))
	copy(options, p.Options)
	p.Options = options
	votes := make(map[string]int, len(p.Votes))
	for id, n := range p.Votes {
		votes[id] = n
	}
	p.Votes = votes
	return p
}

// copyProfile returns a profile whose achievement slice does not alias
// store-internal memory.
func copyProfile(p models.Profile) models.Profile {
	achievements := make([]models.AchievementKey, len(p.Achievements))
	copy(achievements, p.Achievements)
	p.Achievements = achievements
	return p
}
