package chain

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// SurveyService reads survey objects owned by an address.
type SurveyService struct {
	client *Client
	pkg    string
	logger zerolog.Logger
}

// NewSurveyService creates a survey reader bound to one deployed package.
func NewSurveyService(client *Client, packageID string, logger zerolog.Logger) *SurveyService {
	return &SurveyService{
		client: client,
		pkg:    packageID,
		logger: logger.With().Str("component", "survey_service").Logger(),
	}
}

// OwnedSurveys returns the surveys an address owns, newest first.
func (s *SurveyService) OwnedSurveys(ctx context.Context, owner string) ([]Survey, error) {
	structType := fmt.Sprintf("%s::survey::Survey", s.pkg)
	objects, err := s.client.GetOwnedObjects(ctx, owner, structType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch surveys for %s: %w", owner, err)
	}

	surveys := make([]Survey, 0, len(objects))
	for _, obj := range objects {
		surveys = append(surveys, decodeSurvey(obj))
	}
	sort.Slice(surveys, func(i, j int) bool {
		if surveys[i].CreatedAt != surveys[j].CreatedAt {
			return surveys[i].CreatedAt > surveys[j].CreatedAt
		}
		return surveys[i].ID < surveys[j].ID
	})
	return surveys, nil
}

func decodeSurvey(obj OwnedObject) Survey {
	return Survey{
		ID:               obj.ObjectID,
		Title:            fieldString(obj.Fields, "title"),
		Description:      fieldString(obj.Fields, "description"),
		Owner:            fieldString(obj.Fields, "owner"),
		IsOpen:           fieldBool(obj.Fields, "is_open"),
		Questions:        decodeQuestions(obj.Fields),
		ParticipantCount: int(fieldInt64(obj.Fields, "participant_count")),
		CreatedAt:        fieldInt64(obj.Fields, "created_at"),
	}
}

func decodeQuestions(fields map[string]interface{}) []Question {
	raw, ok := fields["questions"].([]interface{})
	if !ok {
		return nil
	}
	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		// Nested move structs carry their own fields map.
		if inner, ok := entry["fields"].(map[string]interface{}); ok {
			entry = inner
		}
		questions = append(questions, Question{
			Prompt:         fieldString(entry, "prompt"),
			Options:        fieldStrings(entry, "options"),
			AllowsMultiple: fieldBool(entry, "allows_multiple"),
			MaxSelections:  int(fieldInt64(entry, "max_selections")),
		})
	}
	return questions
}

// ProfileService reads on-chain profile objects.
type ProfileService struct {
	client *Client
	pkg    string
	logger zerolog.Logger
}

// NewProfileService creates a profile reader bound to one deployed package.
func NewProfileService(client *Client, packageID string, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		client: client,
		pkg:    packageID,
		logger: logger.With().Str("component", "profile_service").Logger(),
	}
}

// Profile returns the first profile object owned by the address, or nil
// when none exists. An address owns at most one; extras are logged and
// ignored.
func (s *ProfileService) Profile(ctx context.Context, owner string) (*UserProfile, error) {
	structType := fmt.Sprintf("%s::profile::UserProfile", s.pkg)
	objects, err := s.client.GetOwnedObjects(ctx, owner, structType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", owner, err)
	}
	if len(objects) == 0 {
		return nil, nil
	}
	if len(objects) > 1 {
		s.logger.Warn().
			Str("owner", owner).
			Int("count", len(objects)).
			Msg("Address owns multiple profile objects, using first")
	}

	obj := objects[0]
	profile := &UserProfile{
		ID:             obj.ObjectID,
		Owner:          owner,
		Username:       fieldString(obj.Fields, "username"),
		Bio:            fieldString(obj.Fields, "bio"),
		AvatarURL:      fieldString(obj.Fields, "avatar_url"),
		CreatedAt:      fieldInt64(obj.Fields, "created_at"),
		LastActivity:   fieldInt64(obj.Fields, "last_activity"),
		StatsID:        fieldString(obj.Fields, "stats_id"),
		GamificationID: fieldString(obj.Fields, "gamification_id"),
	}
	return profile, nil
}

// BadgeService reads creator badge objects.
type BadgeService struct {
	client *Client
	pkg    string
	logger zerolog.Logger
}

// NewBadgeService creates a badge reader bound to one deployed package.
func NewBadgeService(client *Client, packageID string, logger zerolog.Logger) *BadgeService {
	return &BadgeService{
		client: client,
		pkg:    packageID,
		logger: logger.With().Str("component", "badge_service").Logger(),
	}
}

// OwnedBadges returns the creator badges an address owns.
func (s *BadgeService) OwnedBadges(ctx context.Context, owner string) ([]SurveyCreatorBadge, error) {
	structType := fmt.Sprintf("%s::badge::SurveyCreatorBadge", s.pkg)
	objects, err := s.client.GetOwnedObjects(ctx, owner, structType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges for %s: %w", owner, err)
	}

	badges := make([]SurveyCreatorBadge, 0, len(objects))
	for _, obj := range objects {
		badges = append(badges, SurveyCreatorBadge{
			ID:                  obj.ObjectID,
			Name:                fieldString(obj.Fields, "name"),
			Description:         fieldString(obj.Fields, "description"),
			ImageURL:            fieldString(obj.Fields, "image_url"),
			BadgeType:           int(fieldInt64(obj.Fields, "badge_type")),
			Tier:                int(fieldInt64(obj.Fields, "tier")),
			ExtraSurveysAllowed: int(fieldInt64(obj.Fields, "extra_surveys_allowed")),
			MintedAt:            fieldInt64(obj.Fields, "minted_at"),
			Owner:               owner,
		})
	}
	return badges, nil
}

// ExtraAllowance sums the extra survey allowance across every badge the
// address owns. Feed this into a quota policy to raise the creation
// limit for badge holders.
func (s *BadgeService) ExtraAllowance(ctx context.Context, owner string) (int, error) {
	badges, err := s.OwnedBadges(ctx, owner)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, b := range badges {
		total += b.ExtraSurveysAllowed
	}
	return total, nil
}
