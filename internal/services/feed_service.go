package services

import (
	"context"
	"strings"

	"meetmatch/internal/repositories"
)

// FeedQuery selects swipe candidates for CurrentUserID.
type FeedQuery struct {
	CurrentUserID string
	EventID       string
	Gender        string
	MinAge        *int
	MaxAge        *int
	Interests     string // comma separated
}

// FeedService produces the candidate profiles shown for swiping.
type FeedService struct {
	users  repositories.UserRepository
	events repositories.EventRepository
	limit  int
}

// NewFeedService creates a new FeedService returning at most limit profiles.
func NewFeedService(users repositories.UserRepository, events repositories.EventRepository, limit int) *FeedService {
	return &FeedService{users: users, events: events, limit: limit}
}

// GetProfiles returns candidates the requester has not swiped yet, each with
// the ids of the events they joined.
func (s *FeedService) GetProfiles(ctx context.Context, q FeedQuery) ([]*Profile, error) {
	if q.CurrentUserID == "" {
		return nil, validationError("missing_fields", "currentUserId is required")
	}
	if q.MinAge != nil && q.MaxAge != nil && *q.MinAge > *q.MaxAge {
		return nil, validationError("invalid_age_range", "minAge must not exceed maxAge")
	}

	filter := repositories.CandidateFilter{
		RequesterID: q.CurrentUserID,
		EventID:     q.EventID,
		MinAge:      q.MinAge,
		MaxAge:      q.MaxAge,
		Interests:   splitInterests(q.Interests),
		Limit:       s.limit,
	}
	if g := strings.TrimSpace(q.Gender); g != "" && !strings.EqualFold(g, "any") {
		filter.Gender = g
	}

	users, err := s.users.FindCandidates(ctx, filter)
	if err != nil {
		return nil, internalError("failed to load candidates", err)
	}

	ids := make([]string, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	joined, err := s.events.ParticipationsOf(ctx, ids)
	if err != nil {
		return nil, internalError("failed to load participations", err)
	}

	profiles := make([]*Profile, 0, len(users))
	for i := range users {
		p := NewProfile(&users[i])
		p.JoinedEvents = joined[users[i].ID]
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func splitInterests(raw string) []string {
	var tokens []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
