package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"meetmatch/internal/metrics"
	"meetmatch/internal/models"
	"meetmatch/internal/repositories"
	applog "meetmatch/pkg/log"
)

// EventRules bounds the start time accepted for new events.
type EventRules struct {
	MinLead     time.Duration // earliest start relative to now
	LatestStart time.Time     // absolute horizon
}

// CreateEventInput carries the fields accepted when creating an event.
type CreateEventInput struct {
	Title        string
	Category     string
	Categories   []string
	StartsAt     time.Time
	CoverVariant string
	CustomCover  string
	Description  string
	AuthorID     string
}

// EventService handles the event catalog and participation.
type EventService struct {
	store     *repositories.Store
	rules     EventRules
	publisher ActivityPublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(store *repositories.Store, rules EventRules, publisher ActivityPublisher) *EventService {
	return &EventService{
		store:     store,
		rules:     rules,
		publisher: publisher,
		now:       time.Now,
		log:       applog.WithComponent("events"),
	}
}

// ListEvents returns all events with author details, soonest first.
func (s *EventService) ListEvents(ctx context.Context) ([]EventView, error) {
	events, err := s.store.Events.List(ctx)
	if err != nil {
		return nil, internalError("failed to list events", err)
	}
	views := make([]EventView, 0, len(events))
	for i := range events {
		views = append(views, *NewEventView(&events[i]))
	}
	return views, nil
}

// GetEvent returns a single event.
func (s *EventService) GetEvent(ctx context.Context, id string) (*EventView, error) {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewEventView(event), nil
}

// CreateEvent validates and stores a new event.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*EventView, error) {
	title := strings.TrimSpace(in.Title)
	categories := cleanTags(append([]string{in.Category}, in.Categories...))
	if title == "" || len(categories) == 0 || in.StartsAt.IsZero() || in.AuthorID == "" {
		return nil, validationError("missing_fields", "title, category, starts_at and author_id are required")
	}

	now := s.now().UTC()
	startsAt := in.StartsAt.UTC()
	if earliest := now.Add(s.rules.MinLead); startsAt.Before(earliest) {
		return nil, validationError("starts_at_too_soon",
			fmt.Sprintf("event must start at least %s from now", s.rules.MinLead))
	}
	if !s.rules.LatestStart.IsZero() && startsAt.After(s.rules.LatestStart) {
		return nil, validationError("starts_at_too_late",
			fmt.Sprintf("event must start before %s", s.rules.LatestStart.Format(time.RFC3339)))
	}

	cover := models.CoverVariant(strings.ToLower(strings.TrimSpace(in.CoverVariant)))
	if cover == "" {
		cover = models.CoverMint
	}
	if !cover.Valid() {
		return nil, validationError("invalid_cover_variant", fmt.Sprintf("unknown cover variant %q", in.CoverVariant))
	}

	author, err := s.store.Users.GetByID(ctx, in.AuthorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("author_not_found", "author not found")
		}
		return nil, internalError("failed to load author", err)
	}

	event := &models.Event{
		Title:        title,
		Categories:   categories,
		StartsAt:     startsAt,
		CoverVariant: cover,
		CustomCover:  strings.TrimSpace(in.CustomCover),
		Description:  in.Description,
		AuthorID:     author.ID,
	}
	if err := s.store.Events.Create(ctx, event); err != nil {
		return nil, internalError("failed to create event", err)
	}

	metrics.EventsCreatedTotal.Inc()
	s.log.Info().Str("event_id", event.ID).Str("author_id", author.ID).Msg("Event created")
	publishActivity(s.publisher, s.log, ActivityEventCreated, map[string]string{
		"event_id":  event.ID,
		"author_id": author.ID,
	})

	return NewEventView(event), nil
}

// JoinEvent registers userID as a participant. It reports false when the
// user had already joined.
func (s *EventService) JoinEvent(ctx context.Context, eventID, userID string) (bool, error) {
	if eventID == "" || userID == "" {
		return false, validationError("missing_fields", "event id and userId are required")
	}
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return false, err
	}
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, notFoundError("user_not_found", "user not found")
		}
		return false, internalError("failed to load user", err)
	}

	joined, err := s.store.Events.AddParticipant(ctx, eventID, userID)
	if err != nil {
		return false, internalError("failed to join event", err)
	}
	return joined, nil
}

// ListParticipants returns the public profiles of an event's participants.
func (s *EventService) ListParticipants(ctx context.Context, eventID string) ([]Profile, error) {
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	users, err := s.store.Events.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, internalError("failed to list participants", err)
	}
	profiles := make([]Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, *NewProfile(&users[i]))
	}
	return profiles, nil
}

func (s *EventService) loadEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.store.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("event_not_found", "event not found")
		}
		return nil, internalError("failed to load event", err)
	}
	return event, nil
}
