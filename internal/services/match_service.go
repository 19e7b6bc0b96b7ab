package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"meetmatch/internal/metrics"
	"meetmatch/internal/models"
	"meetmatch/internal/repositories"
	applog "meetmatch/pkg/log"
)

// SwipeInput is a single swipe request.
type SwipeInput struct {
	SwiperID  string
	TargetID  string
	Direction string
	EventID   *string
}

// SwipeResult reports the stored swipe and whether it completed a match.
// Chat is nil when there is no match or chat creation failed.
type SwipeResult struct {
	Swipe *models.Swipe
	Match bool
	Chat  *models.Chat

	chatCreated bool
}

// swipeAttempts bounds how often a swipe is retried after losing a
// serialization conflict.
const swipeAttempts = 2

// MatchService records swipes and detects mutual matches.
type MatchService struct {
	store     *repositories.Store
	publisher ActivityPublisher
	log       zerolog.Logger
}

// NewMatchService creates a new MatchService.
func NewMatchService(store *repositories.Store, publisher ActivityPublisher) *MatchService {
	return &MatchService{
		store:     store,
		publisher: publisher,
		log:       applog.WithComponent("match"),
	}
}

// RecordSwipe stores a swipe and, for a right swipe, checks for the
// reciprocal like. Insert, match check and chat creation share one
// transaction, which is retried once if it loses a serialization conflict.
// A failed chat creation is rolled back to a savepoint and the match is
// still reported.
func (s *MatchService) RecordSwipe(ctx context.Context, in SwipeInput) (*SwipeResult, error) {
	direction := models.Direction(strings.ToLower(strings.TrimSpace(in.Direction)))
	if in.SwiperID == "" || in.TargetID == "" || direction == "" {
		return nil, validationError("missing_fields", "swiperId, targetId and direction are required")
	}
	if !direction.Valid() {
		return nil, validationError("invalid_direction", "direction must be left or right")
	}
	if in.SwiperID == in.TargetID {
		return nil, validationError("self_swipe", "cannot swipe on yourself")
	}

	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	var (
		result *SwipeResult
		err    error
	)
	for attempt := 1; attempt <= swipeAttempts; attempt++ {
		result, err = s.storeSwipe(ctx, in, direction)
		if !errors.Is(err, repositories.ErrSerialization) {
			break
		}
		s.log.Warn().Err(err).Int("attempt", attempt).
			Str("swiper_id", in.SwiperID).
			Str("target_id", in.TargetID).
			Msg("Swipe transaction conflicted")
	}
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, conflictError("already_swiped", "already swiped this user", err)
		case errors.Is(err, repositories.ErrSerialization):
			return nil, conflictError("swipe_conflict", "concurrent swipe in progress, retry", err)
		}
		return nil, internalError("failed to record swipe", err)
	}

	if result.chatCreated {
		metrics.ChatsCreatedTotal.WithLabelValues("match").Inc()
	}
	metrics.SwipesTotal.WithLabelValues(string(direction)).Inc()
	if result.Match {
		metrics.MatchesTotal.Inc()
		s.log.Info().Str("swiper_id", in.SwiperID).Str("target_id", in.TargetID).Msg("Mutual match")
		data := map[string]string{"user1_id": in.SwiperID, "user2_id": in.TargetID}
		if result.Chat != nil {
			data["user1_id"], data["user2_id"] = result.Chat.User1ID, result.Chat.User2ID
			data["chat_id"] = result.Chat.ID
		}
		if in.EventID != nil {
			data["event_id"] = *in.EventID
		}
		publishActivity(s.publisher, s.log, ActivitySwipeMatched, data)
	}
	return result, nil
}

// storeSwipe runs one attempt of the swipe transaction.
func (s *MatchService) storeSwipe(ctx context.Context, in SwipeInput, direction models.Direction) (*SwipeResult, error) {
	result := &SwipeResult{}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		swipe := &models.Swipe{
			SwiperID:  in.SwiperID,
			TargetID:  in.TargetID,
			Direction: direction,
			EventID:   in.EventID,
		}
		if err := tx.Swipes.Create(ctx, swipe); err != nil {
			return err
		}
		result.Swipe = swipe

		if direction != models.DirectionRight {
			return nil
		}
		reciprocal, err := tx.Swipes.HasRightSwipe(ctx, in.TargetID, in.SwiperID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}
		result.Match = true

		chatErr := tx.Transaction(ctx, func(inner *repositories.Store) error {
			chat, existed, err := getOrCreateChat(ctx, inner, in.SwiperID, in.TargetID, in.EventID)
			if err != nil {
				return err
			}
			result.Chat = chat
			result.chatCreated = !existed
			return nil
		})
		if chatErr != nil {
			// Expiry and serialization conflicts abort the whole attempt.
			if errors.Is(chatErr, context.DeadlineExceeded) ||
				errors.Is(chatErr, context.Canceled) ||
				errors.Is(chatErr, repositories.ErrSerialization) {
				return chatErr
			}
			metrics.ChatCreationFailures.Inc()
			s.log.Error().Err(chatErr).
				Str("swiper_id", in.SwiperID).
				Str("target_id", in.TargetID).
				Msg("Chat creation failed after match")
			result.Chat = nil
			result.chatCreated = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HasMutualMatch reports whether both users swiped right on each other.
func (s *MatchService) HasMutualMatch(ctx context.Context, a, b string) (bool, error) {
	matched, err := hasMutualMatch(ctx, s.store, a, b)
	if err != nil {
		return false, internalError("failed to check match", err)
	}
	return matched, nil
}

func (s *MatchService) checkReferences(ctx context.Context, in SwipeInput) error {
	users, err := s.store.Users.GetByIDs(ctx, []string{in.SwiperID, in.TargetID})
	if err != nil {
		return internalError("failed to load users", err)
	}
	if len(users) != 2 {
		return notFoundError("user_not_found", "swiper or target not found")
	}
	if in.EventID != nil {
		if _, err := s.store.Events.GetByID(ctx, *in.EventID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notFoundError("event_not_found", "event not found")
			}
			return internalError("failed to load event", err)
		}
	}
	return nil
}
